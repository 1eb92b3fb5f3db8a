// store/notifications.go
package store

import (
	"context"
	"database/sql"
)

// NotificationLimit is how many notifications a user sees at once.
const NotificationLimit = 20

// AddNotification stores one message for a user.
func (s *Store) AddNotification(ctx context.Context, userID int64, role, message string) error {
	_, err := s.insert(ctx, s.db,
		`INSERT INTO notifications (user_id, user_role, message, is_read, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, role, message, false, now())
	return err
}

// AddNotifications stores the same message for many users of one role in
// a single transaction.
func (s *Store) AddNotifications(ctx context.Context, userIDs []int64, role, message string) error {
	if len(userIDs) == 0 {
		return nil
	}
	ts := now()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.rebind(
			`INSERT INTO notifications (user_id, user_role, message, is_read, created_at) VALUES (?, ?, ?, ?, ?)`))
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, id := range userIDs {
			if _, err := stmt.ExecContext(ctx, id, role, message, false, ts); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecentNotifications returns the user's latest notifications, newest
// first, and then marks all of that user's notifications read. The
// returned items keep the read flag they had before the call.
func (s *Store) RecentNotifications(ctx context.Context, userID int64, role string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = NotificationLimit
	}
	rows, err := s.query(ctx, s.db, `
		SELECT id, user_id, user_role, message, is_read, created_at
		FROM notifications
		WHERE user_id = ? AND user_role = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, role, limit)
	if err != nil {
		return nil, err
	}
	out := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Role, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Single sqlite connection: rows must be closed before this runs.
	_, err = s.exec(ctx, s.db,
		`UPDATE notifications SET is_read = ? WHERE user_id = ? AND user_role = ? AND is_read = ?`,
		true, userID, role, false)
	return out, err
}
