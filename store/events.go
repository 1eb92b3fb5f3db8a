// store/events.go
package store

import (
	"context"
	"database/sql"
	"fmt"
)

const eventCols = `id, event_name, event_date, location, description, coordinator_id, status, created_at`

func scanEvent(row scanner) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Name, &e.Date, &e.Location, &e.Description, &e.CoordinatorID, &e.Status, &e.CreatedAt)
	return e, err
}

// CreateEvent inserts e. An empty status is stored as Open.
func (s *Store) CreateEvent(ctx context.Context, e Event) (Event, error) {
	if e.Status == "" {
		e.Status = StatusOpen
	}
	e.CreatedAt = now()
	id, err := s.insert(ctx, s.db,
		`INSERT INTO events (event_name, event_date, location, description, coordinator_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.Date, e.Location, e.Description, e.CoordinatorID, e.Status, e.CreatedAt)
	if err != nil {
		return Event{}, fmt.Errorf("create event: %w", err)
	}
	e.ID = id
	return e, nil
}

func (s *Store) EventByID(ctx context.Context, id int64) (Event, error) {
	e, err := scanEvent(s.queryRow(ctx, s.db, `SELECT `+eventCols+` FROM events WHERE id = ?`, id))
	return e, s.translate(err)
}

// ListEvents pages through events, latest date first.
func (s *Store) ListEvents(ctx context.Context, limit, offset int) ([]Event, error) {
	return s.listEvents(ctx,
		`SELECT `+eventCols+` FROM events ORDER BY event_date DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset)
}

// ListUpcoming returns events on or after today (yyyy-mm-dd), soonest first.
func (s *Store) ListUpcoming(ctx context.Context, today string) ([]Event, error) {
	return s.listEvents(ctx,
		`SELECT `+eventCols+` FROM events WHERE event_date >= ? ORDER BY event_date, id`,
		today)
}

func (s *Store) listEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CountEvents(ctx context.Context) (int, error) {
	var n int
	err := s.queryRow(ctx, s.db, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

// SetEventStatus updates the registration status of an event.
func (s *Store) SetEventStatus(ctx context.Context, id int64, status string) error {
	res, err := s.exec(ctx, s.db, `UPDATE events SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// DeleteEvent removes an event and its registrations. Registrations are
// deleted explicitly because MySQL ignores inline REFERENCES clauses.
func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, `DELETE FROM registrations WHERE event_id = ?`, id); err != nil {
			return err
		}
		res, err := s.exec(ctx, tx, `DELETE FROM events WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return mustAffect(res)
	})
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
