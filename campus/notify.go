// campus/notify.go
package campus

import (
	"context"

	"github.com/dalemusser/eventdesk/store"
	"go.uber.org/zap"
)

// Notifications returns the caller's latest notifications and marks them
// read.
func (s *Service) Notifications(ctx context.Context, actor Actor) ([]store.Notification, error) {
	if actor.ID <= 0 || actor.Role == "" {
		return nil, ErrForbidden
	}
	return s.store.RecentNotifications(ctx, actor.ID, actor.Role, store.NotificationLimit)
}

// Notification failures are logged and never fail the operation that
// caused them.
func (s *Service) notify(ctx context.Context, userID int64, role, msg string) {
	if err := s.store.AddNotification(ctx, userID, role, msg); err != nil {
		s.logger.Warn("notification not stored", zap.Int64("user_id", userID), zap.String("role", role), zap.Error(err))
	}
}

func (s *Service) notifyMany(ctx context.Context, userIDs []int64, role, msg string) {
	if err := s.store.AddNotifications(ctx, userIDs, role, msg); err != nil {
		s.logger.Warn("notifications not stored", zap.Int("count", len(userIDs)), zap.String("role", role), zap.Error(err))
	}
}

func (s *Service) notifyAdmins(ctx context.Context, msg string) {
	admins, err := s.store.Admins(ctx)
	if err != nil {
		s.logger.Warn("list admins", zap.Error(err))
		return
	}
	ids := make([]int64, 0, len(admins))
	for _, a := range admins {
		ids = append(ids, a.ID)
	}
	s.notifyMany(ctx, ids, store.RoleFaculty, msg)
}
