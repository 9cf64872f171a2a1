package service

import (
	"context"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/apperror"
	"github.com/propline/bidboard/pkg/authz"
)

// ListNotifications returns the actor's notifications, newest first.
// Clients call this after (re)connecting to catch up on anything the
// live channel missed.
func (s *Service) ListNotifications(ctx context.Context, actor authz.Actor, unreadOnly bool, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := s.db.WithContext(ctx).
		Where("user_id = ?", actor.ID).
		Order("id DESC").
		Limit(limit)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	var ns []model.Notification
	if err := q.Find(&ns).Error; err != nil {
		return nil, dbErr("list notifications", err)
	}
	return ns, nil
}

func (s *Service) UnreadNotificationCount(ctx context.Context, actor authz.Actor) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", actor.ID, false).
		Count(&n).Error
	if err != nil {
		return 0, dbErr("count unread notifications", err)
	}
	return n, nil
}

// MarkNotificationRead flips the read flag on one of the actor's own
// notifications.
func (s *Service) MarkNotificationRead(ctx context.Context, actor authz.Actor, id uint) error {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, actor.ID).
		Update("read", true)
	if res.Error != nil {
		return dbErr("mark notification read", res.Error)
	}
	if res.RowsAffected == 0 {
		// Someone else's notification is indistinguishable from a
		// missing one.
		return apperror.New(apperror.KindNotFound, "notification not found")
	}
	return nil
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, actor authz.Actor) error {
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", actor.ID, false).
		Update("read", true).Error
	if err != nil {
		return dbErr("mark all notifications read", err)
	}
	return nil
}
