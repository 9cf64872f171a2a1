package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/apperror"
	"github.com/propline/bidboard/pkg/authz"
)

// Conversation is the inbox row for one counterpart: the latest message
// plus the count of unread messages from that counterpart.
type Conversation struct {
	CounterpartID   uint          `json:"counterpartId"`
	CounterpartName string        `json:"counterpartName"`
	LastMessage     model.Message `json:"lastMessage"`
	UnreadCount     int64         `json:"unreadCount"`
}

// SendMessage creates a message and notifies the receiver.
func (s *Service) SendMessage(ctx context.Context, actor authz.Actor, receiverID uint, projectID *uint, body string) (*model.Message, error) {
	if body == "" {
		return nil, apperror.New(apperror.KindValidation, "message body is required")
	}
	if receiverID == actor.ID {
		return nil, apperror.New(apperror.KindValidation, "cannot message yourself")
	}
	var receiver model.User
	if err := s.db.WithContext(ctx).First(&receiver, receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "receiver not found")
		}
		return nil, dbErr("load receiver", err)
	}
	if projectID != nil {
		var n int64
		if err := s.db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", *projectID).Count(&n).Error; err != nil {
			return nil, dbErr("check project", err)
		}
		if n == 0 {
			return nil, apperror.New(apperror.KindNotFound, "project not found")
		}
	}

	msg := model.Message{
		SenderID:   actor.ID,
		ReceiverID: receiverID,
		ProjectID:  projectID,
		Body:       body,
	}
	var n *model.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return dbErr("create message", err)
		}
		n = &model.Notification{
			UserID: receiverID,
			Type:   model.NotifyMessage,
			Title:  "New message",
			Body:   truncate(body, 120),
			Link:   fmt.Sprintf("/messages/%d", actor.ID),
		}
		return s.notifier.Create(tx, n)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Push(ctx, n)
	return &msg, nil
}

// ListConversations groups the actor's messages by counterpart, newest
// conversation first.
func (s *Service) ListConversations(ctx context.Context, actor authz.Actor) ([]Conversation, error) {
	type convRow struct {
		CounterpartID uint
		LastID        uint
	}
	var rows []convRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS counterpart_id,
		       MAX(id) AS last_id
		FROM messages
		WHERE deleted_at IS NULL AND (sender_id = ? OR receiver_id = ?)
		GROUP BY counterpart_id`,
		actor.ID, actor.ID, actor.ID).Scan(&rows).Error
	if err != nil {
		return nil, dbErr("group conversations", err)
	}
	if len(rows) == 0 {
		return []Conversation{}, nil
	}

	type unreadRow struct {
		SenderID uint
		Cnt      int64
	}
	var unread []unreadRow
	err = s.db.WithContext(ctx).Model(&model.Message{}).
		Select("sender_id, COUNT(*) AS cnt").
		Where("receiver_id = ? AND read = ?", actor.ID, false).
		Group("sender_id").
		Scan(&unread).Error
	if err != nil {
		return nil, dbErr("count unread", err)
	}
	unreadBy := make(map[uint]int64, len(unread))
	for _, u := range unread {
		unreadBy[u.SenderID] = u.Cnt
	}

	convs := make([]Conversation, 0, len(rows))
	for _, row := range rows {
		var last model.Message
		if err := s.db.WithContext(ctx).First(&last, row.LastID).Error; err != nil {
			return nil, dbErr("load last message", err)
		}
		var counterpart model.User
		if err := s.db.WithContext(ctx).First(&counterpart, row.CounterpartID).Error; err != nil {
			return nil, dbErr("load counterpart", err)
		}
		convs = append(convs, Conversation{
			CounterpartID:   row.CounterpartID,
			CounterpartName: counterpart.Name,
			LastMessage:     last,
			UnreadCount:     unreadBy[row.CounterpartID],
		})
	}
	// Newest conversation first.
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].LastMessage.ID > convs[j].LastMessage.ID
	})
	return convs, nil
}

// GetThread returns the chronological messages between the actor and a
// counterpart, and marks every unread message from the counterpart as
// read. Re-reading is idempotent.
func (s *Service) GetThread(ctx context.Context, actor authz.Actor, counterpartID uint) ([]model.Message, error) {
	var counterpart model.User
	if err := s.db.WithContext(ctx).First(&counterpart, counterpartID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "user not found")
		}
		return nil, dbErr("load counterpart", err)
	}

	var msgs []model.Message
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			actor.ID, counterpartID, counterpartID, actor.ID).
		Order("id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, dbErr("load thread", err)
	}

	// Implicit read-marking side effect of opening the thread.
	err = s.db.WithContext(ctx).Model(&model.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", counterpartID, actor.ID, false).
		Update("read", true).Error
	if err != nil {
		return nil, dbErr("mark thread read", err)
	}
	for i := range msgs {
		if msgs[i].ReceiverID == actor.ID {
			msgs[i].Read = true
		}
	}
	return msgs, nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
