package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/apperror"
)

func TestMessageNotificationBodyTruncation(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	sender := createUser(t, s, "sender", model.RoleManager)
	receiver := createUser(t, s, "receiver", model.RoleVendor)

	// The leading byte shifts every two-byte rune off the cut point.
	body := "x" + strings.Repeat("é", 100)
	_, err := s.SendMessage(ctx, sender, receiver.ID, nil, body)
	require.NoError(t, err)

	ns := notificationsFor(t, s, receiver.ID)
	require.Len(t, ns, 1)
	assert.True(t, utf8.ValidString(ns[0].Body))
	assert.True(t, strings.HasSuffix(ns[0].Body, "…"))
	assert.True(t, strings.HasPrefix(body, strings.TrimSuffix(ns[0].Body, "…")))
}

func TestSendMessage(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr := createUser(t, s, "mgr", model.RoleManager)
	vendor := createUser(t, s, "vendor", model.RoleVendor)

	msg, err := s.SendMessage(ctx, mgr, vendor.ID, nil, "Can you start Monday?")
	require.NoError(t, err)
	assert.Equal(t, mgr.ID, msg.SenderID)
	assert.False(t, msg.Read)

	// The receiver gets a message notification.
	ns := notificationsFor(t, s, vendor.ID)
	require.Len(t, ns, 1)
	assert.Equal(t, model.NotifyMessage, ns[0].Type)

	_, err = s.SendMessage(ctx, mgr, mgr.ID, nil, "talking to myself")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = s.SendMessage(ctx, mgr, vendor.ID, nil, "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = s.SendMessage(ctx, mgr, 9999, nil, "hello?")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestThreadReadMarking(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr := createUser(t, s, "mgr", model.RoleManager)
	vendor := createUser(t, s, "vendor", model.RoleVendor)

	_, err := s.SendMessage(ctx, mgr, vendor.ID, nil, "first")
	require.NoError(t, err)
	_, err = s.SendMessage(ctx, mgr, vendor.ID, nil, "second")
	require.NoError(t, err)
	_, err = s.SendMessage(ctx, vendor, mgr.ID, nil, "reply")
	require.NoError(t, err)

	// Opening the thread marks the counterpart's messages read.
	msgs, err := s.GetThread(ctx, vendor, mgr.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Body)
	assert.True(t, msgs[0].Read)
	assert.True(t, msgs[1].Read)
	// The vendor's own outgoing message is untouched.
	assert.False(t, msgs[2].Read)

	var unread int64
	require.NoError(t, s.db.Model(&model.Message{}).
		Where("receiver_id = ? AND read = ?", vendor.ID, false).
		Count(&unread).Error)
	assert.EqualValues(t, 0, unread)

	// Re-reading is idempotent.
	again, err := s.GetThread(ctx, vendor, mgr.ID)
	require.NoError(t, err)
	assert.Len(t, again, 3)
}

func TestListConversations(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mgr := createUser(t, s, "mgr", model.RoleManager)
	v1 := createUser(t, s, "v1", model.RoleVendor)
	v2 := createUser(t, s, "v2", model.RoleVendor)

	_, err := s.SendMessage(ctx, v1, mgr.ID, nil, "quote attached")
	require.NoError(t, err)
	_, err = s.SendMessage(ctx, v1, mgr.ID, nil, "any update?")
	require.NoError(t, err)
	_, err = s.SendMessage(ctx, v2, mgr.ID, nil, "we can start next week")
	require.NoError(t, err)

	convs, err := s.ListConversations(ctx, mgr)
	require.NoError(t, err)
	require.Len(t, convs, 2)

	// Newest conversation first, unread counts per counterpart.
	assert.Equal(t, v2.ID, convs[0].CounterpartID)
	assert.Equal(t, "we can start next week", convs[0].LastMessage.Body)
	assert.EqualValues(t, 1, convs[0].UnreadCount)
	assert.Equal(t, v1.ID, convs[1].CounterpartID)
	assert.EqualValues(t, 2, convs[1].UnreadCount)

	// Reading the v1 thread zeroes that counter only.
	_, err = s.GetThread(ctx, mgr, v1.ID)
	require.NoError(t, err)
	convs, err = s.ListConversations(ctx, mgr)
	require.NoError(t, err)
	assert.EqualValues(t, 1, convs[0].UnreadCount)
	assert.EqualValues(t, 0, convs[1].UnreadCount)

	// A user with no messages has an empty inbox, not an error.
	v3 := createUser(t, s, "v3", model.RoleVendor)
	empty, err := s.ListConversations(ctx, v3)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
