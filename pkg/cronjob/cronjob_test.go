package cronjob

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/propline/bidboard/dao"
	"github.com/propline/bidboard/dao/model"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dao.Migrate(db))
	return NewManager(db)
}

func TestPurgeReadNotifications(t *testing.T) {
	m := newTestManager(t)

	old := model.Notification{UserID: 1, Type: model.NotifyMessage, Title: "old", Read: true}
	require.NoError(t, m.db.Create(&old).Error)
	require.NoError(t, m.db.Model(&old).
		Update("created_at", time.Now().AddDate(0, 0, -120)).Error)

	keepUnread := model.Notification{UserID: 1, Type: model.NotifyMessage, Title: "unread"}
	require.NoError(t, m.db.Create(&keepUnread).Error)
	require.NoError(t, m.db.Model(&keepUnread).
		Update("created_at", time.Now().AddDate(0, 0, -120)).Error)

	keepRecent := model.Notification{UserID: 1, Type: model.NotifyMessage, Title: "recent", Read: true}
	require.NoError(t, m.db.Create(&keepRecent).Error)

	m.purgeReadNotifications(90)

	var titles []string
	require.NoError(t, m.db.Model(&model.Notification{}).Pluck("title", &titles).Error)
	assert.ElementsMatch(t, []string{"unread", "recent"}, titles)
}

func TestPurgeTrash(t *testing.T) {
	m := newTestManager(t)

	msg := model.Message{SenderID: 1, ReceiverID: 2, Body: "stale"}
	require.NoError(t, m.db.Create(&msg).Error)
	require.NoError(t, m.db.Delete(&msg).Error)
	require.NoError(t, m.db.Unscoped().Model(&model.Message{}).
		Where("id = ?", msg.ID).
		Update("deleted_at", time.Now().AddDate(0, 0, -60)).Error)

	fresh := model.Message{SenderID: 1, ReceiverID: 2, Body: "just deleted"}
	require.NoError(t, m.db.Create(&fresh).Error)
	require.NoError(t, m.db.Delete(&fresh).Error)

	m.purgeTrash(30)

	var count int64
	require.NoError(t, m.db.Unscoped().Model(&model.Message{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
