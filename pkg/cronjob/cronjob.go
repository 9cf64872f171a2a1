// Package cronjob runs the periodic retention sweeps: read notifications
// past their retention window are purged, and soft-deleted rows past the
// trash window are removed for good.
package cronjob

import (
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/config"
)

type Manager struct {
	db   *gorm.DB
	cron *cron.Cron
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{
		db:   db,
		cron: cron.New(),
	}
}

// Start schedules the sweeps and launches the scheduler goroutine.
func (m *Manager) Start() error {
	if _, err := m.cron.AddFunc("30 3 * * *", m.sweepNotifications); err != nil {
		return err
	}
	if _, err := m.cron.AddFunc("45 3 * * *", m.sweepTrash); err != nil {
		return err
	}
	m.cron.Start()
	return nil
}

// Stop waits for a running sweep to finish.
func (m *Manager) Stop() {
	<-m.cron.Stop().Done()
}

func (m *Manager) sweepNotifications() {
	m.purgeReadNotifications(config.GetConfig().Retention.NotificationDays)
}

func (m *Manager) sweepTrash() {
	m.purgeTrash(config.GetConfig().Retention.TrashDays)
}

func (m *Manager) purgeReadNotifications(days int) {
	cutoff := time.Now().AddDate(0, 0, -days)
	res := m.db.Unscoped().
		Where("read = ? AND created_at < ?", true, cutoff).
		Delete(&model.Notification{})
	if res.Error != nil {
		klog.Errorf("notification sweep: %v", res.Error)
		return
	}
	klog.Infof("notification sweep: purged %d read notifications older than %d days", res.RowsAffected, days)
}

// purgeTrash removes soft-deleted rows whose grace period expired.
func (m *Manager) purgeTrash(days int) {
	cutoff := time.Now().AddDate(0, 0, -days)
	for _, target := range []struct {
		name  string
		value any
	}{
		{"messages", &model.Message{}},
		{"documents", &model.Document{}},
		{"bids", &model.Bid{}},
		{"projects", &model.Project{}},
		{"properties", &model.Property{}},
		{"users", &model.User{}},
	} {
		res := m.db.Unscoped().
			Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
			Delete(target.value)
		if res.Error != nil {
			klog.Errorf("trash sweep %s: %v", target.name, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			klog.Infof("trash sweep %s: removed %d rows", target.name, res.RowsAffected)
		}
	}
}
