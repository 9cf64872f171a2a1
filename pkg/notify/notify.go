// Package notify persists notifications and mirrors them to connected
// clients. The persisted row is the source of truth: it is written on
// the caller's transaction, and the live push fires only after commit.
// Push delivery is fire-and-forget and never fails the mutation that
// triggered it.
package notify

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/config"
	"github.com/propline/bidboard/pkg/hub"
	"github.com/propline/bidboard/pkg/logutils"
)

// EventNotification is the websocket event name for pushed notifications.
const EventNotification = "notification"

// channel is a secondary best-effort delivery path (email, webhook).
type channel interface {
	Name() string
	SendTo(ctx context.Context, recipient *model.User, n *model.Notification) error
}

type Dispatcher struct {
	db       *gorm.DB
	hub      *hub.Hub
	channels []channel
}

// New builds a dispatcher with no secondary channels; live push only.
func New(db *gorm.DB, h *hub.Hub) *Dispatcher {
	return &Dispatcher{db: db, hub: h}
}

// NewDispatcher builds a dispatcher with the channels enabled in config.
func NewDispatcher(db *gorm.DB, h *hub.Hub) *Dispatcher {
	d := New(db, h)
	cfg := config.GetConfig()
	if cfg.SMTP.Enable {
		d.channels = append(d.channels, newSMTPChannel())
	}
	if cfg.Webhook.Enable {
		d.channels = append(d.channels, newWebhookChannel())
	}
	return d
}

// Create persists the notification on the supplied transaction handle.
// The caller pushes after commit; creating and pushing in one step is
// what Dispatch is for.
func (d *Dispatcher) Create(tx *gorm.DB, n *model.Notification) error {
	if err := tx.Create(n).Error; err != nil {
		return fmt.Errorf("notify: persist notification: %w", err)
	}
	return nil
}

// Push mirrors an already-persisted notification to the recipient's
// live channel and any secondary channels. Errors are logged, never
// returned.
func (d *Dispatcher) Push(ctx context.Context, n *model.Notification) {
	d.hub.Publish(n.UserID, EventNotification, n)

	if len(d.channels) == 0 {
		return
	}
	var recipient model.User
	if err := d.db.WithContext(ctx).First(&recipient, n.UserID).Error; err != nil {
		logutils.Log.Errorf("notify: load recipient %d: %v", n.UserID, err)
		return
	}
	for _, ch := range d.channels {
		if err := ch.SendTo(ctx, &recipient, n); err != nil {
			logutils.Log.Errorf("notify: channel %s to user %d: %v", ch.Name(), n.UserID, err)
		}
	}
}

// Dispatch persists on db and then pushes, for call sites that have no
// surrounding transaction.
func (d *Dispatcher) Dispatch(ctx context.Context, db *gorm.DB, n *model.Notification) error {
	if err := d.Create(db.WithContext(ctx), n); err != nil {
		return err
	}
	d.Push(ctx, n)
	return nil
}
