package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification is a persisted, user-addressed record of a state change.
// Notifications are created only as a side effect of other mutations and
// remain the source of truth when the live push is missed.
type Notification struct {
	gorm.Model
	UserID uint             `gorm:"not null;index;comment:recipient"`
	User   User             `gorm:"foreignKey:UserID"`
	Type   NotificationType `gorm:"type:varchar(32);not null;index"`
	Title  string           `gorm:"type:varchar(256);not null"`
	Body   string           `gorm:"type:text"`
	Link   string           `gorm:"type:varchar(256);comment:optional frontend deep link"`
	Meta   datatypes.JSON   `gorm:"type:jsonb;comment:structured event payload"`
	Read   bool             `gorm:"not null;default:false;index"`
}
