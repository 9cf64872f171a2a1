package model

import "gorm.io/gorm"

// Message is a directed sender->receiver text, optionally scoped to a
// project. Messages are never deleted; only the read flag mutates after
// creation.
type Message struct {
	gorm.Model
	SenderID   uint   `gorm:"not null;index:idx_msg_pair"`
	Sender     User   `gorm:"foreignKey:SenderID"`
	ReceiverID uint   `gorm:"not null;index:idx_msg_pair"`
	Receiver   User   `gorm:"foreignKey:ReceiverID"`
	ProjectID  *uint  `gorm:"index;comment:optional project scope"`
	Body       string `gorm:"type:text;not null"`
	Read       bool   `gorm:"not null;default:false;index"`
}
