package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is the basic entity of the system.
type User struct {
	gorm.Model
	Name       string                            `gorm:"uniqueIndex;type:varchar(32);not null;comment:login name"`
	Nickname   string                            `gorm:"type:varchar(64);comment:display name"`
	Password   *string                           `gorm:"type:varchar(128);comment:bcrypt hash, nil for directory accounts"`
	Role       Role                              `gorm:"type:varchar(32);not null;comment:platform role (admin, manager, vendor)"`
	Status     Status                            `gorm:"type:varchar(32);not null;comment:account status (active, inactive)"`
	Attributes datatypes.JSONType[UserAttribute] `gorm:"comment:extra profile attributes"`
}

// UserAttribute holds profile fields that do not participate in queries.
type UserAttribute struct {
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`
	Avatar  *string `json:"avatar,omitempty"`
}
