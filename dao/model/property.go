package model

import "gorm.io/gorm"

// Property is a managed real-estate asset. Every property belongs to
// exactly one manager; projects are posted against a property.
type Property struct {
	gorm.Model
	ManagerID uint   `gorm:"not null;index;comment:owning manager"`
	Manager   User   `gorm:"foreignKey:ManagerID"`
	Name      string `gorm:"type:varchar(128);not null;comment:property name"`
	Address   string `gorm:"type:varchar(256);comment:street address"`
	City      string `gorm:"type:varchar(64)"`
	State     string `gorm:"type:varchar(32)"`
	Zip       string `gorm:"type:varchar(16)"`

	Projects []Project
}
