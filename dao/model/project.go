package model

import (
	"time"

	"gorm.io/gorm"
)

// Project is a unit of work posted against a property, open for vendor
// bidding. ManagerID is denormalized from the property so authorization
// checks do not need a join.
type Project struct {
	gorm.Model
	PropertyID    uint          `gorm:"not null;index;comment:parent property"`
	Property      Property      `gorm:"foreignKey:PropertyID"`
	ManagerID     uint          `gorm:"not null;index;comment:manager of the parent property"`
	Title         string        `gorm:"type:varchar(128);not null"`
	Description   string        `gorm:"type:text"`
	Category      string        `gorm:"type:varchar(64);comment:trade category (roofing, plumbing...)"`
	Budget        *float64      `gorm:"comment:manager budget estimate, hidden from vendors"`
	InternalNotes string        `gorm:"type:text;comment:manager-only notes, hidden from vendors"`
	BidDeadline   *time.Time    `gorm:"comment:soft deadline shown to vendors"`
	Status        ProjectStatus `gorm:"type:varchar(32);not null;index;default:Draft"`

	Bids []Bid
}
