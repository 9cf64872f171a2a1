package model

import "gorm.io/gorm"

// Bid is a vendor's priced proposal against a project. At most one bid
// per (project, vendor) pair; at most one bid per project may ever be
// Accepted.
type Bid struct {
	gorm.Model
	ProjectID   uint      `gorm:"not null;uniqueIndex:idx_bid_project_vendor;comment:target project"`
	Project     Project   `gorm:"foreignKey:ProjectID"`
	VendorID    uint      `gorm:"not null;uniqueIndex:idx_bid_project_vendor;comment:submitting vendor"`
	Vendor      User      `gorm:"foreignKey:VendorID"`
	Amount      float64   `gorm:"not null;comment:bid amount"`
	Description string    `gorm:"type:text"`
	Timeline    string    `gorm:"type:varchar(128);comment:free-form estimated timeline"`
	Status      BidStatus `gorm:"type:varchar(32);not null;index;default:Pending"`
}
