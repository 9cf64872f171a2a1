package model

import "gorm.io/gorm"

// Document is a metadata record for a binary payload kept in object
// storage. Exactly one of ProjectID / BidID is set. The Locator is an
// opaque object-store key, never a public URL.
type Document struct {
	gorm.Model
	UploaderID  uint   `gorm:"not null;index;comment:uploading user"`
	Uploader    User   `gorm:"foreignKey:UploaderID"`
	ProjectID   *uint  `gorm:"index;comment:linked project, mutually exclusive with bid_id"`
	BidID       *uint  `gorm:"index;comment:linked bid, mutually exclusive with project_id"`
	Name        string `gorm:"type:varchar(256);not null;comment:original file name"`
	ContentType string `gorm:"type:varchar(128)"`
	Size        int64  `gorm:"not null"`
	Locator     string `gorm:"type:varchar(512);not null;uniqueIndex;comment:object store key"`
}
