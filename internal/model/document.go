// Package model defines the persistent and boundary data structures.
package model

import "time"

// Document status values.
const (
	DocStatusProcessing = 0
	DocStatusReady      = 1
	DocStatusFailed     = 2
)

// Document is one ingested source file. Segments and assets reference it
// by content hash; the row itself is read-only reference data for the
// retrieval pipeline (recency scoring, diversification grouping).
type Document struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DocHash      string    `gorm:"type:varchar(32);not null;uniqueIndex;column:doc_hash" json:"docHash"`
	Filename     string    `gorm:"type:varchar(255);not null" json:"filename"`
	SegmentCount int       `gorm:"not null;default:0" json:"segmentCount"`
	AssetCount   int       `gorm:"not null;default:0" json:"assetCount"`
	Status       int       `gorm:"type:tinyint;not null;default:0" json:"status"`
	IngestedAt   time.Time `gorm:"autoCreateTime" json:"ingestedAt"`
}

// TableName sets the table name for the Document model.
func (Document) TableName() string {
	return "documents"
}
