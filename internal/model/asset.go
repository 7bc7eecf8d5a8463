package model

// Asset is an extracted visual element (chart, diagram, image) belonging
// to a document. SegmentID is nullable: an asset the locator could not
// place stays unassigned and is only reachable through document-level
// fallback. Fingerprint is absent when both caption and context were
// empty at ingestion time.
type Asset struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DocHash     string    `gorm:"type:varchar(32);not null;index;column:doc_hash" json:"docHash"`
	SegmentID   *string   `gorm:"type:varchar(64);index;column:segment_id" json:"segmentId"`
	Page        int       `gorm:"not null" json:"page"`
	Position    int       `gorm:"not null" json:"position"`
	Caption     string    `gorm:"type:text" json:"caption"`
	ContextText string    `gorm:"type:text;column:context_text" json:"contextText"`
	ObjectKey   string    `gorm:"type:varchar(512);not null;column:object_key" json:"objectKey"`
	Fingerprint []float32 `gorm:"serializer:json;column:fingerprint" json:"-"`
}

// TableName sets the table name for the Asset model.
func (Asset) TableName() string {
	return "assets"
}

// HasFingerprint reports whether the asset carries its own vector.
func (a *Asset) HasFingerprint() bool {
	return len(a.Fingerprint) > 0
}
