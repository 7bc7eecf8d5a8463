package model

// EsSegment is the segment record stored in the Elasticsearch index.
// SegmentID is "{docHash}_{ordinal}" and doubles as the ES document ID so
// reprocessing a document overwrites instead of duplicating.
type EsSegment struct {
	SegmentID    string    `json:"segment_id"`
	DocHash      string    `json:"doc_hash"`
	Ordinal      int       `json:"ordinal"`
	Heading      string    `json:"heading"`
	TextContent  string    `json:"text_content"`
	StartPage    int       `json:"start_page"`
	EndPage      int       `json:"end_page"`
	Vector       []float32 `json:"vector"`
	ModelVersion string    `json:"model_version"`
}

// SegmentHit is one nearest-neighbour result mapped out of the raw
// Elasticsearch response at the storage boundary. Similarity is cosine,
// in [-1, 1].
type SegmentHit struct {
	SegmentID  string
	DocHash    string
	Ordinal    int
	Heading    string
	Text       string
	Similarity float64
}
