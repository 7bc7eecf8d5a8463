// Package tasks defines the payloads carried on the ingestion queue.
package tasks

// DocumentProcessingTask asks the pipeline to (re)ingest one document
// already uploaded to object storage.
type DocumentProcessingTask struct {
	DocHash   string `json:"doc_hash"`
	ObjectKey string `json:"object_key"`
	Filename  string `json:"filename"`
}
