package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"

	"corpus-qa-go/internal/config"
	"corpus-qa-go/internal/model"
	"corpus-qa-go/internal/repository"
	"corpus-qa-go/pkg/kafka"
	"corpus-qa-go/pkg/log"
	"corpus-qa-go/pkg/storage"
	"corpus-qa-go/pkg/tasks"

	"github.com/minio/minio-go/v7"
)

// IngestResultDTO reports the outcome of one document submission.
type IngestResultDTO struct {
	DocHash string `json:"docHash"`
	Queued  bool   `json:"queued"`
	Message string `json:"message"`
}

// IngestService accepts source files and hands them to the processing
// pipeline through the task queue.
type IngestService interface {
	SubmitDocument(ctx context.Context, filename string, reader io.Reader) (*IngestResultDTO, error)
}

type ingestService struct {
	docRepo  repository.DocumentRepository
	minioCfg config.MinIOConfig
}

// NewIngestService creates a new IngestService instance.
func NewIngestService(docRepo repository.DocumentRepository, minioCfg config.MinIOConfig) IngestService {
	return &ingestService{docRepo: docRepo, minioCfg: minioCfg}
}

// SubmitDocument hashes the file content for deduplication, uploads it
// to object storage and enqueues a processing task. A hash already
// ingested and ready is skipped.
func (s *ingestService) SubmitDocument(ctx context.Context, filename string, reader io.Reader) (*IngestResultDTO, error) {
	buf := new(bytes.Buffer)
	hasher := md5.New()
	size, err := io.Copy(io.MultiWriter(buf, hasher), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if size == 0 {
		return nil, fmt.Errorf("uploaded file is empty")
	}
	docHash := fmt.Sprintf("%x", hasher.Sum(nil))

	existing, err := s.docRepo.FindByHash(ctx, docHash)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == model.DocStatusReady {
		log.Infof("[IngestService] document %s already ingested, skipping", docHash)
		return &IngestResultDTO{DocHash: docHash, Queued: false, Message: "already ingested"}, nil
	}

	objectKey := fmt.Sprintf("sources/%s/%s", docHash, filename)
	_, err = storage.MinioClient.PutObject(ctx, s.minioCfg.BucketName, objectKey,
		bytes.NewReader(buf.Bytes()), size, minio.PutObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	task := tasks.DocumentProcessingTask{
		DocHash:   docHash,
		ObjectKey: objectKey,
		Filename:  filename,
	}
	if err := kafka.ProduceDocumentTask(task); err != nil {
		return nil, fmt.Errorf("failed to enqueue processing task: %w", err)
	}

	log.Infof("[IngestService] document %s queued for processing (%s, %d bytes)", docHash, filename, size)
	return &IngestResultDTO{DocHash: docHash, Queued: true, Message: "queued for processing"}, nil
}
