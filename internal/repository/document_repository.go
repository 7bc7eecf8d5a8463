// Package repository implements the data access layer over MySQL and
// Redis.
package repository

import (
	"context"
	"errors"
	"time"

	"corpus-qa-go/internal/model"

	"gorm.io/gorm"
)

// DocumentRepository defines operations on the documents table.
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	Update(ctx context.Context, doc *model.Document) error
	FindByHash(ctx context.Context, docHash string) (*model.Document, error)
	FindBatchByHashes(ctx context.Context, hashes []string) ([]*model.Document, error)
	FindAll(ctx context.Context) ([]model.Document, error)
	OldestIngestedAt(ctx context.Context) (time.Time, error)
	DeleteByHash(ctx context.Context, docHash string) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new DocumentRepository instance.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create inserts a new document record.
func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// Update saves the full document record.
func (r *documentRepository) Update(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

// FindByHash returns the document with the given content hash, or nil
// when none exists.
func (r *documentRepository) FindByHash(ctx context.Context, docHash string) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).Where("doc_hash = ?", docHash).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindBatchByHashes resolves a set of document hashes in one query.
func (r *documentRepository) FindBatchByHashes(ctx context.Context, hashes []string) ([]*model.Document, error) {
	var docs []*model.Document
	if len(hashes) == 0 {
		return docs, nil
	}
	err := r.db.WithContext(ctx).Where("doc_hash IN ?", hashes).Find(&docs).Error
	return docs, err
}

// FindAll lists every ready document, newest first.
func (r *documentRepository) FindAll(ctx context.Context) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).Order("ingested_at desc").Find(&docs).Error
	return docs, err
}

// OldestIngestedAt returns the ingestion time of the oldest ready
// document, used to normalize recency scores. An empty corpus yields the
// zero time.
func (r *documentRepository) OldestIngestedAt(ctx context.Context) (time.Time, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).
		Where("status = ?", model.DocStatusReady).
		Order("ingested_at asc").
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return doc.IngestedAt, nil
}

// DeleteByHash removes the document record.
func (r *documentRepository) DeleteByHash(ctx context.Context, docHash string) error {
	return r.db.WithContext(ctx).Where("doc_hash = ?", docHash).Delete(&model.Document{}).Error
}
