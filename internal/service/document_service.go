package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"corpus-qa-go/internal/config"
	"corpus-qa-go/internal/model"
	"corpus-qa-go/internal/repository"
	"corpus-qa-go/pkg/es"
	"corpus-qa-go/pkg/log"
	"corpus-qa-go/pkg/storage"

	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"
)

// ErrAssetNotFound reports a lookup for an asset ID that does not exist.
// Any other lookup failure is an infrastructure error, not a miss.
var ErrAssetNotFound = errors.New("asset not found")

// AssetURLDTO carries a presigned link for one asset image.
type AssetURLDTO struct {
	ID       uint   `json:"id"`
	Caption  string `json:"caption"`
	URL      string `json:"url"`
	ExpireIn int64  `json:"expireInSeconds"`
}

// DocumentService manages the ingested corpus.
type DocumentService interface {
	ListDocuments(ctx context.Context) ([]model.Document, error)
	DeleteDocument(ctx context.Context, docHash string) error
	GenerateAssetURL(ctx context.Context, assetID uint) (*AssetURLDTO, error)
}

type documentService struct {
	docRepo   repository.DocumentRepository
	assetRepo repository.AssetRepository
	esCfg     config.ElasticsearchConfig
	minioCfg  config.MinIOConfig
}

// NewDocumentService creates a new DocumentService instance.
func NewDocumentService(docRepo repository.DocumentRepository, assetRepo repository.AssetRepository, esCfg config.ElasticsearchConfig, minioCfg config.MinIOConfig) DocumentService {
	return &documentService{
		docRepo:   docRepo,
		assetRepo: assetRepo,
		esCfg:     esCfg,
		minioCfg:  minioCfg,
	}
}

// ListDocuments returns every document with its segment and asset
// counts, newest first.
func (s *documentService) ListDocuments(ctx context.Context) ([]model.Document, error) {
	return s.docRepo.FindAll(ctx)
}

// DeleteDocument removes one document and everything derived from it:
// indexed segments, asset rows, stored images. Segments and assets never
// outlive their document.
func (s *documentService) DeleteDocument(ctx context.Context, docHash string) error {
	doc, err := s.docRepo.FindByHash(ctx, docHash)
	if err != nil {
		return err
	}
	if doc == nil {
		return errors.New("document not found")
	}

	if err := es.DeleteByDocHash(ctx, s.esCfg.IndexName, docHash); err != nil {
		return err
	}

	assets, err := s.assetRepo.FindByDocHash(ctx, docHash)
	if err != nil {
		return err
	}
	for _, a := range assets {
		if err := storage.MinioClient.RemoveObject(ctx, s.minioCfg.BucketName, a.ObjectKey, minio.RemoveObjectOptions{}); err != nil {
			log.Warnf("[DocumentService] failed to remove asset object %s: %v", a.ObjectKey, err)
		}
	}
	if err := s.assetRepo.DeleteByDocHash(ctx, docHash); err != nil {
		return err
	}

	if err := s.docRepo.DeleteByHash(ctx, docHash); err != nil {
		return err
	}

	log.Infof("[DocumentService] deleted document %s (%d assets)", docHash, len(assets))
	return nil
}

// GenerateAssetURL returns a presigned, time-limited download link for
// one asset image.
func (s *documentService) GenerateAssetURL(ctx context.Context, assetID uint) (*AssetURLDTO, error) {
	asset, err := s.assetRepo.FindByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to load asset %d: %w", assetID, err)
	}

	expiry := time.Hour
	url, err := storage.GetPresignedURL(s.minioCfg.BucketName, asset.ObjectKey, expiry)
	if err != nil {
		return nil, err
	}

	return &AssetURLDTO{
		ID:       asset.ID,
		Caption:  asset.Caption,
		URL:      url,
		ExpireIn: int64(expiry.Seconds()),
	}, nil
}
