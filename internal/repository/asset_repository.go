package repository

import (
	"context"

	"corpus-qa-go/internal/model"

	"gorm.io/gorm"
)

// AssetRepository defines operations on the assets table. Segment-scoped
// lookups must resolve a whole set of segment IDs in one query; a
// per-segment loop would cost one round-trip per segment.
type AssetRepository interface {
	BatchCreate(ctx context.Context, assets []*model.Asset) error
	FindByID(ctx context.Context, id uint) (*model.Asset, error)
	FindBySegmentIDs(ctx context.Context, segmentIDs []string) ([]*model.Asset, error)
	FindUnassignedByDocHashes(ctx context.Context, hashes []string) ([]*model.Asset, error)
	FindByDocHash(ctx context.Context, docHash string) ([]*model.Asset, error)
	DeleteByDocHash(ctx context.Context, docHash string) error
}

type assetRepository struct {
	db *gorm.DB
}

// NewAssetRepository creates a new AssetRepository instance.
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

// BatchCreate inserts asset records in batches.
func (r *assetRepository) BatchCreate(ctx context.Context, assets []*model.Asset) error {
	if len(assets) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(assets, 100).Error
}

// FindByID returns one asset record.
func (r *assetRepository) FindByID(ctx context.Context, id uint) (*model.Asset, error) {
	var asset model.Asset
	err := r.db.WithContext(ctx).First(&asset, id).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// FindBySegmentIDs returns all assets assigned to the given segments in
// one batch query.
func (r *assetRepository) FindBySegmentIDs(ctx context.Context, segmentIDs []string) ([]*model.Asset, error) {
	var assets []*model.Asset
	if len(segmentIDs) == 0 {
		return assets, nil
	}
	err := r.db.WithContext(ctx).Where("segment_id IN ?", segmentIDs).Find(&assets).Error
	return assets, err
}

// FindUnassignedByDocHashes returns the document-level fallback assets:
// those the locator left without a segment.
func (r *assetRepository) FindUnassignedByDocHashes(ctx context.Context, hashes []string) ([]*model.Asset, error) {
	var assets []*model.Asset
	if len(hashes) == 0 {
		return assets, nil
	}
	err := r.db.WithContext(ctx).
		Where("doc_hash IN ? AND segment_id IS NULL", hashes).
		Find(&assets).Error
	return assets, err
}

// FindByDocHash returns every asset of one document.
func (r *assetRepository) FindByDocHash(ctx context.Context, docHash string) ([]*model.Asset, error) {
	var assets []*model.Asset
	err := r.db.WithContext(ctx).Where("doc_hash = ?", docHash).Find(&assets).Error
	return assets, err
}

// DeleteByDocHash removes every asset record of one document.
func (r *assetRepository) DeleteByDocHash(ctx context.Context, docHash string) error {
	return r.db.WithContext(ctx).Where("doc_hash = ?", docHash).Delete(&model.Asset{}).Error
}
