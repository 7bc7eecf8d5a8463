// Package pipeline implements the ingestion-time document processing
// flow: extraction, segmentation, asset location, fingerprinting and
// indexing. Errors here are scoped to one document and never disturb
// other ingestions or in-flight queries.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"corpus-qa-go/internal/config"
	"corpus-qa-go/internal/model"
	"corpus-qa-go/internal/repository"
	"corpus-qa-go/internal/segmenter"
	"corpus-qa-go/pkg/embedding"
	"corpus-qa-go/pkg/es"
	"corpus-qa-go/pkg/extract"
	"corpus-qa-go/pkg/log"
	"corpus-qa-go/pkg/storage"
	"corpus-qa-go/pkg/tasks"

	"github.com/minio/minio-go/v7"
)

// Processor holds the dependencies of the document ingestion flow.
type Processor struct {
	extractClient   *extract.Client
	embeddingClient embedding.Client
	esCfg           config.ElasticsearchConfig
	minioCfg        config.MinIOConfig
	embeddingCfg    config.EmbeddingConfig
	retrievalCfg    config.RetrievalConfig
	docRepo         repository.DocumentRepository
	assetRepo       repository.AssetRepository
}

// NewProcessor creates a new Processor instance.
func NewProcessor(
	extractClient *extract.Client,
	embeddingClient embedding.Client,
	esCfg config.ElasticsearchConfig,
	minioCfg config.MinIOConfig,
	embeddingCfg config.EmbeddingConfig,
	retrievalCfg config.RetrievalConfig,
	docRepo repository.DocumentRepository,
	assetRepo repository.AssetRepository,
) *Processor {
	return &Processor{
		extractClient:   extractClient,
		embeddingClient: embeddingClient,
		esCfg:           esCfg,
		minioCfg:        minioCfg,
		embeddingCfg:    embeddingCfg,
		retrievalCfg:    retrievalCfg,
		docRepo:         docRepo,
		assetRepo:       assetRepo,
	}
}

// Process ingests one document end to end. Reprocessing the same hash is
// idempotent: existing segments and assets are cleared first, and the
// document only becomes visible to queries (status ready) once all of
// its segments and assets are written.
func (p *Processor) Process(ctx context.Context, task tasks.DocumentProcessingTask) error {
	log.Infof("[Processor] ingesting document, hash: %s, file: %s", task.DocHash, task.Filename)

	object, err := storage.MinioClient.GetObject(ctx, p.minioCfg.BucketName, task.ObjectKey, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to download document from object storage: %w", err)
	}
	defer object.Close()

	buf := new(bytes.Buffer)
	size, err := buf.ReadFrom(object)
	if err != nil {
		return fmt.Errorf("failed to read object stream: %w", err)
	}
	if size == 0 {
		return errors.New("document is empty")
	}

	result, err := p.extractClient.Extract(ctx, bytes.NewReader(buf.Bytes()), task.Filename)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	log.Infof("[Processor] extracted %d pages and %d assets", len(result.Pages), len(result.Assets))

	segments, err := segmenter.Split(result.Pages, p.retrievalCfg.SegmentSize)
	if err != nil {
		return fmt.Errorf("segmentation failed: %w", err)
	}
	if len(segments) == 0 {
		return errors.New("document produced no segments")
	}
	log.Infof("[Processor] produced %d segments", len(segments))

	located := segmenter.Assign(segments, result.Pages, result.Assets, segmenter.DefaultContextWindow)

	if err := p.cleanup(ctx, task.DocHash); err != nil {
		return err
	}

	doc := &model.Document{
		DocHash:  task.DocHash,
		Filename: task.Filename,
		Status:   model.DocStatusProcessing,
	}
	if err := p.docRepo.Create(ctx, doc); err != nil {
		return fmt.Errorf("failed to create document record: %w", err)
	}

	if err := p.indexSegments(ctx, task.DocHash, segments); err != nil {
		p.markFailed(ctx, doc)
		return err
	}

	assetCount, err := p.storeAssets(ctx, task.DocHash, located)
	if err != nil {
		p.markFailed(ctx, doc)
		return err
	}

	doc.SegmentCount = len(segments)
	doc.AssetCount = assetCount
	doc.Status = model.DocStatusReady
	if err := p.docRepo.Update(ctx, doc); err != nil {
		return fmt.Errorf("failed to mark document ready: %w", err)
	}

	log.Infof("[Processor] document ingested, hash: %s, segments: %d, assets: %d", task.DocHash, len(segments), assetCount)
	return nil
}

// cleanup removes any prior state for the hash so reprocessing never
// accumulates duplicates.
func (p *Processor) cleanup(ctx context.Context, docHash string) error {
	if err := es.DeleteByDocHash(ctx, p.esCfg.IndexName, docHash); err != nil {
		return fmt.Errorf("failed to clear old segments: %w", err)
	}
	if err := p.assetRepo.DeleteByDocHash(ctx, docHash); err != nil {
		return fmt.Errorf("failed to clear old assets: %w", err)
	}
	if err := p.docRepo.DeleteByHash(ctx, docHash); err != nil {
		return fmt.Errorf("failed to clear old document record: %w", err)
	}
	return nil
}

func (p *Processor) markFailed(ctx context.Context, doc *model.Document) {
	doc.Status = model.DocStatusFailed
	if err := p.docRepo.Update(ctx, doc); err != nil {
		log.Errorf("[Processor] failed to mark document failed, hash: %s: %v", doc.DocHash, err)
	}
}

// indexSegments fingerprints each segment and writes it to the segment
// index.
func (p *Processor) indexSegments(ctx context.Context, docHash string, segments []segmenter.Segment) error {
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	vectors, err := p.embeddingClient.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("segment fingerprinting failed: %w", err)
	}

	for i, seg := range segments {
		esSeg := model.EsSegment{
			SegmentID:    SegmentKey(docHash, seg.Ordinal),
			DocHash:      docHash,
			Ordinal:      seg.Ordinal,
			Heading:      seg.Heading,
			TextContent:  seg.Text,
			StartPage:    seg.StartPage,
			EndPage:      seg.EndPage,
			Vector:       vectors[i],
			ModelVersion: p.embeddingCfg.Model,
		}
		if err := es.IndexSegment(ctx, p.esCfg.IndexName, esSeg); err != nil {
			return fmt.Errorf("failed to index segment %d: %w", seg.Ordinal, err)
		}
	}
	return nil
}

// storeAssets uploads each asset image, fingerprints the ones with
// usable caption/context text and writes the asset rows in one batch.
// Assets with empty caption and context are stored without a
// fingerprint; the asset ranker scores those by their segment instead.
func (p *Processor) storeAssets(ctx context.Context, docHash string, located []segmenter.LocatedAsset) (int, error) {
	if len(located) == 0 {
		return 0, nil
	}

	rows := make([]*model.Asset, 0, len(located))
	for i, la := range located {
		objectKey := fmt.Sprintf("assets/%s/%03d.png", docHash, i+1)
		_, err := storage.MinioClient.PutObject(ctx, p.minioCfg.BucketName, objectKey,
			bytes.NewReader(la.Raw.ImageData), int64(len(la.Raw.ImageData)),
			minio.PutObjectOptions{ContentType: "image/png"})
		if err != nil {
			return 0, fmt.Errorf("failed to upload asset %d: %w", i+1, err)
		}

		row := &model.Asset{
			DocHash:     docHash,
			Page:        la.Raw.Page,
			Position:    la.Raw.Position,
			Caption:     la.Raw.Caption,
			ContextText: la.Context,
			ObjectKey:   objectKey,
		}
		if la.SegmentOrdinal != nil {
			key := SegmentKey(docHash, *la.SegmentOrdinal)
			row.SegmentID = &key
		}

		fingerprintText := strings.TrimSpace(la.Raw.Caption + " " + la.Context)
		if fingerprintText != "" {
			vector, err := p.embeddingClient.Embed(ctx, fingerprintText)
			if err != nil {
				return 0, fmt.Errorf("asset fingerprinting failed for asset %d: %w", i+1, err)
			}
			row.Fingerprint = vector
		}
		rows = append(rows, row)
	}

	if err := p.assetRepo.BatchCreate(ctx, rows); err != nil {
		return 0, fmt.Errorf("failed to store asset records: %w", err)
	}
	return len(rows), nil
}

// SegmentKey builds the segment identifier used across the segment index
// and the assets table.
func SegmentKey(docHash string, ordinal int) string {
	return fmt.Sprintf("%s_%d", docHash, ordinal)
}
