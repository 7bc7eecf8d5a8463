// Package service contains the application's business logic layer.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"corpus-qa-go/internal/config"
	"corpus-qa-go/internal/repository"
	"corpus-qa-go/internal/retrieval"
	"corpus-qa-go/pkg/embedding"
	"corpus-qa-go/pkg/log"

	"github.com/google/uuid"
)

// RetrieveService exposes the core retrieve_context operation.
type RetrieveService interface {
	RetrieveContext(ctx context.Context, question string, opts retrieval.Options) (*retrieval.ContextPackage, error)
}

type retrieveService struct {
	embeddingClient embedding.Client
	engine          *retrieval.Engine
	cache           repository.CacheRepository
	contextTTL      time.Duration
}

// NewRetrieveService creates a new RetrieveService instance. cache may
// be nil, which disables the side caches.
func NewRetrieveService(embeddingClient embedding.Client, engine *retrieval.Engine, cache repository.CacheRepository, cacheCfg config.CacheConfig) RetrieveService {
	contextTTL := time.Duration(cacheCfg.ContextTTLMinutes) * time.Minute
	if contextTTL <= 0 {
		contextTTL = 10 * time.Minute
	}
	return &retrieveService{
		embeddingClient: embeddingClient,
		engine:          engine,
		cache:           cache,
		contextTTL:      contextTTL,
	}
}

// RetrieveContext fingerprints the question and runs the retrieval
// pipeline. Identical question/option pairs are served from the context
// cache within its TTL.
func (s *retrieveService) RetrieveContext(ctx context.Context, question string, opts retrieval.Options) (*retrieval.ContextPackage, error) {
	queryID := uuid.NewString()
	log.Infof("[RetrieveService] query %s: %q", queryID, question)

	cacheKey := s.contextCacheKey(question, opts)
	if s.cache != nil {
		var cached retrieval.ContextPackage
		if s.cache.GetJSON(ctx, cacheKey, &cached) {
			log.Infof("[RetrieveService] query %s served from context cache", queryID)
			return &cached, nil
		}
	}

	vector, err := s.queryVector(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint question: %w", err)
	}

	pkg, err := s.engine.Retrieve(ctx, question, vector, opts)
	if err != nil {
		return nil, err
	}
	if pkg.Partial {
		log.Warnf("[RetrieveService] query %s returned partial results: %d segments", queryID, len(pkg.Entries))
	} else {
		log.Infof("[RetrieveService] query %s assembled %d segments, %d assets, %d/%d budget",
			queryID, len(pkg.Entries), len(pkg.Assets), pkg.BudgetUsed, pkg.Budget)
	}

	if s.cache != nil {
		s.cache.SetJSON(ctx, cacheKey, pkg, s.contextTTL)
	}
	return pkg, nil
}

// queryVector returns the question's fingerprint, via the embedding
// cache when enabled.
func (s *retrieveService) queryVector(ctx context.Context, question string) ([]float32, error) {
	if s.cache != nil {
		if vector, ok := s.cache.GetVector(ctx, question); ok {
			return vector, nil
		}
	}
	vector, err := s.embeddingClient.Embed(ctx, question)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetVector(ctx, question, vector)
	}
	return vector, nil
}

// contextCacheKey hashes the question together with the options that
// change the result.
func (s *retrieveService) contextCacheKey(question string, opts retrieval.Options) string {
	optBytes, _ := json.Marshal(opts)
	return repository.ContentKey("context", question+"|"+string(optBytes))
}
