// Package main is the application entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"corpus-qa-go/internal/config"
	"corpus-qa-go/internal/handler"
	"corpus-qa-go/internal/middleware"
	"corpus-qa-go/internal/pipeline"
	"corpus-qa-go/internal/repository"
	"corpus-qa-go/internal/retrieval"
	"corpus-qa-go/internal/service"
	"corpus-qa-go/pkg/database"
	"corpus-qa-go/pkg/embedding"
	"corpus-qa-go/pkg/es"
	"corpus-qa-go/pkg/extract"
	"corpus-qa-go/pkg/kafka"
	"corpus-qa-go/pkg/llm"
	"corpus-qa-go/pkg/log"
	"corpus-qa-go/pkg/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Load configuration
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. Initialize the logger
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("logger initialized")

	// 3. Initialize storage backends
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch, cfg.Embedding.Dimensions); err != nil {
		log.Errorf("failed to initialize elasticsearch: %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	// 4. Repositories
	docRepo := repository.NewDocumentRepository(database.DB)
	assetRepo := repository.NewAssetRepository(database.DB)
	var cacheRepo repository.CacheRepository
	if cfg.Cache.Enabled {
		cacheRepo = repository.NewCacheRepository(database.RDB, time.Duration(cfg.Cache.EmbeddingTTLHours)*time.Hour)
	}

	// 5. Clients and services (dependency injection)
	extractClient := extract.NewClient(cfg.Extraction)
	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)

	segmentStore := es.NewSegmentStore(es.ESClient, cfg.Elasticsearch.IndexName)
	engine := retrieval.NewEngine(segmentStore, docRepo, assetRepo)

	retrieveService := service.NewRetrieveService(embeddingClient, engine, cacheRepo, cfg.Cache)
	answerService := service.NewAnswerService(retrieveService, llmClient, cfg.MinIO)
	documentService := service.NewDocumentService(docRepo, assetRepo, cfg.Elasticsearch, cfg.MinIO)
	ingestService := service.NewIngestService(docRepo, cfg.MinIO)

	// 6. Document processing pipeline
	processor := pipeline.NewProcessor(
		extractClient,
		embeddingClient,
		cfg.Elasticsearch,
		cfg.MinIO,
		cfg.Embedding,
		cfg.Retrieval,
		docRepo,
		assetRepo,
	)

	// 7. Background Kafka consumer
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 8. Gin engine with the request logger and recovery middleware
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 9. Routes
	apiV1 := r.Group("/api/v1")
	{
		query := apiV1.Group("/query")
		{
			query.POST("/context", handler.NewRetrieveHandler(retrieveService).RetrieveContext)
		}

		documents := apiV1.Group("/documents")
		{
			documents.POST("", handler.NewIngestHandler(ingestService).SubmitDocument)
			documents.GET("", handler.NewDocumentHandler(documentService).ListDocuments)
			documents.DELETE("/:docHash", handler.NewDocumentHandler(documentService).DeleteDocument)
		}

		assets := apiV1.Group("/assets")
		{
			assets.GET("/:id/url", handler.NewDocumentHandler(documentService).GenerateAssetURL)
		}
	}
	r.GET("/chat", handler.NewChatHandler(answerService).Handle)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start the HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP server shutdown failed: %v", err)
	}

	// The Kafka consumer loop ends with the process; no explicit stop
	// channel is needed here.
	log.Info("server stopped")
}
