// Package handler contains the Gin HTTP handlers.
package handler

import (
	"errors"
	"net/http"

	"corpus-qa-go/internal/config"
	"corpus-qa-go/internal/retrieval"
	"corpus-qa-go/internal/service"
	"corpus-qa-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// RetrieveHandler serves the retrieve_context operation.
type RetrieveHandler struct {
	retrieveService service.RetrieveService
}

// NewRetrieveHandler creates a new RetrieveHandler instance.
func NewRetrieveHandler(retrieveService service.RetrieveService) *RetrieveHandler {
	return &RetrieveHandler{retrieveService: retrieveService}
}

// retrieveRequest is the request body of POST /query/context. All option
// fields are optional; absent fields take the configured defaults. The
// float fields are pointers so an explicit 0 (no threshold, ignore
// recency) is honored rather than treated as unset.
type retrieveRequest struct {
	Question            string   `json:"question" binding:"required"`
	SimilarityThreshold *float64 `json:"similarityThreshold"`
	CandidateLimit      int      `json:"candidateLimit"`
	RecencyWeight       *float64 `json:"recencyWeight"`
	MaxImages           int      `json:"maxImages"`
	ContextBudget       int      `json:"contextBudget"`
	DocumentFilter      []string `json:"documentFilter"`
}

// RetrieveContext handles POST /query/context.
func (h *RetrieveHandler) RetrieveContext(c *gin.Context) {
	var req retrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	// request fields override the configured tunables; absent keeps config.
	opts := retrieval.OptionsFromConfig(config.Conf.Retrieval)
	if req.SimilarityThreshold != nil {
		opts.SimilarityThreshold = req.SimilarityThreshold
	}
	if req.CandidateLimit != 0 {
		opts.CandidateLimit = req.CandidateLimit
	}
	if req.RecencyWeight != nil {
		opts.RecencyWeight = req.RecencyWeight
	}
	if req.MaxImages != 0 {
		opts.MaxImages = req.MaxImages
	}
	if req.ContextBudget != 0 {
		opts.ContextBudget = req.ContextBudget
	}
	opts.DocumentFilter = req.DocumentFilter

	pkg, err := h.retrieveService.RetrieveContext(c.Request.Context(), req.Question, opts)
	if err != nil {
		switch {
		case errors.Is(err, retrieval.ErrEmptyCorpus):
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "no documents match the query"})
		case errors.Is(err, retrieval.ErrStorageTimeout):
			c.JSON(http.StatusGatewayTimeout, gin.H{"code": 504, "message": "storage query timed out, retry later"})
		default:
			log.Errorf("[RetrieveHandler] retrieval failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "retrieval failed"})
		}
		return
	}

	message := "success"
	if pkg.Partial {
		message = "partial results: fewer candidates than requested"
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": pkg, "message": message})
}
