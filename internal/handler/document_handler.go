package handler

import (
	"errors"
	"net/http"
	"strconv"

	"corpus-qa-go/internal/service"
	"corpus-qa-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// DocumentHandler serves the document management API.
type DocumentHandler struct {
	docService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler instance.
func NewDocumentHandler(docService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docService: docService}
}

// ListDocuments handles GET /documents.
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	docs, err := h.docService.ListDocuments(c.Request.Context())
	if err != nil {
		log.Error("ListDocuments: failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    docs,
	})
}

// DeleteDocument handles DELETE /documents/:docHash. Removes the document
// and all of its segments, assets and stored objects.
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	docHash := c.Param("docHash")
	if docHash == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing document hash"})
		return
	}

	if err := h.docService.DeleteDocument(c.Request.Context(), docHash); err != nil {
		log.Warnf("DeleteDocument: failed for hash %s, err: %v", docHash, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "document deleted",
	})
}

// GenerateAssetURL handles GET /assets/:id/url, returning a presigned
// time-limited link to the rendered asset image.
func (h *DocumentHandler) GenerateAssetURL(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset id"})
		return
	}

	info, err := h.docService.GenerateAssetURL(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrAssetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
			return
		}
		log.Errorf("GenerateAssetURL: failed for asset %d, err: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate asset link"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    info,
	})
}
