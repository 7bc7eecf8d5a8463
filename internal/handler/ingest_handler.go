package handler

import (
	"net/http"

	"corpus-qa-go/internal/service"
	"corpus-qa-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// IngestHandler accepts document uploads and queues them for processing.
type IngestHandler struct {
	ingestService service.IngestService
}

// NewIngestHandler creates a new IngestHandler instance.
func NewIngestHandler(ingestService service.IngestService) *IngestHandler {
	return &IngestHandler{ingestService: ingestService}
}

// SubmitDocument handles POST /documents. The file is stored and a
// processing task is queued; the response is returned before indexing
// completes.
func (h *IngestHandler) SubmitDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Errorf("SubmitDocument: failed to open upload %s: %v", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer file.Close()

	result, err := h.ingestService.SubmitDocument(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		log.Errorf("SubmitDocument: failed for %s: %v", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit document"})
		return
	}

	status := http.StatusAccepted
	if !result.Queued {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"code":    status,
		"message": result.Message,
		"data":    result,
	})
}
