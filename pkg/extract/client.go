// Package extract provides a client for the document extraction service,
// which turns uploaded source files into per-page text plus page-anchored
// image assets.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"corpus-qa-go/internal/config"
)

// Page is one page of extracted text. Pages arrive in reading order.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// PageAsset is one extracted visual element anchored to a page.
// Position is the character offset of the asset marker within the page
// text, as estimated by the extraction service.
type PageAsset struct {
	Page      int    `json:"page"`
	Position  int    `json:"position"`
	Caption   string `json:"caption"`
	ImageData []byte `json:"image_data"`
}

// Result is the full extraction output for one document.
type Result struct {
	Pages  []Page      `json:"pages"`
	Assets []PageAsset `json:"assets"`
}

// Client talks to the extraction server.
type Client struct {
	serverURL string
	client    *http.Client
}

// NewClient creates a new extraction client.
func NewClient(cfg config.ExtractionConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		serverURL: cfg.ServerURL,
		client:    &http.Client{Timeout: timeout},
	}
}

// Extract sends the file body to the extraction server and decodes the
// page/asset result.
func (c *Client) Extract(ctx context.Context, fileReader io.Reader, fileName string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, "PUT", c.serverURL+"/extract", fileReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", detectMimeType(fileName))
	req.Header.Set("X-Filename", fileName)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call extraction service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("extraction service returned [%d]: %s", resp.StatusCode, string(body))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", err)
	}
	return &result, nil
}

// detectMimeType infers the Content-Type from the file extension.
func detectMimeType(fileName string) string {
	ext := filepath.Ext(fileName)
	if ext == "" {
		return "application/octet-stream"
	}
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "application/octet-stream"
	}
	return mimeType
}
