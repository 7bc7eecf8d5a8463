package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"corpus-qa-go/internal/config"
	"corpus-qa-go/internal/retrieval"
	"corpus-qa-go/pkg/llm"
	"corpus-qa-go/pkg/log"
	"corpus-qa-go/pkg/storage"

	"github.com/gorilla/websocket"
)

// AnswerService streams grounded answers over a websocket connection.
type AnswerService interface {
	StreamAnswer(ctx context.Context, question string, opts retrieval.Options, ws *websocket.Conn, shouldStop func() bool) error
}

type answerService struct {
	retrieveService RetrieveService
	llmClient       llm.Client
	minioCfg        config.MinIOConfig
}

// NewAnswerService creates a new AnswerService instance.
func NewAnswerService(retrieveService RetrieveService, llmClient llm.Client, minioCfg config.MinIOConfig) AnswerService {
	return &answerService{
		retrieveService: retrieveService,
		llmClient:       llmClient,
		minioCfg:        minioCfg,
	}
}

// StreamAnswer retrieves the context for the question, streams the
// generated answer chunk by chunk, then sends a completion notification
// carrying citations, ranked asset links and the confidence flags.
func (s *answerService) StreamAnswer(ctx context.Context, question string, opts retrieval.Options, ws *websocket.Conn, shouldStop func() bool) error {
	pkg, err := s.retrieveService.RetrieveContext(ctx, question, opts)
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyCorpus) {
			return s.sendNoResult(ws)
		}
		return fmt.Errorf("failed to retrieve context: %w", err)
	}

	systemMsg := s.buildSystemMessage(pkg.ContextText)
	messages := []llm.Message{
		{Role: "system", Content: systemMsg},
		{Role: "user", Content: question},
	}

	interceptor := &wsWriterInterceptor{conn: ws, shouldStop: shouldStop}
	if err := s.llmClient.StreamChatMessages(ctx, messages, nil, interceptor); err != nil {
		return err
	}

	return s.sendCompletion(ws, pkg)
}

// buildSystemMessage wraps the retrieved context in the configured
// reference markers so the generation step can reproduce citations.
func (s *answerService) buildSystemMessage(contextText string) string {
	prompt := config.Conf.LLM.Prompt

	rules := prompt.Rules
	refStart := prompt.RefStart
	if refStart == "" {
		refStart = "<<REF>>"
	}
	refEnd := prompt.RefEnd
	if refEnd == "" {
		refEnd = "<<END>>"
	}

	var sys strings.Builder
	if rules != "" {
		sys.WriteString(rules)
		sys.WriteString("\n\n")
	}
	sys.WriteString(refStart)
	sys.WriteString("\n")
	if contextText != "" {
		sys.WriteString(contextText)
	} else {
		noRes := prompt.NoResultText
		if noRes == "" {
			noRes = "(no retrieval results this round)"
		}
		sys.WriteString(noRes)
		sys.WriteString("\n")
	}
	sys.WriteString(refEnd)
	return sys.String()
}

// sendCompletion closes the answer with the supporting evidence: one
// citation per included segment and a presigned URL per ranked asset.
func (s *answerService) sendCompletion(ws *websocket.Conn, pkg *retrieval.ContextPackage) error {
	citations := make([]string, 0, len(pkg.Entries))
	for _, e := range pkg.Entries {
		citations = append(citations, e.Citation)
	}

	type assetRef struct {
		ID      uint    `json:"id"`
		Caption string  `json:"caption"`
		Score   float64 `json:"score"`
		URL     string  `json:"url"`
	}
	assets := make([]assetRef, 0, len(pkg.Assets))
	for _, ra := range pkg.Assets {
		url, err := storage.GetPresignedURL(s.minioCfg.BucketName, ra.Asset.ObjectKey, time.Hour)
		if err != nil {
			log.Warnf("[AnswerService] failed to presign asset %d: %v", ra.Asset.ID, err)
			continue
		}
		assets = append(assets, assetRef{
			ID:      ra.Asset.ID,
			Caption: ra.Asset.Caption,
			Score:   ra.Score,
			URL:     url,
		})
	}

	notif := map[string]interface{}{
		"type":      "completion",
		"status":    "finished",
		"partial":   pkg.Partial,
		"citations": citations,
		"assets":    assets,
		"timestamp": time.Now().UnixMilli(),
	}
	b, err := json.Marshal(notif)
	if err != nil {
		return err
	}
	return ws.WriteMessage(websocket.TextMessage, b)
}

func (s *answerService) sendNoResult(ws *websocket.Conn) error {
	noRes := config.Conf.LLM.Prompt.NoResultText
	if noRes == "" {
		noRes = "No documents in the corpus match this question."
	}
	notif := map[string]interface{}{
		"type":      "completion",
		"status":    "no_result",
		"message":   noRes,
		"timestamp": time.Now().UnixMilli(),
	}
	b, err := json.Marshal(notif)
	if err != nil {
		return err
	}
	return ws.WriteMessage(websocket.TextMessage, b)
}

// wsWriterInterceptor wraps the websocket connection so streamed chunks
// go out as {"chunk":"..."} frames and a stop request mutes delivery.
type wsWriterInterceptor struct {
	conn       *websocket.Conn
	shouldStop func() bool
}

// WriteMessage satisfies llm.MessageWriter.
func (w *wsWriterInterceptor) WriteMessage(messageType int, data []byte) error {
	if w.shouldStop != nil && w.shouldStop() {
		return nil
	}
	payload := map[string]string{"chunk": string(data)}
	b, _ := json.Marshal(payload)
	return w.conn.WriteMessage(messageType, b)
}
