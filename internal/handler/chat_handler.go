package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"corpus-qa-go/internal/config"
	"corpus-qa-go/internal/retrieval"
	"corpus-qa-go/internal/service"
	"corpus-qa-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ChatHandler owns the WebSocket question/answer loop.
type ChatHandler struct {
	answerService service.AnswerService
	// per-connection stop flags
	stopFlags sync.Map // key: session pointer string, value: bool
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(answerService service.AnswerService) *ChatHandler {
	return &ChatHandler{answerService: answerService}
}

// chatMessage is a single inbound WebSocket frame. Type "stop" interrupts
// the stream in flight; anything else is treated as a question.
type chatMessage struct {
	Type     string `json:"type"`
	Question string `json:"question"`
}

// Handle upgrades the connection and serves questions until the peer leaves.
func (h *ChatHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket upgrade failed", err)
		return
	}
	defer conn.Close()
	defer h.stopFlags.Delete(sessionKey(conn))

	log.Infof("WebSocket connection established from %s", c.ClientIP())

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("failed to read WebSocket message: %v", err)
			break
		}

		question := string(message)
		if len(message) > 0 && message[0] == '{' {
			var msg chatMessage
			if err := json.Unmarshal(message, &msg); err == nil {
				if msg.Type == "stop" {
					h.stopFlags.Store(sessionKey(conn), true)
					resp := map[string]interface{}{
						"type":      "stop",
						"message":   "response stopped",
						"timestamp": time.Now().UnixMilli(),
					}
					b, _ := json.Marshal(resp)
					_ = conn.WriteMessage(websocket.TextMessage, b)
					continue
				}
				if msg.Question != "" {
					question = msg.Question
				}
			}
		}

		key := sessionKey(conn)
		h.stopFlags.Delete(key)
		shouldStop := func() bool {
			v, ok := h.stopFlags.Load(key)
			return ok && v.(bool)
		}

		err = h.answerService.StreamAnswer(c.Request.Context(), question, retrieval.OptionsFromConfig(config.Conf.Retrieval), conn, shouldStop)
		if err != nil {
			log.Errorf("failed to stream answer: %v", err)
			errResp := map[string]string{"error": "answer service is temporarily unavailable, please retry"}
			b, _ := json.Marshal(errResp)
			_ = conn.WriteMessage(websocket.TextMessage, b)
			resp := map[string]interface{}{
				"type":      "completion",
				"status":    "finished",
				"timestamp": time.Now().UnixMilli(),
			}
			cb, _ := json.Marshal(resp)
			_ = conn.WriteMessage(websocket.TextMessage, cb)
			break
		}
	}
}

func sessionKey(conn *websocket.Conn) string {
	return fmt.Sprintf("%p", conn)
}
