package ws

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	interviewHandler "github.com/zhouzirui/interview-partner/backend/internal/handler/interview"
	interviewModel "github.com/zhouzirui/interview-partner/backend/internal/model/interview"
	interviewService "github.com/zhouzirui/interview-partner/backend/internal/service/interview"
	"github.com/zhouzirui/interview-partner/backend/pkg/utils"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
)

// Inbound message types.
const (
	TypeAnswer = "answer"
	TypePing   = "ping"
)

// Outbound message types.
const (
	TypeConnected  = "connected"
	TypeQuestion   = "question"
	TypeConclusion = "conclusion"
	TypePong       = "pong"
	TypeError      = "error"
)

// Handler WebSocket 面试处理器
type Handler struct {
	svc      *interviewService.Service
	upgrader websocket.Upgrader
}

// New 创建 WebSocket 处理器，allowOrigin 为 nil 时接受所有来源
func New(svc *interviewService.Service, allowOrigin func(origin string) bool) *Handler {
	return &Handler{
		svc: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowOrigin == nil {
					return true
				}
				return allowOrigin(origin)
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册 WebSocket 路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/interview/{sessionID}/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ConnectedInfo is sent once after the upgrade.
type ConnectedInfo struct {
	SessionID      string                `json:"session_id"`
	Role           string                `json:"role"`
	Persona        string                `json:"persona"`
	QuestionNumber int                   `json:"question_number"`
	MaxQuestions   int                   `json:"max_questions"`
	Status         interviewModel.Status `json:"status"`
}

// conn serializes data frames; control frames go through WriteControl.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(msgType string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	return c.ws.WriteJSON(outgoingMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}

// handleWebSocket 处理 WebSocket 连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.svc.Get(r.Context(), sessionID)
	if err != nil {
		interviewHandler.RespondServiceError(w, err)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &conn{ws: ws}
	ws.SetReadDeadline(time.Now().Add(readTimeout))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go pingLoop(ctx, ws)

	if err := c.send(TypeConnected, ConnectedInfo{
		SessionID:      session.ID,
		Role:           session.Role,
		Persona:        string(session.CurrentPersona),
		QuestionNumber: session.QuestionCount,
		MaxQuestions:   h.svc.MaxQuestions(),
		Status:         session.Status,
	}); err != nil {
		log.Printf("[websocket] send connected failed: %v", err)
		return
	}

	for {
		var msg inboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}
		ws.SetReadDeadline(time.Now().Add(readTimeout))

		done, err := h.handleMessage(ctx, c, sessionID, msg)
		if err != nil {
			log.Printf("[websocket] write failed for session=%s: %v", sessionID, err)
			return
		}
		if done {
			if err := closeNormally(ws, "interview complete"); err != nil {
				log.Printf("[websocket] close failed for session=%s: %v", sessionID, err)
			}
			return
		}
	}
}

// handleMessage reports whether the interview concluded.
func (h *Handler) handleMessage(ctx context.Context, c *conn, sessionID string, msg inboundMessage) (bool, error) {
	switch msg.Type {
	case TypePing:
		return false, c.send(TypePong, nil)
	case TypeAnswer:
	default:
		return false, c.send(TypeError, utils.ErrorBody{Error: "unsupported message type: " + msg.Type, Status: http.StatusBadRequest})
	}

	result, err := h.svc.Respond(ctx, sessionID, msg.Text)
	if err != nil {
		return false, c.send(TypeError, utils.NewErrorBody(err, interviewHandler.StatusFor))
	}

	switch turn := result.(type) {
	case interviewModel.ConclusionTurn:
		return true, c.send(TypeConclusion, turn)
	default:
		return false, c.send(TypeQuestion, turn)
	}
}

// closeNormally 发送正常关闭帧
func closeNormally(ws *websocket.Conn, reason string) error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	return ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
}

// pingLoop 定期发送 ping 控制帧
func pingLoop(ctx context.Context, ws *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
