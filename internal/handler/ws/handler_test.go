package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/interview-partner/backend/internal/analysis/feedback"
	"github.com/zhouzirui/interview-partner/backend/internal/analysis/scoring"
	"github.com/zhouzirui/interview-partner/backend/internal/service/classifier"
	interviewService "github.com/zhouzirui/interview-partner/backend/internal/service/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/store"
	"github.com/zhouzirui/interview-partner/backend/pkg/utils"
)

type received struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

func setupServer(t *testing.T, maxQuestions int) (*httptest.Server, *interviewService.Service) {
	t.Helper()
	manager := interviewService.NewManager(
		classifier.NewService(nil, classifier.Config{}),
		interviewService.BankGenerator{},
		scoring.Default(),
		feedback.NewGenerator(),
		interviewService.Options{MaxQuestions: maxQuestions},
	)
	svc := interviewService.NewService(manager, store.NewMemoryStore())

	r := chi.NewRouter()
	New(svc, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/interview/" + sessionID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg received
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocketInterviewFlow(t *testing.T) {
	srv, svc := setupServer(t, 2)
	session, _, err := svc.Start(context.Background(), "engineer")
	if err != nil {
		t.Fatalf("Start err: %v", err)
	}

	conn := dial(t, srv, session.ID)

	hello := read(t, conn)
	if hello.Type != TypeConnected || hello.Timestamp == 0 {
		t.Fatalf("expected connected message, got %+v", hello)
	}
	var info ConnectedInfo
	if err := json.Unmarshal(hello.Data, &info); err != nil {
		t.Fatalf("decode connected: %v", err)
	}
	if info.SessionID != session.ID || info.QuestionNumber != 1 || info.MaxQuestions != 2 {
		t.Fatalf("unexpected connected info: %+v", info)
	}

	if err := conn.WriteJSON(inboundMessage{Type: TypeAnswer, Text: "I rewrote the scheduler to cut latency."}); err != nil {
		t.Fatalf("write: %v", err)
	}
	question := read(t, conn)
	if question.Type != TypeQuestion {
		t.Fatalf("expected question, got %+v", question)
	}
	var q map[string]any
	_ = json.Unmarshal(question.Data, &q)
	if q["question_number"] != float64(2) || q["should_continue"] != false {
		t.Fatalf("unexpected question payload: %v", q)
	}

	if err := conn.WriteJSON(inboundMessage{Type: TypeAnswer, Text: "We moved billing onto a queue."}); err != nil {
		t.Fatalf("write: %v", err)
	}
	conclusion := read(t, conn)
	if conclusion.Type != TypeConclusion {
		t.Fatalf("expected conclusion, got %+v", conclusion)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close after conclusion, got %v", err)
	}
}

func TestWebSocketErrorsKeepConnectionOpen(t *testing.T) {
	srv, svc := setupServer(t, 3)
	session, _, err := svc.Start(context.Background(), "retail")
	if err != nil {
		t.Fatalf("Start err: %v", err)
	}
	conn := dial(t, srv, session.ID)
	read(t, conn)

	if err := conn.WriteJSON(inboundMessage{Type: TypeAnswer, Text: "  "}); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := read(t, conn)
	var info utils.ErrorBody
	_ = json.Unmarshal(msg.Data, &info)
	if msg.Type != TypeError || info.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 error message, got %+v %+v", msg, info)
	}

	if err := conn.WriteJSON(inboundMessage{Type: "audio"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := read(t, conn); msg.Type != TypeError {
		t.Fatalf("expected error for unsupported type, got %+v", msg)
	}

	if err := conn.WriteJSON(inboundMessage{Type: TypePing}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := read(t, conn); msg.Type != TypePong {
		t.Fatalf("expected pong, got %+v", msg)
	}
}

func TestWebSocketUnknownSessionIsRejected(t *testing.T) {
	srv, _ := setupServer(t, 3)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/interview/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
}

func TestWritesAfterCloseReportErrors(t *testing.T) {
	errs := make(chan error, 2)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			errs <- err
			errs <- err
			return
		}
		ws.Close()
		errs <- (&conn{ws: ws}).send(TypePong, nil)
		errs <- closeNormally(ws, "interview complete")
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	for _, name := range []string{"send", "close"} {
		select {
		case err := <-errs:
			if err == nil {
				t.Fatalf("expected %s on a closed connection to fail", name)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s", name)
		}
	}
}
