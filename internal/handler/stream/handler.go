package stream

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	interviewHandler "github.com/zhouzirui/interview-partner/backend/internal/handler/interview"
	interviewModel "github.com/zhouzirui/interview-partner/backend/internal/model/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
	interviewService "github.com/zhouzirui/interview-partner/backend/internal/service/interview"
	"github.com/zhouzirui/interview-partner/backend/pkg/utils"
)

// Persona scopes carried by the persona event.
const (
	ScopeCurrent  = "current"
	ScopeDominant = "dominant"
)

// Handler answers one candidate message over Server-Sent Events.
type Handler struct {
	svc      *interviewService.Service
	personas persona.Store
}

// New creates a new stream handler
func New(svc *interviewService.Service, personas persona.Store) *Handler {
	return &Handler{
		svc:      svc,
		personas: personas,
	}
}

// RegisterRoutes mounts the streaming endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/interview/{sessionID}/stream", h.HandleStreamRequest)
}

// StartEvent opens a stream.
type StartEvent struct {
	SessionID string `json:"session_id"`
}

// PersonaEvent announces the interviewer adaptation in effect.
type PersonaEvent struct {
	Persona persona.Label `json:"persona"`
	Name    string        `json:"name,omitempty"`
	Tone    string        `json:"tone,omitempty"`
	Scope   string        `json:"scope"`
}

// EndEvent closes a stream.
type EndEvent struct {
	SessionID string `json:"session_id"`
	Complete  bool   `json:"complete"`
}

// HandleStreamRequest processes ?message= for the session and streams
// start, persona, question|conclusion and end events.
func (h *Handler) HandleStreamRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")
	message := strings.TrimSpace(r.URL.Query().Get("message"))

	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Failures before the first event still map to plain HTTP statuses.
	session, err := h.svc.Get(ctx, sessionID)
	if err != nil {
		interviewHandler.RespondServiceError(w, err)
		return
	}
	if session.Completed() {
		interviewHandler.RespondServiceError(w, interviewService.ErrSessionCompleted)
		return
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "start", StartEvent{SessionID: sessionID})

	result, err := h.svc.Respond(ctx, sessionID, message)
	if err != nil {
		log.Printf("[stream] session=%s respond failed: %v", sessionID, err)
		h.sendError(w, flusher, err)
		return
	}

	switch turn := result.(type) {
	case interviewModel.QuestionTurn:
		utils.SendSSEEvent(w, flusher, "persona", h.personaEvent(turn.Persona, ScopeCurrent))
		utils.SendSSEEvent(w, flusher, "question", turn)
	case interviewModel.ConclusionTurn:
		utils.SendSSEEvent(w, flusher, "persona", h.personaEvent(turn.Feedback.Persona, ScopeDominant))
		utils.SendSSEEvent(w, flusher, "conclusion", turn)
	default:
		h.sendError(w, flusher, errors.New("unexpected result type"))
		return
	}

	utils.SendSSEEvent(w, flusher, "end", EndEvent{SessionID: sessionID, Complete: result.Complete()})
}

func (h *Handler) personaEvent(label persona.Label, scope string) PersonaEvent {
	event := PersonaEvent{Persona: label, Scope: scope}
	if h.personas == nil {
		return event
	}
	if profile, ok := h.personas.FindByID(label); ok {
		event.Name = profile.Name
		event.Tone = profile.Tone
	}
	return event
}

// sendError sends an error via Server-Sent Events
func (h *Handler) sendError(w http.ResponseWriter, flusher http.Flusher, err error) {
	utils.SendSSEEvent(w, flusher, "error", utils.NewErrorBody(err, interviewHandler.StatusFor))
}
