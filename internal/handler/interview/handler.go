package interview

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	interviewModel "github.com/zhouzirui/interview-partner/backend/internal/model/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
	interviewService "github.com/zhouzirui/interview-partner/backend/internal/service/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/store"
	"github.com/zhouzirui/interview-partner/backend/pkg/utils"
)

// Handler 面试会话的 HTTP 处理器
type Handler struct {
	svc *interviewService.Service
}

// New 创建面试处理器
func New(svc *interviewService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册面试相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/interview/start", h.handleStart)
	r.Post("/interview/message", h.handleMessage)
	r.Get("/interview/{sessionID}", h.handleGetSession)
	r.Get("/interview/{sessionID}/report", h.handleReport)
	r.Delete("/interview/{sessionID}", h.handleDelete)
}

type startResponse struct {
	SessionID      string        `json:"session_id"`
	Type           string        `json:"type"`
	Message        string        `json:"message"`
	Persona        persona.Label `json:"persona"`
	QuestionNumber int           `json:"question_number"`
	ShouldContinue bool          `json:"should_continue"`
	Complete       bool          `json:"complete"`
}

type sessionSummary struct {
	ID              string                 `json:"id"`
	Role            string                 `json:"role"`
	Status          interviewModel.Status  `json:"status"`
	CreatedAt       time.Time              `json:"created_at"`
	CurrentQuestion int                    `json:"current_question"`
	MaxQuestions    int                    `json:"max_questions"`
	Persona         persona.Label          `json:"persona"`
	Turns           int                    `json:"turns"`
	Scores          *interviewModel.Scores `json:"scores,omitempty"`
}

// handleStart 创建会话并返回开场问题
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, turn, err := h.svc.Start(r.Context(), payload.Role)
	if err != nil {
		RespondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, startResponse{
		SessionID:      session.ID,
		Type:           "question",
		Message:        turn.Message,
		Persona:        turn.Persona,
		QuestionNumber: turn.QuestionNumber,
		ShouldContinue: turn.ShouldContinue,
	})
}

// handleMessage 处理候选人的回答
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	result, err := h.svc.Respond(r.Context(), payload.SessionID, payload.Message)
	if err != nil {
		RespondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

// handleGetSession 返回会话概要
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		RespondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessionSummary{
		ID:              session.ID,
		Role:            session.Role,
		Status:          session.Status,
		CreatedAt:       session.CreatedAt,
		CurrentQuestion: session.QuestionCount,
		MaxQuestions:    h.svc.MaxQuestions(),
		Persona:         session.CurrentPersona,
		Turns:           len(session.ConversationHistory),
		Scores:          session.Scores,
	})
}

// handleReport 返回已完成会话的评估报告
func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Report(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		RespondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, report)
}

// handleDelete 删除会话
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		RespondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Session deleted"})
}

// StatusFor 将服务层错误映射为 HTTP 状态码
func StatusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, interviewService.ErrRoleRequired),
		errors.Is(err, interviewService.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, interviewService.ErrSessionCompleted),
		errors.Is(err, interviewService.ErrSessionActive),
		errors.Is(err, interviewService.ErrAlreadyStarted),
		errors.Is(err, interviewService.ErrNotStarted),
		errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondServiceError 以统一格式输出服务层错误
func RespondServiceError(w http.ResponseWriter, err error) {
	utils.RespondMappedError(w, err, StatusFor)
}
