package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
	"github.com/zhouzirui/interview-partner/backend/pkg/utils"
)

// Handler persona 画像的 HTTP 处理器
type Handler struct {
	personas persona.Store
}

// New 创建 persona 处理器
func New(personas persona.Store) *Handler {
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes 注册 persona 相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Get("/personas/{personaID}", h.handleGetPersona)
}

// handleListPersonas 列出所有面试官适配画像
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}

// handleGetPersona 按标签查询单个画像
func (h *Handler) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	label, ok := persona.Parse(chi.URLParam(r, "personaID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "persona not found")
		return
	}
	profile, ok := h.personas.FindByID(label)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "persona not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, profile)
}
