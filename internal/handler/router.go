package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/interview-partner/backend/internal/handler/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/handler/persona"
	"github.com/zhouzirui/interview-partner/backend/internal/handler/stream"
	"github.com/zhouzirui/interview-partner/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/interview-partner/backend/internal/middleware"
	personaModel "github.com/zhouzirui/interview-partner/backend/internal/model/persona"
	interviewService "github.com/zhouzirui/interview-partner/backend/internal/service/interview"
	"github.com/zhouzirui/interview-partner/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, interviewSvc *interviewService.Service, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	personaHandler := persona.New(personas)
	interviewHandler := interview.New(interviewSvc)
	streamHandler := stream.New(interviewSvc, personas)
	wsHandler := ws.New(interviewSvc, middlewarePkg.OriginChecker(allowedOrigins))

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		interviewHandler.RegisterRoutes(api)

		// SSE variant of POST /interview/message
		streamHandler.RegisterRoutes(api)

		wsHandler.RegisterRoutes(api)
	})

	return r
}
