package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/interview-partner/backend/internal/analysis/feedback"
	"github.com/zhouzirui/interview-partner/backend/internal/analysis/scoring"
	"github.com/zhouzirui/interview-partner/backend/internal/config"
	"github.com/zhouzirui/interview-partner/backend/internal/handler"
	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
	"github.com/zhouzirui/interview-partner/backend/internal/service/ai"
	"github.com/zhouzirui/interview-partner/backend/internal/service/classifier"
	"github.com/zhouzirui/interview-partner/backend/internal/service/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	tuning, err := config.LoadTuning(cfg.Interview.TuningFile)
	if err != nil {
		log.Fatalf("failed to load tuning: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())

	// Initialize AI service
	var aiService *ai.Service
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to create chat model: %v", err)
		} else if aiService, err = ai.NewService(ctx, chatModel, personaStore); err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			aiService = nil
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark 凭证未配置，使用题库与规则分类器")
	}

	classifierCfg := classifier.Config{
		Enabled:      cfg.Interview.SemanticPersona,
		HistoryLimit: cfg.Interview.ClassifyHistory,
		Timeout:      cfg.Interview.CollaboratorTimeout,
		Rules:        tuning.Fallback,
	}
	var semantic classifier.Semantic
	var generator interview.QuestionGenerator = interview.BankGenerator{}
	if aiService != nil {
		semantic = aiService
		generator = aiService
	}
	classifierSvc := classifier.NewService(semantic, classifierCfg)
	if classifierSvc.Enabled() {
		log.Println("Semantic persona classifier enabled")
	} else {
		log.Println("Semantic persona classifier disabled, using keyword rules")
	}

	manager := interview.NewManager(
		classifierSvc,
		generator,
		scoring.NewEngine(tuning.Scoring),
		feedback.NewGenerator(),
		interview.Options{
			MaxQuestions:    cfg.Interview.MaxQuestions,
			GenerateTimeout: cfg.Interview.CollaboratorTimeout,
		},
	)

	repo, err := store.New(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("failed to initialize session store: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("warning: failed to close session store: %v", err)
		}
	}()
	log.Printf("Session store: %s", cfg.Store.Driver)

	interviewSvc := interview.NewService(manager, repo)
	router := handler.NewRouter(personaStore, interviewSvc, cfg.Server.AllowedOrigins)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Interview partner backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Printf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
