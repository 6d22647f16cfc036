package interview

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	model "github.com/zhouzirui/interview-partner/backend/internal/model/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/store"
)

// Report is the read model of a completed session.
type Report struct {
	SessionID      string                    `json:"session_id"`
	Role           string                    `json:"role"`
	Scores         model.Scores              `json:"scores"`
	Feedback       model.Feedback            `json:"feedback"`
	PersonaHistory []model.PersonaTransition `json:"persona_history"`
	CompletedAt    *time.Time                `json:"completed_at,omitempty"`
}

// Service loads sessions from the repository, runs the manager and persists the result.
// Requests for the same session id are serialized; different sessions never contend.
type Service struct {
	manager *Manager
	repo    store.Repository
	locks   *keyedMutex
	newID   func() string
}

// NewService wires the orchestration layer.
func NewService(manager *Manager, repo store.Repository) *Service {
	return &Service{
		manager: manager,
		repo:    repo,
		locks:   newKeyedMutex(),
		newID:   uuid.NewString,
	}
}

// MaxQuestions exposes the configured interview length.
func (s *Service) MaxQuestions() int {
	return s.manager.MaxQuestions()
}

// Start creates a session for role and asks the opening question.
func (s *Service) Start(ctx context.Context, role string) (*model.Session, model.QuestionTurn, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return nil, model.QuestionTurn{}, ErrRoleRequired
	}

	session := model.NewSession(s.newID(), role, time.Now().UTC())
	turn, err := s.manager.Start(ctx, session)
	if err != nil {
		return nil, model.QuestionTurn{}, err
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, model.QuestionTurn{}, fmt.Errorf("create session: %w", err)
	}

	log.Printf("[interview] session=%s started role=%s", session.ID, role)
	return session, turn, nil
}

// Respond processes one candidate message for the session.
func (s *Service) Respond(ctx context.Context, sessionID, message string) (model.Result, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result, err := s.manager.Process(ctx, session, message)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return result, nil
}

// Get returns the stored session.
func (s *Service) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.repo.Get(ctx, sessionID)
}

// Report returns the final evaluation of a completed session.
func (s *Service) Report(ctx context.Context, sessionID string) (Report, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return Report{}, err
	}
	if !session.Completed() || session.Scores == nil || session.Feedback == nil {
		return Report{}, ErrSessionActive
	}

	history := session.PersonaHistory
	if history == nil {
		history = []model.PersonaTransition{}
	}
	return Report{
		SessionID:      session.ID,
		Role:           session.Role,
		Scores:         *session.Scores,
		Feedback:       *session.Feedback,
		PersonaHistory: history,
		CompletedAt:    session.CompletedAt,
	}, nil
}

// Delete removes the session.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return err
	}
	log.Printf("[interview] session=%s deleted", sessionID)
	return nil
}

// keyedMutex hands out one mutex per key and drops it once no caller holds it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &refMutex{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
