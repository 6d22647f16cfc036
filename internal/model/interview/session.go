package interview

import (
	"time"

	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// PersonaTransition records a change of the session's current persona.
type PersonaTransition struct {
	From        persona.Label `json:"from"`
	To          persona.Label `json:"to"`
	AtTurnIndex int           `json:"at_turn_index"`
}

// Session is one interview instance with its full turn history and derived state.
type Session struct {
	ID                  string              `json:"id"`
	Role                string              `json:"role"`
	Status              Status              `json:"status"`
	CurrentPersona      persona.Label       `json:"current_persona"`
	PersonaHistory      []PersonaTransition `json:"persona_history"`
	ConversationHistory []Turn              `json:"conversation_history"`
	QuestionCount       int                 `json:"question_count"`
	AskedQuestions      []string            `json:"asked_questions"`
	Scores              *Scores             `json:"scores,omitempty"`
	Feedback            *Feedback           `json:"feedback,omitempty"`
	Version             int64               `json:"version"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
	CompletedAt         *time.Time          `json:"completed_at,omitempty"`
}

// NewSession returns an active session with neutral persona and no questions asked.
func NewSession(id, role string, now time.Time) *Session {
	return &Session{
		ID:                  id,
		Role:                role,
		Status:              StatusActive,
		CurrentPersona:      persona.Neutral,
		PersonaHistory:      make([]PersonaTransition, 0, 4),
		ConversationHistory: make([]Turn, 0, 16),
		AskedQuestions:      make([]string, 0, 8),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Completed reports whether the session reached its terminal state.
func (s *Session) Completed() bool {
	return s.Status == StatusCompleted
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.PersonaHistory = append([]PersonaTransition(nil), s.PersonaHistory...)
	out.ConversationHistory = append([]Turn(nil), s.ConversationHistory...)
	out.AskedQuestions = append([]string(nil), s.AskedQuestions...)
	if s.Scores != nil {
		scores := *s.Scores
		out.Scores = &scores
	}
	if s.Feedback != nil {
		out.Feedback = s.Feedback.Clone()
	}
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		out.CompletedAt = &at
	}
	return &out
}
