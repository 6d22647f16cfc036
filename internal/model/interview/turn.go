package interview

import (
	"time"

	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
)

// Speaker identifies who authored a turn.
type Speaker string

const (
	SpeakerAgent     Speaker = "agent"
	SpeakerCandidate Speaker = "candidate"
)

// TurnKind marks where an agent turn sits in the interview.
type TurnKind string

const (
	KindOpening    TurnKind = "opening"
	KindMain       TurnKind = "main"
	KindConclusion TurnKind = "conclusion"
)

// Turn is one immutable message unit of the conversation.
type Turn struct {
	Speaker         Speaker       `json:"speaker"`
	Text            string        `json:"text"`
	Timestamp       time.Time     `json:"timestamp"`
	PersonaDetected persona.Label `json:"persona_detected,omitempty"`
	PersonaAdapted  persona.Label `json:"persona_adapted,omitempty"`
	Kind            TurnKind      `json:"turn_kind,omitempty"`
}

// IsCandidate reports whether the turn was authored by the candidate.
func (t Turn) IsCandidate() bool {
	return t.Speaker == SpeakerCandidate
}

// Recent returns at most limit trailing turns without copying the backing array.
func Recent(turns []Turn, limit int) []Turn {
	if limit <= 0 || len(turns) == 0 {
		return nil
	}
	if len(turns) <= limit {
		return turns
	}
	return turns[len(turns)-limit:]
}

// CandidateTurns filters the candidate-authored turns in order.
func CandidateTurns(turns []Turn) []Turn {
	out := make([]Turn, 0, len(turns)/2+1)
	for _, t := range turns {
		if t.IsCandidate() {
			out = append(out, t)
		}
	}
	return out
}
