package interview

import (
	"encoding/json"

	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
)

// Result is the outcome of one conversation step: either a QuestionTurn or a ConclusionTurn.
type Result interface {
	Complete() bool
	isResult()
}

// QuestionTurn carries the next interviewer question.
type QuestionTurn struct {
	Message        string        `json:"message"`
	Persona        persona.Label `json:"persona"`
	QuestionNumber int           `json:"question_number"`
	ShouldContinue bool          `json:"should_continue"`
}

// ConclusionTurn carries the final report once the interview ends.
type ConclusionTurn struct {
	Message        string              `json:"message"`
	QuestionNumber int                 `json:"question_number"`
	Scores         Scores              `json:"scores"`
	Feedback       Feedback            `json:"feedback"`
	PersonaHistory []PersonaTransition `json:"persona_history"`
}

func (QuestionTurn) Complete() bool   { return false }
func (ConclusionTurn) Complete() bool { return true }

func (QuestionTurn) isResult()   {}
func (ConclusionTurn) isResult() {}

// MarshalJSON tags the payload with its variant.
func (q QuestionTurn) MarshalJSON() ([]byte, error) {
	type plain QuestionTurn
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
		Complete bool `json:"complete"`
	}{Type: "question", plain: plain(q)})
}

// MarshalJSON tags the payload with its variant.
func (c ConclusionTurn) MarshalJSON() ([]byte, error) {
	type plain ConclusionTurn
	if c.PersonaHistory == nil {
		c.PersonaHistory = []PersonaTransition{}
	}
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
		Complete bool `json:"complete"`
	}{Type: "conclusion", plain: plain(c), Complete: true})
}
