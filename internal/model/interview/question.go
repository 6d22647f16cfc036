package interview

import "github.com/zhouzirui/interview-partner/backend/internal/model/persona"

// QuestionRequest is the input handed to a question generator.
type QuestionRequest struct {
	Role    string
	Persona persona.Label
	Recent  []Turn
	Asked   []string
}

// Opening reports whether the request is for the first question of a session.
func (r QuestionRequest) Opening() bool {
	return len(r.Recent) == 0
}
