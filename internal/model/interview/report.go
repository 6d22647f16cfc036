package interview

import "github.com/zhouzirui/interview-partner/backend/internal/model/persona"

// Scores is the numeric scorecard derived at conclusion. Values are rounded to one decimal.
type Scores struct {
	Overall           float64 `json:"overall"`
	Logic             float64 `json:"logic"`
	Communication     float64 `json:"communication"`
	Focus             float64 `json:"focus"`
	PersonaAdaptivity float64 `json:"persona_adaptivity"`
}

// ImprovementArea is one structured coaching remark.
type ImprovementArea struct {
	Area           string `json:"area"`
	Issue          string `json:"issue"`
	Recommendation string `json:"recommendation"`
}

// Feedback is the qualitative report derived at conclusion.
type Feedback struct {
	OverallImpression     string            `json:"overall_impression"`
	Strengths             []string          `json:"strengths"`
	AreasForImprovement   []ImprovementArea `json:"areas_for_improvement"`
	NextSteps             []string          `json:"next_steps"`
	ExampleStrongResponse string            `json:"example_strong_response"`
	Scores                Scores            `json:"scores"`
	Persona               persona.Label     `json:"persona"`
}

// Clone returns a deep copy of the feedback record.
func (f *Feedback) Clone() *Feedback {
	if f == nil {
		return nil
	}
	out := *f
	out.Strengths = append([]string(nil), f.Strengths...)
	out.AreasForImprovement = append([]ImprovementArea(nil), f.AreasForImprovement...)
	out.NextSteps = append([]string(nil), f.NextSteps...)
	return &out
}
