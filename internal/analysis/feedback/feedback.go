// Package feedback derives the qualitative interview report from the turn history,
// the detected personas and the scorecard.
package feedback

import (
	"errors"
	"fmt"
	"math"

	personaanalysis "github.com/zhouzirui/interview-partner/backend/internal/analysis/persona"
	"github.com/zhouzirui/interview-partner/backend/internal/model/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
)

// ErrInvalidScores is returned when the scorecard holds values outside [0, 5].
var ErrInvalidScores = errors.New("invalid scores")

const (
	questionPreview = 80
	answerExcerpt   = 60

	efficientShareForConsistency = 0.7
)

// Answer is one candidate turn paired with the question that preceded it.
type Answer struct {
	Content  string
	Persona  persona.Label
	Question string
	Words    int
}

// Generator builds feedback records. It is stateless.
type Generator struct{}

// NewGenerator returns a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate derives the report for role from history and scores.
func (g *Generator) Generate(role string, history []interview.Turn, scores interview.Scores) (interview.Feedback, error) {
	if err := validateScores(scores); err != nil {
		return interview.Feedback{}, err
	}

	answers := ExtractAnswers(history)
	if len(answers) == 0 {
		return fallbackFeedback(scores), nil
	}

	order, counts := countPersonas(answers)
	dominant := order[0]
	for _, label := range order[1:] {
		if counts[label] > counts[dominant] {
			dominant = label
		}
	}
	distinct := len(order)

	return interview.Feedback{
		OverallImpression:     impression(dominant, distinct, len(answers)),
		Strengths:             strengths(counts, distinct),
		AreasForImprovement:   improvementAreas(answers, counts),
		NextSteps:             nextSteps(dominant),
		ExampleStrongResponse: exampleStrongResponse,
		Scores:                scores,
		Persona:               dominant,
	}, nil
}

// ExtractAnswers pairs every candidate turn with the agent question directly before it.
func ExtractAnswers(history []interview.Turn) []Answer {
	answers := make([]Answer, 0, len(history)/2+1)
	for i, turn := range history {
		if !turn.IsCandidate() {
			continue
		}

		label := turn.PersonaDetected
		question := ""
		if i > 0 && history[i-1].Speaker == interview.SpeakerAgent {
			prev := history[i-1]
			question = truncate(prev.Text, questionPreview)
			if label == "" {
				label = prev.PersonaAdapted
			}
		}
		if label == "" {
			label = persona.Neutral
		}

		answers = append(answers, Answer{
			Content:  turn.Text,
			Persona:  label,
			Question: question,
			Words:    personaanalysis.WordCount(turn.Text),
		})
	}
	return answers
}

func countPersonas(answers []Answer) ([]persona.Label, map[persona.Label]int) {
	order := make([]persona.Label, 0, 5)
	counts := make(map[persona.Label]int, 5)
	for _, a := range answers {
		if counts[a.Persona] == 0 {
			order = append(order, a.Persona)
		}
		counts[a.Persona]++
	}
	return order, counts
}

var personaInsights = map[persona.Label]string{
	persona.Confused: "You frequently hesitated or needed clarification. " +
		"This suggests uncertainty - next time, pause to gather your thoughts " +
		"before answering, and don't be afraid to ask ONE clarifying question if needed.",
	persona.Efficient: "You answered concisely, directly, and with focus. " +
		"This is the ideal communication style for interviews. " +
		"Your responses were clear, on-topic, and demonstrated strong time management.",
	persona.Chatty: "You provided rich details and context, which shows enthusiasm. " +
		"However, some responses became lengthy and lost focus. " +
		"Practice the 2-minute rule: make your point in under 2 minutes, " +
		"then check if the interviewer wants more detail.",
	persona.Edge: "You sometimes went off-topic or asked questions back to the interviewer. " +
		"In real interviews, this can derail the conversation. " +
		"Stay focused on demonstrating why you're the right fit for the role.",
}

func impression(dominant persona.Label, distinct, total int) string {
	text := fmt.Sprintf("You demonstrated a '%s' communication style throughout the interview. ", dominant)
	text += personaInsights[dominant]

	if distinct > 1 {
		text += fmt.Sprintf(" You showed %d different communication styles, which demonstrates adaptability.", distinct)
	} else if distinct == 1 && total > 3 {
		text += " You stayed consistent in one communication style - try varying your approach based on question type."
	}
	return text
}

func strengths(counts map[persona.Label]int, distinct int) []string {
	out := []string{
		"Completed all interview questions",
		"Maintained engagement throughout the session",
	}
	if counts[persona.Efficient] > 0 {
		out = append(out, "Demonstrated concise communication (efficient responses)")
	}
	if counts[persona.Chatty] > 0 {
		out = append(out, "Provided detailed context and examples (thorough responses)")
	}
	if distinct >= 2 {
		out = append(out, "Showed communication flexibility across different question types")
	}
	return out
}

func improvementAreas(answers []Answer, counts map[persona.Label]int) []interview.ImprovementArea {
	areas := make([]interview.ImprovementArea, 0, len(answers))

	for _, a := range answers {
		excerpt := clip(a.Content, answerExcerpt) + "..."

		switch a.Persona {
		case persona.Confused:
			if a.Words < 15 {
				areas = append(areas, interview.ImprovementArea{
					Area:           "Clarity & Confidence",
					Issue:          fmt.Sprintf("Very brief and uncertain answer: '%s'", excerpt),
					Recommendation: "Try to elaborate more and structure your thoughts before answering.",
				})
			} else {
				areas = append(areas, interview.ImprovementArea{
					Area:           "Clarity & Confidence",
					Issue:          fmt.Sprintf("Response showed uncertainty: '%s'", excerpt),
					Recommendation: "Structure your thoughts before answering. Start with your main point, then provide supporting details.",
				})
			}
		case persona.Chatty:
			if a.Words > 100 {
				areas = append(areas, interview.ImprovementArea{
					Area:           "Conciseness",
					Issue:          fmt.Sprintf("Very long response: '%s'", excerpt),
					Recommendation: "Practice summarizing your answer to focus on the main point.",
				})
			} else if a.Words > 60 {
				areas = append(areas, interview.ImprovementArea{
					Area:           "Conciseness",
					Issue:          fmt.Sprintf("Long response: '%s'", excerpt),
					Recommendation: "Practice the STAR method to keep answers structured and focused. Aim for 1-2 minutes per response.",
				})
			}
		case persona.Edge:
			areas = append(areas, interview.ImprovementArea{
				Area:           "Professional Focus",
				Issue:          fmt.Sprintf("Off-topic or questioning interviewer: '%s'", excerpt),
				Recommendation: "Stay focused on demonstrating your qualifications. Save your questions for the end of the interview.",
			})
		case persona.Efficient:
			if a.Words < 10 {
				areas = append(areas, interview.ImprovementArea{
					Area:           "Response Depth",
					Issue:          fmt.Sprintf("Very brief answer: '%s'", excerpt),
					Recommendation: "Try to elaborate with a specific example or more detail.",
				})
			} else if a.Words < 20 {
				areas = append(areas, interview.ImprovementArea{
					Area:           "Response Depth",
					Issue:          fmt.Sprintf("Brief answer: '%s'", excerpt),
					Recommendation: "Consider adding a concrete example or more context to strengthen your response.",
				})
			}
		}
	}

	if len(areas) == 0 && float64(counts[persona.Efficient]) >= float64(len(answers))*efficientShareForConsistency {
		areas = append(areas, interview.ImprovementArea{
			Area:           "Consistency",
			Issue:          "No major weaknesses detected",
			Recommendation: "Continue practicing to maintain your strong performance level. Focus on staying calm under pressure.",
		})
	}
	return areas
}

func nextSteps(dominant persona.Label) []string {
	return []string{
		fmt.Sprintf("Review the feedback for your %s communication style", dominant),
		"Practice varying your response style based on question type",
		"Use STAR method (Situation, Task, Action, Result) for behavioral questions",
		"Record yourself answering questions to identify patterns",
	}
}

const exampleStrongResponse = "For behavioral questions, use STAR format: " +
	"'In my previous role [Situation], I was tasked with [Task]. " +
	"I approached this by [Action], which resulted in [Result] - " +
	"a 30% improvement in team productivity.'"

func fallbackFeedback(scores interview.Scores) interview.Feedback {
	return interview.Feedback{
		OverallImpression: "Interview session completed. Continue practicing to build confidence.",
		Strengths:         []string{"Participated in the interview", "Showed willingness to practice"},
		AreasForImprovement: []interview.ImprovementArea{{
			Area:           "Response Detail",
			Issue:          "Limited response data available",
			Recommendation: "Provide more detailed answers in future practice sessions",
		}},
		NextSteps:             []string{"Practice behavioral questions", "Prepare STAR method examples"},
		ExampleStrongResponse: "Use specific examples from your experience with measurable results.",
		Scores:                scores,
		Persona:               persona.Neutral,
	}
}

func validateScores(s interview.Scores) error {
	for name, v := range map[string]float64{
		"overall":            s.Overall,
		"logic":              s.Logic,
		"communication":      s.Communication,
		"focus":              s.Focus,
		"persona_adaptivity": s.PersonaAdaptivity,
	} {
		if math.IsNaN(v) || v < 0 || v > 5 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidScores, name, v)
		}
	}
	return nil
}

// truncate cuts text to limit runes, appending "..." only when it was cut.
func truncate(text string, limit int) string {
	if len([]rune(text)) <= limit {
		return text
	}
	return clip(text, limit) + "..."
}

func clip(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
