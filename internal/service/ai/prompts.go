package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/interview-partner/backend/internal/model/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
)

const (
	classifyTurnLimit = 100
	contextTurnLimit  = 150
)

var roleFocus = map[string]string{
	"engineer": "technical problem-solving, system design, debugging experience, code quality, team collaboration, learning ability",
	"sales":    "relationship building, objection handling, quota achievement, negotiation skills, customer needs analysis, closing techniques",
	"retail":   "customer service scenarios, conflict resolution, multitasking, team dynamics, handling busy periods, going above and beyond",
}

const defaultRoleFocus = "relevant experience, skills, and achievements"

const classifySystemPrompt = "You analyze a job candidate's communication pattern during a mock interview. " +
	"Reply with exactly one word from: confused, efficient, chatty, edge, neutral."

// PromptBuilder renders the text handed to the chat model.
type PromptBuilder struct {
	personas persona.Store
}

// NewPromptBuilder returns a builder that reads adaptation hints from personas.
func NewPromptBuilder(personas persona.Store) *PromptBuilder {
	if personas == nil {
		personas = persona.NewMemoryStore(persona.Seed())
	}
	return &PromptBuilder{personas: personas}
}

// ClassifyPrompt renders the user message for the classification chain.
func (b *PromptBuilder) ClassifyPrompt(message string, recent []interview.Turn) string {
	var builder strings.Builder
	builder.WriteString("Analyze this candidate's communication pattern.\n\n")
	builder.WriteString(fmt.Sprintf("CURRENT MESSAGE: %q\n\n", strings.TrimSpace(message)))
	builder.WriteString("RECENT CONVERSATION:\n")
	builder.WriteString(FormatTurns(recent, classifyTurnLimit, "User", "Agent"))
	builder.WriteString("\n\nCLASSIFY AS ONE OF: confused, efficient, chatty, edge, neutral\n\n")
	builder.WriteString("Respond with EXACTLY ONE WORD:")
	return builder.String()
}

// QuestionSystemPrompt renders the interviewer instructions for one request.
func (b *PromptBuilder) QuestionSystemPrompt(req interview.QuestionRequest) string {
	role := strings.TrimSpace(req.Role)
	label := req.Persona
	if !label.Valid() {
		label = persona.Neutral
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("You are conducting a %s job interview.\n\n", role))
	builder.WriteString(fmt.Sprintf("The candidate's communication style is: %s\n\n", label))

	builder.WriteString("ADAPT YOUR STYLE:\n")
	for _, profile := range b.personas.List() {
		builder.WriteString(fmt.Sprintf("- %s: %s\n", profile.ID, strings.TrimSuffix(profile.PromptHint, ".")))
	}
	if profile, ok := b.personas.FindByID(label); ok && profile.Tone != "" {
		builder.WriteString(fmt.Sprintf("\nUse a %s tone for this question.\n", profile.Tone))
	}

	focus, ok := roleFocus[strings.ToLower(role)]
	if !ok {
		focus = defaultRoleFocus
	}
	builder.WriteString(fmt.Sprintf("\nFocus on: %s\n\n", focus))
	builder.WriteString(fmt.Sprintf("Generate ONE interview question appropriate for a %s position.\n", role))
	builder.WriteString("Make it conversational and natural, not robotic.")
	return builder.String()
}

// QuestionUserPrompt renders the recent context and the asked-question summary.
func (b *PromptBuilder) QuestionUserPrompt(req interview.QuestionRequest) string {
	recent := "Starting interview"
	if len(req.Recent) > 0 {
		recent = FormatTurns(req.Recent, contextTurnLimit, "Candidate", "You")
	}

	var builder strings.Builder
	builder.WriteString("Recent conversation:\n")
	builder.WriteString(recent)
	builder.WriteString(fmt.Sprintf("\n\nAsked before: %d questions\n", len(req.Asked)))
	for _, q := range req.Asked {
		builder.WriteString("- ")
		builder.WriteString(truncate(q, contextTurnLimit))
		builder.WriteString("\n")
	}
	builder.WriteString("\nDo not repeat a question that was already asked.\n")
	builder.WriteString("Generate your next interview question:")
	return builder.String()
}

// FormatTurns renders turns as "Speaker: text" lines, each text cut to limit runes.
func FormatTurns(turns []interview.Turn, limit int, candidateName, agentName string) string {
	if len(turns) == 0 {
		return "No previous conversation"
	}

	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		name := agentName
		if turn.IsCandidate() {
			name = candidateName
		}
		lines = append(lines, name+": "+truncate(strings.TrimSpace(turn.Text), limit))
	}
	return strings.Join(lines, "\n")
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
