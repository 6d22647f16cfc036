package ai

import (
	"strings"
	"testing"

	"github.com/zhouzirui/interview-partner/backend/internal/model/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
)

func TestFormatTurnsLabelsSpeakersAndTruncates(t *testing.T) {
	turns := []interview.Turn{
		{Speaker: interview.SpeakerAgent, Text: "Why Go?"},
		{Speaker: interview.SpeakerCandidate, Text: strings.Repeat("x", 200)},
	}
	got := FormatTurns(turns, 150, "Candidate", "You")
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", got)
	}
	if lines[0] != "You: Why Go?" {
		t.Fatalf("unexpected agent line: %q", lines[0])
	}
	if lines[1] != "Candidate: "+strings.Repeat("x", 150) {
		t.Fatalf("candidate line not truncated: %d chars", len(lines[1]))
	}
}

func TestFormatTurnsEmpty(t *testing.T) {
	if got := FormatTurns(nil, 100, "User", "Agent"); got != "No previous conversation" {
		t.Fatalf("unexpected placeholder: %q", got)
	}
}

func TestClassifyPromptListsLabels(t *testing.T) {
	b := NewPromptBuilder(nil)
	got := b.ClassifyPrompt("  I am not sure ", nil)
	if !strings.Contains(got, `CURRENT MESSAGE: "I am not sure"`) {
		t.Fatalf("message not quoted: %q", got)
	}
	if !strings.Contains(got, "confused, efficient, chatty, edge, neutral") {
		t.Fatalf("label set missing: %q", got)
	}
}

func TestQuestionSystemPromptAdaptsToPersonaAndRole(t *testing.T) {
	b := NewPromptBuilder(persona.NewMemoryStore(persona.Seed()))
	got := b.QuestionSystemPrompt(interview.QuestionRequest{Role: "sales", Persona: persona.Chatty})
	if !strings.Contains(got, "communication style is: chatty") {
		t.Fatalf("persona missing: %q", got)
	}
	if !strings.Contains(got, "objection handling") {
		t.Fatalf("role focus missing: %q", got)
	}
	if !strings.Contains(got, "focused, redirecting tone") {
		t.Fatalf("persona tone missing: %q", got)
	}
}

func TestQuestionSystemPromptUnknownRoleUsesDefaultFocus(t *testing.T) {
	got := NewPromptBuilder(nil).QuestionSystemPrompt(interview.QuestionRequest{Role: "pilot", Persona: persona.Label("odd")})
	if !strings.Contains(got, defaultRoleFocus) {
		t.Fatalf("default focus missing: %q", got)
	}
	if !strings.Contains(got, "communication style is: neutral") {
		t.Fatalf("invalid persona should render as neutral: %q", got)
	}
}

func TestQuestionUserPromptOpening(t *testing.T) {
	got := NewPromptBuilder(nil).QuestionUserPrompt(interview.QuestionRequest{Role: "retail"})
	if !strings.Contains(got, "Starting interview") || !strings.Contains(got, "Asked before: 0 questions") {
		t.Fatalf("unexpected opening prompt: %q", got)
	}
}

func TestQuestionUserPromptListsAskedQuestions(t *testing.T) {
	req := interview.QuestionRequest{
		Role:   "engineer",
		Recent: []interview.Turn{{Speaker: interview.SpeakerCandidate, Text: "I build APIs."}},
		Asked:  []string{"Tell me about yourself.", "What is your favourite project?"},
	}
	got := NewPromptBuilder(nil).QuestionUserPrompt(req)
	if !strings.Contains(got, "Candidate: I build APIs.") {
		t.Fatalf("recent context missing: %q", got)
	}
	if !strings.Contains(got, "Asked before: 2 questions") || !strings.Contains(got, "- What is your favourite project?") {
		t.Fatalf("asked questions missing: %q", got)
	}
}
