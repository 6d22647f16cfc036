package interview

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
)

func TestQuestionTurnJSONCarriesVariantTag(t *testing.T) {
	data, err := json.Marshal(QuestionTurn{Message: "Why Go?", Persona: persona.Neutral, QuestionNumber: 1, ShouldContinue: true})
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if decoded["type"] != "question" || decoded["complete"] != false {
		t.Fatalf("unexpected tags: %s", data)
	}
	if decoded["question_number"].(float64) != 1 {
		t.Fatalf("unexpected question number: %s", data)
	}
}

func TestConclusionTurnJSONIsComplete(t *testing.T) {
	data, err := json.Marshal(ConclusionTurn{Message: "done"})
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if decoded["complete"] != true || decoded["type"] != "conclusion" {
		t.Fatalf("unexpected tags: %s", data)
	}
	if _, ok := decoded["persona_history"].([]any); !ok {
		t.Fatalf("expected persona_history array, got %s", data)
	}
}

func TestCloneDoesNotShareHistory(t *testing.T) {
	s := NewSession("s1", "engineer", time.Now())
	s.ConversationHistory = append(s.ConversationHistory, Turn{Speaker: SpeakerAgent, Text: "hi"})
	s.Feedback = &Feedback{Strengths: []string{"a"}}

	c := s.Clone()
	c.ConversationHistory[0].Text = "changed"
	c.Feedback.Strengths[0] = "b"

	if s.ConversationHistory[0].Text != "hi" {
		t.Fatal("clone shares conversation history")
	}
	if s.Feedback.Strengths[0] != "a" {
		t.Fatal("clone shares feedback strengths")
	}
}

func TestRecentReturnsTrailingWindow(t *testing.T) {
	turns := []Turn{{Text: "1"}, {Text: "2"}, {Text: "3"}}
	got := Recent(turns, 2)
	if len(got) != 2 || got[0].Text != "2" {
		t.Fatalf("unexpected window: %+v", got)
	}
	if Recent(turns, 0) != nil {
		t.Fatal("expected nil window for zero limit")
	}
}
