package interview

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/zhouzirui/interview-partner/backend/internal/analysis/feedback"
	"github.com/zhouzirui/interview-partner/backend/internal/analysis/scoring"
	model "github.com/zhouzirui/interview-partner/backend/internal/model/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
	"github.com/zhouzirui/interview-partner/backend/internal/service/classifier"
)

type scriptedClassifier struct {
	labels []persona.Label
	err    error
	calls  int
}

func (c *scriptedClassifier) Classify(_ context.Context, _ string, _ []model.Turn) (persona.Label, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	if len(c.labels) == 0 {
		return persona.Neutral, nil
	}
	label := c.labels[0]
	if len(c.labels) > 1 {
		c.labels = c.labels[1:]
	}
	return label, nil
}

type countingGenerator struct {
	err      error
	requests []model.QuestionRequest
}

func (g *countingGenerator) GenerateQuestion(_ context.Context, req model.QuestionRequest) (string, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return "", g.err
	}
	return fmt.Sprintf("Question %d for %s?", len(g.requests), req.Persona), nil
}

type failingScorer struct{}

func (failingScorer) Score([]model.Turn) (model.Scores, error) {
	return model.Scores{}, errors.New("scoring exploded")
}

type failingFeedback struct{}

func (failingFeedback) Generate(string, []model.Turn, model.Scores) (model.Feedback, error) {
	return model.Feedback{}, errors.New("feedback exploded")
}

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

func newTestManager(c Classifier, g QuestionGenerator) *Manager {
	return NewManager(c, g, scoring.Default(), feedback.NewGenerator(), Options{Now: fixedNow})
}

func startedSession(t *testing.T, m *Manager) *model.Session {
	t.Helper()
	session := model.NewSession("s1", "engineer", fixedNow())
	if _, err := m.Start(context.Background(), session); err != nil {
		t.Fatalf("Start err: %v", err)
	}
	return session
}

func TestStartAsksNeutralOpening(t *testing.T) {
	gen := &countingGenerator{}
	m := newTestManager(&scriptedClassifier{}, gen)
	session := model.NewSession("s1", "engineer", fixedNow())

	turn, err := m.Start(context.Background(), session)
	if err != nil {
		t.Fatalf("Start err: %v", err)
	}
	if turn.Persona != persona.Neutral || turn.QuestionNumber != 1 || !turn.ShouldContinue {
		t.Fatalf("unexpected opening turn: %+v", turn)
	}
	if session.QuestionCount != 1 || len(session.ConversationHistory) != 1 {
		t.Fatalf("unexpected session state: %+v", session)
	}
	if session.ConversationHistory[0].Kind != model.KindOpening {
		t.Fatalf("expected opening turn kind, got %s", session.ConversationHistory[0].Kind)
	}
	if !gen.requests[0].Opening() || gen.requests[0].Persona != persona.Neutral {
		t.Fatalf("unexpected opening request: %+v", gen.requests[0])
	}

	if _, err := m.Start(context.Background(), session); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestStartGenerationFailureUsesRoleOpening(t *testing.T) {
	m := newTestManager(&scriptedClassifier{}, &countingGenerator{err: errors.New("offline")})
	session := model.NewSession("s1", "sales", fixedNow())

	turn, err := m.Start(context.Background(), session)
	if err != nil {
		t.Fatalf("Start err: %v", err)
	}
	if turn.Message != "Great to meet you! Tell me about your sales experience." {
		t.Fatalf("unexpected opening: %q", turn.Message)
	}
}

func TestProcessIncrementsQuestionCount(t *testing.T) {
	m := newTestManager(&scriptedClassifier{}, &countingGenerator{})
	session := startedSession(t, m)

	for want := 2; want <= m.MaxQuestions(); want++ {
		result, err := m.Process(context.Background(), session, "An answer with some detail.")
		if err != nil {
			t.Fatalf("Process err: %v", err)
		}
		q, ok := result.(model.QuestionTurn)
		if !ok {
			t.Fatalf("expected QuestionTurn, got %T", result)
		}
		if q.QuestionNumber != want || session.QuestionCount != want {
			t.Fatalf("expected question %d, got %d (session %d)", want, q.QuestionNumber, session.QuestionCount)
		}
		if q.ShouldContinue != (want < m.MaxQuestions()) {
			t.Fatalf("should_continue wrong at question %d", want)
		}
	}

	result, err := m.Process(context.Background(), session, "Final answer.")
	if err != nil {
		t.Fatalf("Process err: %v", err)
	}
	if !result.Complete() {
		t.Fatal("expected conclusion after the last question")
	}
	if session.QuestionCount != m.MaxQuestions() {
		t.Fatalf("question count moved during conclusion: %d", session.QuestionCount)
	}
}

func TestProcessRecordsPersonaTransitionsOnlyOnChange(t *testing.T) {
	cls := &scriptedClassifier{labels: []persona.Label{persona.Neutral, persona.Chatty, persona.Chatty, persona.Efficient}}
	m := newTestManager(cls, &countingGenerator{})
	session := startedSession(t, m)

	for i := 0; i < 4; i++ {
		if _, err := m.Process(context.Background(), session, "answer"); err != nil {
			t.Fatalf("Process err: %v", err)
		}
	}

	want := []model.PersonaTransition{
		{From: persona.Neutral, To: persona.Chatty, AtTurnIndex: 3},
		{From: persona.Chatty, To: persona.Efficient, AtTurnIndex: 7},
	}
	if !reflect.DeepEqual(session.PersonaHistory, want) {
		t.Fatalf("unexpected transitions: %+v", session.PersonaHistory)
	}
	if session.ConversationHistory[3].PersonaDetected != persona.Chatty {
		t.Fatalf("transition index does not point at the candidate turn")
	}
	if session.CurrentPersona != persona.Efficient {
		t.Fatalf("expected current persona efficient, got %s", session.CurrentPersona)
	}
}

func TestProcessClassifierFailureKeepsCurrentPersona(t *testing.T) {
	m := newTestManager(&scriptedClassifier{err: errors.New("down")}, &countingGenerator{})
	session := startedSession(t, m)
	session.CurrentPersona = persona.Chatty

	result, err := m.Process(context.Background(), session, "answer")
	if err != nil {
		t.Fatalf("Process err: %v", err)
	}
	if result.(model.QuestionTurn).Persona != persona.Chatty {
		t.Fatalf("expected persona to stay chatty")
	}
	if len(session.PersonaHistory) != 0 {
		t.Fatalf("no transition expected, got %+v", session.PersonaHistory)
	}
	if session.ConversationHistory[1].PersonaDetected != persona.Chatty {
		t.Fatalf("candidate turn should carry the kept persona")
	}
}

func TestProcessGenerationFailureUsesTemplate(t *testing.T) {
	gen := &countingGenerator{}
	m := newTestManager(&scriptedClassifier{}, gen)
	session := startedSession(t, m)
	gen.err = errors.New("timeout")

	result, err := m.Process(context.Background(), session, "answer")
	if err != nil {
		t.Fatalf("Process err: %v", err)
	}
	q := result.(model.QuestionTurn)
	if q.Message != "Tell me about your experience relevant to this engineer position." {
		t.Fatalf("unexpected fallback question: %q", q.Message)
	}
	if q.QuestionNumber != 2 {
		t.Fatalf("fallback question still counts, got %d", q.QuestionNumber)
	}
}

func TestProcessPassesBoundedContext(t *testing.T) {
	gen := &countingGenerator{}
	m := newTestManager(&scriptedClassifier{labels: []persona.Label{persona.Edge}}, gen)
	session := startedSession(t, m)

	for i := 0; i < 3; i++ {
		if _, err := m.Process(context.Background(), session, "answer"); err != nil {
			t.Fatalf("Process err: %v", err)
		}
	}
	last := gen.requests[len(gen.requests)-1]
	if len(last.Recent) != 4 {
		t.Fatalf("expected 4 context turns, got %d", len(last.Recent))
	}
	if len(last.Asked) != 3 || last.Persona != persona.Edge || last.Role != "engineer" {
		t.Fatalf("unexpected request: %+v", last)
	}
	if session.ConversationHistory[len(session.ConversationHistory)-1].PersonaAdapted != persona.Edge {
		t.Fatal("agent turn must record the adapted persona")
	}
}

func TestProcessRejectsMisuse(t *testing.T) {
	m := newTestManager(&scriptedClassifier{}, &countingGenerator{})

	fresh := model.NewSession("s0", "engineer", fixedNow())
	if _, err := m.Process(context.Background(), fresh, "hi"); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}

	session := startedSession(t, m)
	if _, err := m.Process(context.Background(), session, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}

	session.Status = model.StatusCompleted
	if _, err := m.Process(context.Background(), session, "hi"); !errors.Is(err, ErrSessionCompleted) {
		t.Fatalf("expected ErrSessionCompleted, got %v", err)
	}
}

func TestConcludeFallsBackOnScoringFailure(t *testing.T) {
	m := NewManager(&scriptedClassifier{}, &countingGenerator{}, failingScorer{}, feedback.NewGenerator(), Options{MaxQuestions: 1, Now: fixedNow})
	session := startedSession(t, m)

	result, err := m.Process(context.Background(), session, "answer")
	if err != nil {
		t.Fatalf("Process err: %v", err)
	}
	c, ok := result.(model.ConclusionTurn)
	if !ok {
		t.Fatalf("expected ConclusionTurn, got %T", result)
	}
	if c.Scores != defaultScores() || c.Feedback.OverallImpression != "Interview completed." {
		t.Fatalf("expected default evaluation, got %+v", c)
	}
	if !session.Completed() || session.Scores == nil || session.Feedback == nil {
		t.Fatal("session must be completed with evaluation set")
	}
}

func TestConcludeFallsBackOnFeedbackFailure(t *testing.T) {
	m := NewManager(&scriptedClassifier{}, &countingGenerator{}, scoring.Default(), failingFeedback{}, Options{MaxQuestions: 1, Now: fixedNow})
	session := startedSession(t, m)

	result, err := m.Process(context.Background(), session, "answer")
	if err != nil {
		t.Fatalf("Process err: %v", err)
	}
	c := result.(model.ConclusionTurn)
	if c.Scores.Overall != 3.0 || c.Feedback.Persona != persona.Neutral {
		t.Fatalf("expected default evaluation, got %+v", c)
	}
	if !strings.Contains(c.Message, "3.0/5.0") {
		t.Fatalf("conclusion message should state the default score: %q", c.Message)
	}
}

func TestConcludeIsDeterministic(t *testing.T) {
	run := func() model.ConclusionTurn {
		cls := &scriptedClassifier{labels: []persona.Label{persona.Efficient, persona.Chatty, persona.Confused}}
		m := NewManager(cls, &countingGenerator{}, scoring.Default(), feedback.NewGenerator(), Options{MaxQuestions: 3, Now: fixedNow})
		session := startedSession(t, m)
		var last model.Result
		for i := 0; i < 3; i++ {
			r, err := m.Process(context.Background(), session, fmt.Sprintf("answer number %d", i))
			if err != nil {
				t.Fatalf("Process err: %v", err)
			}
			last = r
		}
		return last.(model.ConclusionTurn)
	}

	if !reflect.DeepEqual(run(), run()) {
		t.Fatal("conclusion differs between identical runs")
	}
}

func TestEndToEndEfficientEngineer(t *testing.T) {
	cls := classifier.NewService(nil, classifier.Config{})
	m := NewManager(cls, BankGenerator{}, scoring.Default(), feedback.NewGenerator(), Options{Now: fixedNow})
	session := startedSession(t, m)

	answers := []string{
		"I built a billing service in Go last year.",
		"We used Postgres with careful indexing for reports.",
		"I profile first, then fix the hottest path.",
		"Logs, metrics and traces point me to causes.",
		"Code review keeps our main branch stable daily.",
		"I mentor juniors through pairing and small tasks.",
	}

	var result model.Result
	for _, answer := range answers {
		r, err := m.Process(context.Background(), session, answer)
		if err != nil {
			t.Fatalf("Process err: %v", err)
		}
		result = r
	}

	c, ok := result.(model.ConclusionTurn)
	if !ok || !c.Complete() {
		t.Fatalf("expected completion, got %T", result)
	}
	if c.Feedback.Persona != persona.Efficient {
		t.Fatalf("expected efficient feedback persona, got %s", c.Feedback.Persona)
	}
	if c.Scores.PersonaAdaptivity != 4.5 {
		t.Fatalf("expected adaptivity 4.5, got %v", c.Scores.PersonaAdaptivity)
	}
	if session.Status != model.StatusCompleted || session.CompletedAt == nil {
		t.Fatalf("session not completed: %+v", session.Status)
	}
	last := session.ConversationHistory[len(session.ConversationHistory)-1]
	if last.Kind != model.KindConclusion || last.Speaker != model.SpeakerAgent {
		t.Fatalf("expected conclusion agent turn, got %+v", last)
	}
	if len(model.CandidateTurns(session.ConversationHistory)) != 6 {
		t.Fatal("expected six candidate turns")
	}
}
