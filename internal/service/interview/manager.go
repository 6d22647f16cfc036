// Package interview runs the mock-interview state machine and the per-session
// orchestration around it.
package interview

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	model "github.com/zhouzirui/interview-partner/backend/internal/model/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
)

// Classifier labels a candidate message.
type Classifier interface {
	Classify(ctx context.Context, message string, history []model.Turn) (persona.Label, error)
}

// QuestionGenerator produces the next interviewer question.
type QuestionGenerator interface {
	GenerateQuestion(ctx context.Context, req model.QuestionRequest) (string, error)
}

// Scorer derives the numeric scorecard.
type Scorer interface {
	Score(history []model.Turn) (model.Scores, error)
}

// FeedbackGenerator derives the qualitative report.
type FeedbackGenerator interface {
	Generate(role string, history []model.Turn, scores model.Scores) (model.Feedback, error)
}

// Options tunes the manager. Zero values use the defaults.
type Options struct {
	MaxQuestions    int
	ContextWindow   int
	GenerateTimeout time.Duration
	Now             func() time.Time
}

const (
	defaultMaxQuestions  = 6
	defaultContextWindow = 4
	defaultTimeout       = 15 * time.Second
	defaultScore         = 3.0
)

// Manager drives one session through start, per-turn processing and conclusion.
// It holds no session state; callers serialize access to a given session.
type Manager struct {
	classifier Classifier
	generator  QuestionGenerator
	scorer     Scorer
	feedback   FeedbackGenerator

	maxQuestions  int
	contextWindow int
	timeout       time.Duration
	now           func() time.Time
}

// NewManager wires the collaborators. A nil generator falls back to the role bank.
func NewManager(classifier Classifier, generator QuestionGenerator, scorer Scorer, feedback FeedbackGenerator, opts Options) *Manager {
	if generator == nil {
		generator = BankGenerator{}
	}
	if opts.MaxQuestions <= 0 {
		opts.MaxQuestions = defaultMaxQuestions
	}
	if opts.ContextWindow <= 0 {
		opts.ContextWindow = defaultContextWindow
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = defaultTimeout
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	return &Manager{
		classifier:    classifier,
		generator:     generator,
		scorer:        scorer,
		feedback:      feedback,
		maxQuestions:  opts.MaxQuestions,
		contextWindow: opts.ContextWindow,
		timeout:       opts.GenerateTimeout,
		now:           opts.Now,
	}
}

// MaxQuestions returns the configured interview length.
func (m *Manager) MaxQuestions() int {
	return m.maxQuestions
}

// Start asks the opening question for a fresh session.
func (m *Manager) Start(ctx context.Context, session *model.Session) (model.QuestionTurn, error) {
	if session.Completed() {
		return model.QuestionTurn{}, ErrSessionCompleted
	}
	if session.QuestionCount > 0 || len(session.ConversationHistory) > 0 {
		return model.QuestionTurn{}, ErrAlreadyStarted
	}

	req := model.QuestionRequest{Role: session.Role, Persona: persona.Neutral}
	opening, err := m.generate(ctx, req)
	if err != nil {
		log.Printf("[interview] opening generation failed for session=%s, use role opening: %v", session.ID, err)
		opening = OpeningLine(session.Role)
	}

	m.appendAgentTurn(session, opening, persona.Neutral, model.KindOpening)
	session.QuestionCount = 1

	return model.QuestionTurn{
		Message:        opening,
		Persona:        persona.Neutral,
		QuestionNumber: 1,
		ShouldContinue: true,
	}, nil
}

// Process records a candidate answer and returns either the next question or the
// conclusion. Collaborator failures never surface here.
func (m *Manager) Process(ctx context.Context, session *model.Session, text string) (model.Result, error) {
	if session.Completed() {
		return nil, ErrSessionCompleted
	}
	if session.QuestionCount == 0 {
		return nil, ErrNotStarted
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	detected, err := m.classifier.Classify(ctx, text, session.ConversationHistory)
	if err != nil || !detected.Valid() {
		log.Printf("[interview] classification failed for session=%s, keep persona=%s: %v", session.ID, session.CurrentPersona, err)
		detected = session.CurrentPersona
	}

	turnIndex := len(session.ConversationHistory)
	session.ConversationHistory = append(session.ConversationHistory, model.Turn{
		Speaker:         model.SpeakerCandidate,
		Text:            text,
		Timestamp:       m.now(),
		PersonaDetected: detected,
	})

	if detected != session.CurrentPersona {
		session.PersonaHistory = append(session.PersonaHistory, model.PersonaTransition{
			From:        session.CurrentPersona,
			To:          detected,
			AtTurnIndex: turnIndex,
		})
		session.CurrentPersona = detected
	}
	session.UpdatedAt = m.now()

	if session.QuestionCount >= m.maxQuestions {
		return m.conclude(session), nil
	}

	req := model.QuestionRequest{
		Role:    session.Role,
		Persona: session.CurrentPersona,
		Recent:  model.Recent(session.ConversationHistory, m.contextWindow),
		Asked:   session.AskedQuestions,
	}
	question, err := m.generate(ctx, req)
	if err != nil {
		log.Printf("[interview] question generation failed for session=%s, use template: %v", session.ID, err)
		question = fallbackQuestion(session.Role)
	}

	m.appendAgentTurn(session, question, session.CurrentPersona, model.KindMain)
	session.QuestionCount++

	return model.QuestionTurn{
		Message:        question,
		Persona:        session.CurrentPersona,
		QuestionNumber: session.QuestionCount,
		ShouldContinue: session.QuestionCount < m.maxQuestions,
	}, nil
}

func (m *Manager) conclude(session *model.Session) model.ConclusionTurn {
	scores, feedback, err := m.evaluate(session)
	if err != nil {
		log.Printf("[interview] evaluation failed for session=%s, use defaults: %v", session.ID, err)
		scores = defaultScores()
		feedback = defaultFeedback(scores)
	}

	now := m.now()
	session.Scores = &scores
	session.Feedback = &feedback
	session.Status = model.StatusCompleted
	session.CompletedAt = &now

	message := ConclusionMessage(scores.Overall)
	m.appendAgentTurn(session, message, "", model.KindConclusion)

	log.Printf("[interview] session=%s completed overall=%.1f persona=%s", session.ID, scores.Overall, feedback.Persona)

	return model.ConclusionTurn{
		Message:        message,
		QuestionNumber: session.QuestionCount,
		Scores:         scores,
		Feedback:       *feedback.Clone(),
		PersonaHistory: append([]model.PersonaTransition(nil), session.PersonaHistory...),
	}
}

func (m *Manager) evaluate(session *model.Session) (model.Scores, model.Feedback, error) {
	scores, err := m.scorer.Score(session.ConversationHistory)
	if err != nil {
		return model.Scores{}, model.Feedback{}, fmt.Errorf("score: %w", err)
	}
	feedback, err := m.feedback.Generate(session.Role, session.ConversationHistory, scores)
	if err != nil {
		return model.Scores{}, model.Feedback{}, fmt.Errorf("feedback: %w", err)
	}
	return scores, feedback, nil
}

func (m *Manager) generate(ctx context.Context, req model.QuestionRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	question, err := m.generator.GenerateQuestion(callCtx, req)
	if err != nil {
		return "", err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("generator returned an empty question")
	}
	return question, nil
}

func (m *Manager) appendAgentTurn(session *model.Session, text string, adapted persona.Label, kind model.TurnKind) {
	now := m.now()
	session.ConversationHistory = append(session.ConversationHistory, model.Turn{
		Speaker:        model.SpeakerAgent,
		Text:           text,
		Timestamp:      now,
		PersonaAdapted: adapted,
		Kind:           kind,
	})
	if kind != model.KindConclusion {
		session.AskedQuestions = append(session.AskedQuestions, text)
	}
	session.UpdatedAt = now
}

// ConclusionMessage renders the closing agent turn.
func ConclusionMessage(overall float64) string {
	return fmt.Sprintf("Thank you for completing this mock interview!\n\n**Overall Performance:** %.1f/5.0\n\nYour feedback report is ready.", overall)
}

func fallbackQuestion(role string) string {
	return fmt.Sprintf("Tell me about your experience relevant to this %s position.", role)
}

func defaultScores() model.Scores {
	return model.Scores{
		Overall:           defaultScore,
		Logic:             defaultScore,
		Communication:     defaultScore,
		Focus:             defaultScore,
		PersonaAdaptivity: defaultScore,
	}
}

func defaultFeedback(scores model.Scores) model.Feedback {
	return model.Feedback{
		OverallImpression:     "Interview completed.",
		Strengths:             []string{"Completed all questions"},
		AreasForImprovement:   []model.ImprovementArea{},
		NextSteps:             []string{"Keep practicing"},
		ExampleStrongResponse: "Use STAR method.",
		Scores:                scores,
		Persona:               persona.Neutral,
	}
}
