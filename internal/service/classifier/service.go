// Package classifier labels each candidate turn with a communication persona. A semantic
// collaborator is consulted first; any failure falls through to the deterministic
// keyword and word-count analyzer.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	analysis "github.com/zhouzirui/interview-partner/backend/internal/analysis/persona"
	"github.com/zhouzirui/interview-partner/backend/internal/model/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
)

// ErrNoLabel is returned by the response parser when no known label is present.
var ErrNoLabel = errors.New("no persona label in response")

// Semantic is the language-model backed classifier.
type Semantic interface {
	Classify(ctx context.Context, message string, recent []interview.Turn) (string, error)
}

// Config controls the classifier.
type Config struct {
	Enabled      bool
	HistoryLimit int
	Timeout      time.Duration
	Rules        analysis.Rules
}

// Service implements the dual-path persona classification.
type Service struct {
	semantic     Semantic
	fallback     *analysis.Analyzer
	enabled      bool
	historyLimit int
	timeout      time.Duration
}

// NewService wires the classifier. semantic may be nil, in which case only the
// deterministic rules run.
func NewService(semantic Semantic, cfg Config) *Service {
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 6
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Service{
		semantic:     semantic,
		fallback:     analysis.NewAnalyzer(cfg.Rules),
		enabled:      cfg.Enabled && semantic != nil,
		historyLimit: historyLimit,
		timeout:      timeout,
	}
}

// Enabled reports whether the semantic path is consulted.
func (s *Service) Enabled() bool {
	return s != nil && s.enabled
}

// Classify returns the label for message given the prior history. It only fails when
// ctx itself is done; collaborator problems are absorbed by the fallback rules.
func (s *Service) Classify(ctx context.Context, message string, history []interview.Turn) (persona.Label, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if s.Enabled() {
		label, err := s.classifySemantic(ctx, message, history)
		if err == nil {
			return label, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		log.Printf("[classifier] semantic path failed, use fallback: %v", err)
	}

	return s.fallback.Analyze(message, history), nil
}

func (s *Service) classifySemantic(ctx context.Context, message string, history []interview.Turn) (persona.Label, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.semantic.Classify(callCtx, message, interview.Recent(history, s.historyLimit))
	if err != nil {
		return "", fmt.Errorf("semantic classify: %w", err)
	}
	return ParseResponse(raw)
}

// ParseResponse accepts an exact label first, then the first whitespace token that
// names a label once surrounding punctuation is stripped.
func ParseResponse(raw string) (persona.Label, error) {
	if label, ok := persona.Parse(raw); ok {
		return label, nil
	}
	for _, token := range strings.Fields(raw) {
		token = strings.Trim(token, ".,;:!?\"'`*()[]{}")
		if label, ok := persona.Parse(token); ok {
			return label, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNoLabel, raw)
}
