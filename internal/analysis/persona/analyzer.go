package persona

import (
	"strings"

	"github.com/zhouzirui/interview-partner/backend/internal/model/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
)

// Rules holds the keyword lists and thresholds of the deterministic classifier.
type Rules struct {
	EdgeKeywords        []string `toml:"edge_keywords"`
	ConfusedKeywords    []string `toml:"confused_keywords"`
	ConfusedMinHits     int      `toml:"confused_min_hits"`
	EfficientMaxWords   int      `toml:"efficient_max_words"`
	EfficientMaxAverage float64  `toml:"efficient_max_average"`
	EfficientWindow     int      `toml:"efficient_window"`
	ChattyMinWords      int      `toml:"chatty_min_words"`
}

// DefaultRules returns the reference rule table. Keyword matching is substring based
// on the lowercased message.
func DefaultRules() Rules {
	return Rules{
		EdgeKeywords:        []string{"joke", "tell me about you", "what's your", "do you", "can you tell"},
		ConfusedKeywords:    []string{"not sure", "don't know", "maybe", "i guess", "what do you mean"},
		ConfusedMinHits:     2,
		EfficientMaxWords:   12,
		EfficientMaxAverage: 15,
		EfficientWindow:     4,
		ChattyMinWords:      80,
	}
}

// Analyzer applies an ordered rule chain; the first matching rule wins.
type Analyzer struct {
	rules Rules
}

// NewAnalyzer builds an analyzer; zero-valued fields fall back to DefaultRules.
func NewAnalyzer(rules Rules) *Analyzer {
	def := DefaultRules()
	if rules.EdgeKeywords == nil {
		rules.EdgeKeywords = def.EdgeKeywords
	}
	if rules.ConfusedKeywords == nil {
		rules.ConfusedKeywords = def.ConfusedKeywords
	}
	if rules.ConfusedMinHits <= 0 {
		rules.ConfusedMinHits = def.ConfusedMinHits
	}
	if rules.EfficientMaxWords <= 0 {
		rules.EfficientMaxWords = def.EfficientMaxWords
	}
	if rules.EfficientMaxAverage <= 0 {
		rules.EfficientMaxAverage = def.EfficientMaxAverage
	}
	if rules.EfficientWindow <= 0 {
		rules.EfficientWindow = def.EfficientWindow
	}
	if rules.ChattyMinWords <= 0 {
		rules.ChattyMinWords = def.ChattyMinWords
	}
	return &Analyzer{rules: rules}
}

// Rules returns the effective rule table.
func (a *Analyzer) Rules() Rules {
	return a.rules
}

// Analyze classifies message given the prior conversation history.
func (a *Analyzer) Analyze(message string, history []interview.Turn) persona.Label {
	normalized := strings.ToLower(message)
	words := WordCount(message)

	if countHits(normalized, a.rules.EdgeKeywords) >= 1 {
		return persona.Edge
	}

	if countHits(normalized, a.rules.ConfusedKeywords) >= a.rules.ConfusedMinHits {
		return persona.Confused
	}

	if words < a.rules.EfficientMaxWords && a.recentAverage(history) < a.rules.EfficientMaxAverage {
		return persona.Efficient
	}

	if words > a.rules.ChattyMinWords {
		return persona.Chatty
	}

	return persona.Neutral
}

// Analyze runs the default rule table.
func Analyze(message string, history []interview.Turn) persona.Label {
	return defaultAnalyzer.Analyze(message, history)
}

var defaultAnalyzer = NewAnalyzer(DefaultRules())

// WordCount counts whitespace-delimited words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// recentAverage is the mean word count of the trailing candidate turns; an empty window averages 0.
func (a *Analyzer) recentAverage(history []interview.Turn) float64 {
	recent := interview.Recent(interview.CandidateTurns(history), a.rules.EfficientWindow)
	if len(recent) == 0 {
		return 0
	}

	total := 0
	for _, turn := range recent {
		total += WordCount(turn.Text)
	}
	return float64(total) / float64(len(recent))
}

func countHits(normalized string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(normalized, strings.ToLower(kw)) {
			hits++
		}
	}
	return hits
}
