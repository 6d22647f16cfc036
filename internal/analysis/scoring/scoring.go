// Package scoring derives the numeric interview scorecard from the persona distribution
// of candidate turns. It is pure and deterministic.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/zhouzirui/interview-partner/backend/internal/model/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
)

// ErrUnknownPersona is returned when a candidate turn carries a label outside the closed set.
var ErrUnknownPersona = errors.New("unknown persona label")

// Term is a baseline plus per-ratio weights for one sub-score.
// The weighted ratios are added in the order given to term, not field order.
type Term struct {
	Base      float64 `toml:"base"`
	Efficient float64 `toml:"efficient"`
	Confused  float64 `toml:"confused"`
	Edge      float64 `toml:"edge"`
	Chatty    float64 `toml:"chatty"`
}

// Adaptivity is the piecewise persona_adaptivity table keyed on distinct-label count.
type Adaptivity struct {
	SingleNegative     float64 `toml:"single_negative"`
	SingleEfficient    float64 `toml:"single_efficient"`
	SingleOther        float64 `toml:"single_other"`
	PairEfficient      float64 `toml:"pair_efficient"`
	PairOther          float64 `toml:"pair_other"`
	ManyNegativeShare  float64 `toml:"many_negative_share"`
	ManyTooNegative    float64 `toml:"many_too_negative"`
	ManyMostlyPositive float64 `toml:"many_mostly_positive"`
}

// Weights is the single configuration table for every scoring constant.
type Weights struct {
	Logic         Term       `toml:"logic"`
	Communication Term       `toml:"communication"`
	Focus         Term       `toml:"focus"`
	Adaptivity    Adaptivity `toml:"adaptivity"`

	OverallLogic         float64 `toml:"overall_logic"`
	OverallCommunication float64 `toml:"overall_communication"`
	OverallFocus         float64 `toml:"overall_focus"`
	OverallAdaptivity    float64 `toml:"overall_adaptivity"`

	Min float64 `toml:"min"`
	Max float64 `toml:"max"`
}

// DefaultWeights returns the reference scoring table. Penalties are stored as negative weights.
func DefaultWeights() Weights {
	return Weights{
		Logic:         Term{Base: 3.0, Efficient: 2.0, Confused: -3.0, Edge: -2.5},
		Communication: Term{Base: 2.0, Efficient: 2.5, Chatty: -2.0, Confused: -1.0},
		Focus:         Term{Base: 2.5, Efficient: 2.0, Edge: -3.0, Chatty: -1.5, Confused: -1.2},
		Adaptivity: Adaptivity{
			SingleNegative:     1.0,
			SingleEfficient:    4.5,
			SingleOther:        2.0,
			PairEfficient:      4.2,
			PairOther:          2.5,
			ManyNegativeShare:  0.3,
			ManyTooNegative:    1.5,
			ManyMostlyPositive: 4.0,
		},
		OverallLogic:         0.30,
		OverallCommunication: 0.30,
		OverallFocus:         0.25,
		OverallAdaptivity:    0.15,
		Min:                  0.1,
		Max:                  5.0,
	}
}

// Summation order per sub-score; the rounded results depend on it.
var (
	logicOrder         = []persona.Label{persona.Efficient, persona.Confused, persona.Edge, persona.Chatty}
	communicationOrder = []persona.Label{persona.Efficient, persona.Chatty, persona.Confused, persona.Edge}
	focusOrder         = []persona.Label{persona.Efficient, persona.Edge, persona.Chatty, persona.Confused}
)

func (t Term) weight(label persona.Label) float64 {
	switch label {
	case persona.Efficient:
		return t.Efficient
	case persona.Confused:
		return t.Confused
	case persona.Edge:
		return t.Edge
	case persona.Chatty:
		return t.Chatty
	default:
		return 0
	}
}

// Engine computes scorecards with a fixed weights table.
type Engine struct {
	w Weights
}

// NewEngine returns an engine using w.
func NewEngine(w Weights) *Engine {
	return &Engine{w: w}
}

// Default returns an engine with DefaultWeights.
func Default() *Engine {
	return NewEngine(DefaultWeights())
}

type distribution struct {
	order  []persona.Label
	counts map[persona.Label]int
	total  int
}

func (d distribution) ratio(label persona.Label) float64 {
	return float64(d.counts[label]) / float64(d.total)
}

func (d distribution) has(label persona.Label) bool {
	return d.counts[label] > 0
}

// Score aggregates the full conversation history into a scorecard.
// No candidate turns yields all-zero scores.
func (e *Engine) Score(history []interview.Turn) (interview.Scores, error) {
	dist := distribution{counts: make(map[persona.Label]int)}
	for i, turn := range history {
		if !turn.IsCandidate() {
			continue
		}
		label := turn.PersonaDetected
		if label == "" {
			label = persona.Neutral
		}
		if !label.Valid() {
			return interview.Scores{}, fmt.Errorf("turn %d: %w: %q", i, ErrUnknownPersona, label)
		}
		if dist.counts[label] == 0 {
			dist.order = append(dist.order, label)
		}
		dist.counts[label]++
		dist.total++
	}

	if dist.total == 0 {
		return interview.Scores{}, nil
	}

	logic := e.clamp(e.term(e.w.Logic, logicOrder, dist))
	communication := e.clamp(e.term(e.w.Communication, communicationOrder, dist))
	focus := e.clamp(e.term(e.w.Focus, focusOrder, dist))
	adaptivity := e.clamp(e.adaptivity(dist))

	// Explicit conversions keep each product rounded before the sum (no fused multiply-add).
	overall := float64(logic*e.w.OverallLogic) +
		float64(communication*e.w.OverallCommunication) +
		float64(focus*e.w.OverallFocus) +
		float64(adaptivity*e.w.OverallAdaptivity)

	return interview.Scores{
		Overall:           round1(overall),
		Logic:             round1(logic),
		Communication:     round1(communication),
		Focus:             round1(focus),
		PersonaAdaptivity: round1(adaptivity),
	}, nil
}

func (e *Engine) term(t Term, order []persona.Label, d distribution) float64 {
	v := t.Base
	for _, label := range order {
		v += float64(t.weight(label) * d.ratio(label))
	}
	return v
}

// adaptivity keeps the two-label branch literal: only {efficient, non-negative} earns the high mark.
func (e *Engine) adaptivity(d distribution) float64 {
	a := e.w.Adaptivity
	switch distinct := len(d.order); {
	case distinct == 1:
		switch d.order[0] {
		case persona.Confused, persona.Edge:
			return a.SingleNegative
		case persona.Efficient:
			return a.SingleEfficient
		default:
			return a.SingleOther
		}
	case distinct == 2:
		if d.has(persona.Efficient) && !d.has(persona.Confused) && !d.has(persona.Edge) {
			return a.PairEfficient
		}
		return a.PairOther
	default:
		bad := d.counts[persona.Confused] + d.counts[persona.Edge]
		if float64(bad) > float64(d.total)*a.ManyNegativeShare {
			return a.ManyTooNegative
		}
		return a.ManyMostlyPositive
	}
}

func (e *Engine) clamp(v float64) float64 {
	return math.Max(e.w.Min, math.Min(e.w.Max, v))
}

// round1 rounds the exact binary value to one decimal, ties to even.
func round1(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}
