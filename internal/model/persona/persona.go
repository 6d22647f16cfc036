package persona

import "strings"

// Label names a candidate communication style detected for one turn.
type Label string

const (
	Confused  Label = "confused"
	Efficient Label = "efficient"
	Chatty    Label = "chatty"
	Edge      Label = "edge"
	Neutral   Label = "neutral"
)

// Labels returns the closed label set in canonical order.
func Labels() []Label {
	return []Label{Confused, Efficient, Chatty, Edge, Neutral}
}

// Valid reports whether l belongs to the closed label set.
func (l Label) Valid() bool {
	switch l {
	case Confused, Efficient, Chatty, Edge, Neutral:
		return true
	default:
		return false
	}
}

// Parse normalizes raw and matches it exactly against the label set.
func Parse(raw string) (Label, bool) {
	label := Label(strings.ToLower(strings.TrimSpace(raw)))
	if !label.Valid() {
		return "", false
	}
	return label, true
}

// Profile describes how the interviewer should adapt to a persona.
type Profile struct {
	ID          Label    `json:"id"`
	Name        string   `json:"name"`
	Tone        string   `json:"tone"`
	PromptHint  string   `json:"promptHint"`
	Description string   `json:"description,omitempty"`
	Signals     []string `json:"signals,omitempty"`
}

// Seed provides the built-in interviewer adaptation profiles.
func Seed() []Profile {
	return []Profile{
		{
			ID:          Confused,
			Name:        "Confused",
			Tone:        "supportive, patient",
			PromptHint:  "Be supportive, give examples, break down questions.",
			Description: "The candidate hesitates, hedges or asks for clarification.",
			Signals:     []string{"not sure", "don't know", "maybe", "i guess", "what do you mean"},
		},
		{
			ID:          Efficient,
			Name:        "Efficient",
			Tone:        "direct, concise",
			PromptHint:  "Be direct and concise.",
			Description: "The candidate answers briefly and stays on topic.",
			Signals:     []string{"short answers", "on-topic"},
		},
		{
			ID:          Chatty,
			Name:        "Chatty",
			Tone:        "focused, redirecting",
			PromptHint:  "Be focused, gently redirect if needed.",
			Description: "The candidate gives long answers that drift from the question.",
			Signals:     []string{"long answers", "tangents"},
		},
		{
			ID:          Edge,
			Name:        "Edge",
			Tone:        "professional, firm",
			PromptHint:  "Be professional but firm in redirecting.",
			Description: "The candidate goes off-topic or turns questions back on the interviewer.",
			Signals:     []string{"joke", "tell me about you", "what's your", "do you", "can you tell"},
		},
		{
			ID:          Neutral,
			Name:        "Neutral",
			Tone:        "professional, balanced",
			PromptHint:  "Be professional and balanced.",
			Description: "No distinctive pattern detected yet.",
		},
	}
}
