package interview

import (
	"context"
	"strings"

	model "github.com/zhouzirui/interview-partner/backend/internal/model/interview"
)

const (
	defaultOpening  = "Tell me about yourself."
	closingQuestion = "Do you have any questions for me?"
)

var roleOpenings = map[string]string{
	"engineer": "Let's start! Tell me about your background and what interests you about this engineering role.",
	"sales":    "Great to meet you! Tell me about your sales experience.",
	"retail":   "Thanks for coming in! Tell me about yourself.",
}

var roleQuestions = map[string][]string{
	"engineer": {
		"Tell me about a challenging technical problem you've solved recently.",
		"How do you approach debugging a complex system issue?",
		"Describe your experience with software development.",
	},
	"sales": {
		"Tell me about your most successful sales experience.",
		"How do you handle objections from potential clients?",
		"Describe your approach to building relationships.",
	},
	"retail": {
		"Describe a time you provided excellent customer service.",
		"How do you handle difficult customers?",
		"Tell me about working in a fast-paced environment.",
	},
}

// OpeningLine returns the canned first question for role.
func OpeningLine(role string) string {
	if line, ok := roleOpenings[normalizeRole(role)]; ok {
		return line
	}
	return defaultOpening
}

// BankGenerator serves questions from the built-in role bank. It is used when no
// language model is configured and by the offline simulator.
type BankGenerator struct{}

// GenerateQuestion returns the opening line for an opening request, otherwise the first
// bank question not yet asked.
func (BankGenerator) GenerateQuestion(_ context.Context, req model.QuestionRequest) (string, error) {
	if req.Opening() {
		return OpeningLine(req.Role), nil
	}

	asked := make(map[string]struct{}, len(req.Asked))
	for _, q := range req.Asked {
		asked[q] = struct{}{}
	}
	for _, q := range roleQuestions[normalizeRole(req.Role)] {
		if _, seen := asked[q]; !seen {
			return q, nil
		}
	}
	return closingQuestion, nil
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
