package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/interview-partner/backend/internal/model/interview"
	"github.com/zhouzirui/interview-partner/backend/internal/model/persona"
)

// ErrEmptyCompletion is returned when the model answers with blank content.
var ErrEmptyCompletion = errors.New("empty completion")

// Sampling holds per-call generation options.
type Sampling struct {
	Temperature float32
	MaxTokens   int
}

var (
	classifySampling = Sampling{Temperature: 0.3, MaxTokens: 10}
	questionSampling = Sampling{Temperature: 0.8, MaxTokens: 200}
)

// Service adapts an eino chat model to the interview collaborators: semantic persona
// classification and question generation.
type Service struct {
	chatModel model.ChatModel
	prompts   *PromptBuilder
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the prompt chain around chatModel.
func NewService(ctx context.Context, chatModel model.ChatModel, personas persona.Store) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile interview chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		prompts:   NewPromptBuilder(personas),
		chain:     runnable,
	}, nil
}

// GetChatModel returns the underlying chat model.
func (s *Service) GetChatModel() model.ChatModel {
	return s.chatModel
}

// Classify asks the model for a single persona word. Validation is left to the caller.
func (s *Service) Classify(ctx context.Context, message string, recent []interview.Turn) (string, error) {
	input := map[string]any{
		"system": classifySystemPrompt,
		"query":  s.prompts.ClassifyPrompt(message, recent),
	}
	return s.complete(ctx, input, classifySampling)
}

// GenerateQuestion asks the model for the next interviewer question.
func (s *Service) GenerateQuestion(ctx context.Context, req interview.QuestionRequest) (string, error) {
	input := map[string]any{
		"system": s.prompts.QuestionSystemPrompt(req),
		"query":  s.prompts.QuestionUserPrompt(req),
	}

	question, err := s.complete(ctx, input, questionSampling)
	if err != nil {
		return "", err
	}
	log.Printf("[ai] generated question role=%s persona=%s length=%d", req.Role, req.Persona, len(question))
	return question, nil
}

func (s *Service) complete(ctx context.Context, input map[string]any, sampling Sampling) (string, error) {
	response, err := s.chain.Invoke(ctx, input, compose.WithChatModelOption(
		model.WithTemperature(sampling.Temperature),
		model.WithMaxTokens(sampling.MaxTokens),
	))
	if err != nil {
		return "", fmt.Errorf("failed to run interview chain: %w", err)
	}
	if response == nil {
		return "", ErrEmptyCompletion
	}

	content := strings.TrimSpace(response.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
