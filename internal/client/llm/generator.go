package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/aliskhannn/ai-quiz-bot/internal/domain/entities"
)

const submitTool = "submit_questions"

var (
	ErrNoChoices   = errors.New("no response from model")
	ErrNoToolCalls = errors.New("no tool calls in response")
)

const letters = "ABCDE"

// Generator produces quiz questions with OpenAI chat completions.
type Generator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// New creates a generator for the given model.
func New(apiKey, model string, logger *zap.Logger) *Generator {
	return NewWithConfig(openai.DefaultConfig(apiKey), model, logger)
}

// NewWithConfig creates a generator with a custom client configuration.
func NewWithConfig(cfg openai.ClientConfig, model string, logger *zap.Logger) *Generator {
	if model == "" {
		model = openai.GPT4o
	}
	return &Generator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

type toolArgs struct {
	Title     string `json:"title"`
	Questions []struct {
		Text          string   `json:"text"`
		Options       []string `json:"options"`
		CorrectAnswer int      `json:"correct_answer"`
		Explanation   string   `json:"explanation"`
	} `json:"questions"`
}

// GenerateQuestions asks the model for count questions on topic. Answers are returned as
// letter codes, the same shape the quiz API uses.
func (g *Generator) GenerateQuestions(ctx context.Context, topic string, count int) (*entities.RawQuiz, error) {
	g.logger.Info("generating questions", zap.String("topic", topic), zap.Int("count", count), zap.String("model", g.model))

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert quiz question generator. Generate high-quality multiple choice questions with exactly 4 options each.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(topic, count),
			},
		},
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        submitTool,
				Description: "Submit generated quiz questions",
				Parameters:  toolSchema,
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: submitTool},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	calls := resp.Choices[0].Message.ToolCalls
	if len(calls) == 0 {
		return nil, ErrNoToolCalls
	}
	if calls[0].Function.Name != submitTool {
		return nil, fmt.Errorf("unexpected tool call: %s", calls[0].Function.Name)
	}

	var args toolArgs
	if err := json.Unmarshal([]byte(calls[0].Function.Arguments), &args); err != nil {
		return nil, fmt.Errorf("parse tool arguments: %w", err)
	}

	quiz := &entities.RawQuiz{
		Title:     strings.TrimSpace(args.Title),
		Questions: make([]entities.RawQuestion, 0, len(args.Questions)),
	}
	for _, q := range args.Questions {
		quiz.Questions = append(quiz.Questions, entities.RawQuestion{
			Question:    q.Text,
			Options:     q.Options,
			Answer:      answerCode(q.CorrectAnswer, q.Options),
			Explanation: q.Explanation,
		})
	}

	g.logger.Info("generated questions", zap.String("topic", topic), zap.Int("count", len(quiz.Questions)))

	return quiz, nil
}

// answerCode turns a 0-based index into a letter, or the option text past E.
func answerCode(index int, options []string) string {
	switch {
	case index < 0 || index >= len(options):
		return ""
	case index < len(letters):
		return string(letters[index])
	default:
		return options[index]
	}
}

func buildPrompt(topic string, count int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Generate %d multiple choice questions about: %s\n\n", count, topic)
	sb.WriteString("Requirements:\n")
	sb.WriteString("- Each question must have exactly 4 multiple choice options\n")
	sb.WriteString("- Incorrect options should be plausible but clearly wrong\n")
	sb.WriteString("- Questions should test understanding, not just memorization\n")
	sb.WriteString("- Provide a brief explanation for why the correct answer is right\n")
	sb.WriteString("- Give the quiz a short title\n")
	sb.WriteString("- Use the submit_questions tool to return your questions\n")

	return sb.String()
}

var toolSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title": map[string]any{
			"type":        "string",
			"description": "Short title of the quiz",
		},
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{
						"type":        "string",
						"description": "The question text",
					},
					"options": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Array of 4 multiple choice options",
					},
					"correct_answer": map[string]any{
						"type":        "integer",
						"description": "0-based index of the correct answer",
					},
					"explanation": map[string]any{
						"type":        "string",
						"description": "Brief explanation of why the answer is correct",
					},
				},
				"required": []string{"text", "options", "correct_answer", "explanation"},
			},
		},
	},
	"required": []string{"questions"},
}
