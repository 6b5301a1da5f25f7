package aisvc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/belajarku/backend/core"
	"github.com/belajarku/backend/core/quiz"
)

const systemPrompt = "You write multiple-choice quizzes for an Indonesian learning app. " +
	"Questions and options are in Indonesian. Reply with JSON only, no prose."

const promptTemplate = `Buat %d soal pilihan ganda dari materi berikut.
Satu soal per halaman, halaman "1" sampai "%d".
Setiap soal punya tepat 4 pilihan dan satu jawaban benar.

Judul: %s

Materi:
%s

Balas dengan array JSON berformat:
[{"page":"1","prompt":"...","options":["...","...","...","..."],"correct_index":0}]`

type openaiGenerator struct {
	client *openai.Client
	model  string
	logger core.Logger
}

var _ quiz.Generator = (*openaiGenerator)(nil)

func NewOpenAIGenerator(conf *core.Config, logger core.Logger) quiz.Generator {
	return &openaiGenerator{
		client: openai.NewClient(conf.OpenAIAPIKey),
		model:  openai.GPT4oMini,
		logger: logger,
	}
}

func (g *openaiGenerator) GenerateQuestions(ctx context.Context, title, content string, n int) ([]quiz.NewQuestion, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(promptTemplate, n, n, title, content)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.4,
	})
	if err != nil {
		return nil, errors.Wrap(err, "calling completion API")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty completion response")
	}
	return parseQuestions(resp.Choices[0].Message.Content, n)
}

// parseQuestions decodes the model output, accepting either a bare array or
// an object wrapping one.
func parseQuestions(content string, n int) ([]quiz.NewQuestion, error) {
	content = strings.TrimSpace(content)

	var questions []quiz.NewQuestion
	if err := json.Unmarshal([]byte(content), &questions); err != nil {
		var wrapped map[string][]quiz.NewQuestion
		if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
			return nil, errors.Wrap(err, "decoding generated questions")
		}
		for _, qs := range wrapped {
			questions = qs
			break
		}
	}

	if len(questions) != n {
		return nil, errors.Errorf("expected %d questions, got %d", n, len(questions))
	}
	for i, q := range questions {
		if q.Page == "" || q.Prompt == "" {
			return nil, errors.Errorf("question %d is missing page or prompt", i)
		}
		if len(q.Options) != 4 {
			return nil, errors.Errorf("question %d has %d options, want 4", i, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex > 3 {
			return nil, errors.Errorf("question %d has correct_index %d out of range", i, q.CorrectIndex)
		}
	}
	return questions, nil
}
