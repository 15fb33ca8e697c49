// internal/oracle/openai.go

// Package oracle wraps the external text-generation dependency behind a
// single-request client. Retry policy belongs to callers.
package oracle

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const requestTimeout = 10 * time.Second

// OpenAI issues one chat completion per Generate call.
type OpenAI struct {
	client *openai.Client
	model  string
	log    *logrus.Logger
}

// NewOpenAI builds a client from an API key.
func NewOpenAI(apiKey string, logger *logrus.Logger) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("missing OpenAI API key")
	}
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4Turbo1106,
		log:    logger,
	}, nil
}

// Generate sends prompt and returns the raw completion text. jsonOnly
// constrains the model to emit a JSON object.
func (o *OpenAI) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32, jsonOnly bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       o.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if jsonOnly {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	o.log.WithFields(logrus.Fields{
		"promptTokens":     resp.Usage.PromptTokens,
		"completionTokens": resp.Usage.CompletionTokens,
	}).Debug("completion usage")
	return resp.Choices[0].Message.Content, nil
}
