package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const annotatePrompt = `Tokenize the following English text. For every token give its lowercase
lemma and its universal part-of-speech tag (NOUN, PROPN, ADJ, VERB, NUM, or X
for anything else). Keep the tokens in the order they appear.

Return the response as a JSON object with this structure:
{
    "tokens": [{"lemma": "lemma1", "pos": "NOUN"}, ...]
}

Text: %s`

// ErrEmptyCompletion is returned when the model answers without choices.
var ErrEmptyCompletion = errors.New("openai: empty completion")

type annotationResponse struct {
	Tokens []struct {
		Lemma string `json:"lemma"`
		POS   string `json:"pos"`
	} `json:"tokens"`
}

// OpenAIAnnotator asks a chat model to annotate text.
type OpenAIAnnotator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewOpenAIAnnotator(apiKey, model string, maxTokens int, temperature float64, logger *zap.Logger) *OpenAIAnnotator {
	return NewOpenAIAnnotatorWithConfig(openai.DefaultConfig(apiKey), model, maxTokens, temperature, logger)
}

// NewOpenAIAnnotatorWithConfig allows pointing the client at another base URL.
func NewOpenAIAnnotatorWithConfig(cfg openai.ClientConfig, model string, maxTokens int, temperature float64, logger *zap.Logger) *OpenAIAnnotator {
	return &OpenAIAnnotator{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func (a *OpenAIAnnotator) Annotate(ctx context.Context, text string) ([]Token, error) {
	resp, err := a.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: a.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf(annotatePrompt, text),
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			MaxTokens:   a.maxTokens,
			Temperature: float32(a.temperature),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("openai annotate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	var parsed annotationResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		a.logger.Error("Failed to parse annotation response",
			zap.Error(err),
			zap.String("response", content))
		return nil, fmt.Errorf("parse annotation response: %w", err)
	}

	tokens := make([]Token, 0, len(parsed.Tokens))
	for _, t := range parsed.Tokens {
		tokens = append(tokens, Token{
			Lemma: strings.ToLower(t.Lemma),
			POS:   ParsePOS(strings.ToUpper(t.POS)),
		})
	}

	return tokens, nil
}
