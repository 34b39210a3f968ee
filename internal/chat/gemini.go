package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

// GeminiOracle adapts Google's Gemini API to the OracleClient interface.
// It answers in plain text only: tool declarations in the request are
// ignored, so it serves as a degraded fallback rather than a primary.
type GeminiOracle struct {
	client  *genai.Client
	modelID string
}

// NewGeminiOracle creates a Gemini-backed oracle.
func NewGeminiOracle(ctx context.Context, apiKey, modelID string) (*GeminiOracle, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("chat: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("chat: failed to create gemini client: %w", err)
	}
	return &GeminiOracle{client: client, modelID: modelID}, nil
}

// CreateChatCompletion maps the conversation onto a Gemini chat session
// and returns the reply shaped as an OpenAI-style response.
func (o *GeminiOracle) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if len(req.Messages) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("chat: gemini requires at least one message")
	}

	model := o.client.GenerativeModel(o.modelID)

	var systemParts []string
	var history []*genai.Content
	for _, msg := range req.Messages[:len(req.Messages)-1] {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		switch msg.Role {
		case openai.ChatMessageRoleSystem:
			systemParts = append(systemParts, content)
		case openai.ChatMessageRoleAssistant:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(content)}})
		case openai.ChatMessageRoleTool:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text("Tool result: " + content)}})
		default:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(content)}})
		}
	}
	if len(systemParts) > 0 {
		model.SystemInstruction = genai.NewUserContent(genai.Text(strings.Join(systemParts, "\n\n")))
	}

	cs := model.StartChat()
	cs.History = history

	last := req.Messages[len(req.Messages)-1]
	resp, err := cs.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("chat: gemini completion failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return openai.ChatCompletionResponse{}, errors.New("chat: gemini returned no content")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: strings.TrimSpace(text.String()),
			},
			FinishReason: openai.FinishReasonStop,
		}},
	}, nil
}

// Close releases resources held by the Gemini client.
func (o *GeminiOracle) Close() error {
	if o.client != nil {
		return o.client.Close()
	}
	return nil
}
