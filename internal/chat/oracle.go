package chat

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/wolfman30/bookline/pkg/logging"
)

// OracleClient is the language-model service the orchestrator talks to.
// *openai.Client satisfies it directly.
type OracleClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// FallbackOracle wraps a primary oracle with a secondary provider. When
// the primary fails the request is retried against the fallback; the
// fallback may not support tool calling, in which case the turn degrades
// to a plain text answer.
type FallbackOracle struct {
	primary  OracleClient
	fallback OracleClient
	logger   *logging.Logger
}

// NewFallbackOracle creates a fallback-enabled oracle. A nil fallback
// means only the primary is used.
func NewFallbackOracle(primary, fallback OracleClient, logger *logging.Logger) *FallbackOracle {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackOracle{primary: primary, fallback: fallback, logger: logger}
}

// CreateChatCompletion tries the primary oracle, then the fallback.
func (o *FallbackOracle) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	resp, err := o.primary.CreateChatCompletion(ctx, req)
	if err == nil {
		return resp, nil
	}

	o.logger.Warn("primary oracle failed",
		"error", err.Error(),
		"fallback_available", o.fallback != nil,
	)
	if o.fallback == nil {
		return openai.ChatCompletionResponse{}, err
	}

	resp, fallbackErr := o.fallback.CreateChatCompletion(ctx, req)
	if fallbackErr != nil {
		o.logger.Error("fallback oracle also failed",
			"primary_error", err.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		return openai.ChatCompletionResponse{}, fallbackErr
	}

	o.logger.Info("fallback oracle succeeded after primary failure")
	return resp, nil
}
