package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/bookline/internal/appointments"
	"github.com/wolfman30/bookline/internal/clients"
	"github.com/wolfman30/bookline/internal/observability/metrics"
	"github.com/wolfman30/bookline/internal/providers"
	"github.com/wolfman30/bookline/internal/rooms"
	"github.com/wolfman30/bookline/internal/scheduling"
	"github.com/wolfman30/bookline/pkg/logging"
	"github.com/redis/go-redis/v9"
)

const systemPrompt = "You are a scheduling assistant for an appointment-booking service. " +
	"You help staff check provider availability, see which clients are booked, and create or move appointments. " +
	"Use the provided tools for anything involving the schedule; never invent availability. " +
	"Be concise. If a tool reports a conflict or asks for clarification, relay that to the user plainly."

// defaultMaxToolRounds bounds oracle/tool round trips per turn. The cap
// guarantees a turn terminates even if the model keeps requesting tools.
const defaultMaxToolRounds = 5

const exhaustedReply = "I wasn't able to complete that request. Could you rephrase it, or book through the regular scheduling screen?"

var chatTracer = otel.Tracer("bookline.internal.chat")

// Request is one user turn. Timezone scopes time resolution and display
// for this turn only; invalid or absent names fall back to UTC.
type Request struct {
	Message        string `json:"message"`
	Timezone       string `json:"timezone"`
	ConversationID string `json:"conversation_id"`
}

// Response is the assistant's reply.
type Response struct {
	ConversationID string    `json:"conversation_id"`
	Message        string    `json:"response"`
	Timestamp      time.Time `json:"timestamp"`
}

// Service drives the bounded tool-calling loop against the oracle.
type Service struct {
	oracle  OracleClient
	tools   *toolbox
	history *historyStore
	model   string
	rounds  int
	metrics   *metrics.ChatMetrics
	logger    *logging.Logger
	defaultTZ string
	now       func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithMaxToolRounds overrides the per-turn tool round cap.
func WithMaxToolRounds(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.rounds = n
		}
	}
}

// WithMetrics attaches chat metrics.
func WithMetrics(m *metrics.ChatMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDefaultTimezone sets the zone used when a turn carries none.
func WithDefaultTimezone(name string) Option {
	return func(s *Service) { s.defaultTZ = name }
}

// NewService wires the orchestrator over the oracle, the entity
// repositories, and the Redis-backed conversation history.
func NewService(
	oracle OracleClient,
	redisClient *redis.Client,
	p providers.Repository,
	c clients.Repository,
	rm rooms.Repository,
	a appointments.Repository,
	validator *appointments.Validator,
	model string,
	logger *logging.Logger,
	opts ...Option,
) *Service {
	if oracle == nil {
		panic("chat: oracle cannot be nil")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if logger == nil {
		logger = logging.Default()
	}

	s := &Service{
		oracle:  oracle,
		tools:   newToolbox(p, c, rm, a, validator, logger),
		history: newHistoryStore(redisClient, chatTracer),
		model:   model,
		rounds:  defaultMaxToolRounds,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessMessage runs one chat turn: load history, loop between the
// oracle and the tools until the oracle answers in text or the round cap
// trips, persist the transcript, and return the reply.
//
// Scheduling conflicts, unknown names, and unparseable times all come
// back as normal replies; only an oracle transport failure is an error.
func (s *Service) ProcessMessage(ctx context.Context, req Request) (*Response, error) {
	ctx, span := chatTracer.Start(ctx, "chat.turn")
	defer span.End()

	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = s.defaultTZ
	}
	loc := scheduling.LoadLocation(tz)
	now := s.now().UTC()

	conversationID := strings.TrimSpace(req.ConversationID)
	var history []openai.ChatCompletionMessage
	if conversationID == "" {
		conversationID = fmt.Sprintf("conv_%s", uuid.NewString())
	} else {
		loaded, err := s.history.Load(ctx, conversationID)
		if err == nil {
			history = loaded
		} else {
			// Expired or unknown id: start fresh under the same id.
			s.logger.Debug("starting fresh conversation", "conversation_id", conversationID, "error", err)
		}
	}
	span.SetAttributes(
		attribute.String("bookline.conversation_id", conversationID),
		attribute.String("bookline.timezone", loc.String()),
	)

	if len(history) == 0 {
		history = append(history, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	history = append(history, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleSystem,
		Content: fmt.Sprintf("Current time: %s (%s). Resolve relative dates against this.",
			now.In(loc).Format("Monday, January 2, 2006 3:04 PM"), loc.String()),
	})
	history = append(history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	reply := exhaustedReply
	outcome := "exhausted"
	for round := 0; round < s.rounds; round++ {
		choice, err := s.complete(ctx, history)
		if err != nil {
			span.RecordError(err)
			s.metrics.ObserveTurn("oracle_error")
			return nil, err
		}

		if len(choice.Message.ToolCalls) == 0 {
			reply = strings.TrimSpace(choice.Message.Content)
			outcome = "text"
			break
		}

		history = append(history, choice.Message)
		for _, call := range choice.Message.ToolCalls {
			s.metrics.ObserveToolCall(call.Function.Name)
			result := s.tools.Dispatch(ctx, call.Function.Name, call.Function.Arguments, loc, now)
			history = append(history, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}
	s.metrics.ObserveTurn(outcome)

	history = append(history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleAssistant,
		Content: reply,
	})
	if err := s.history.Save(ctx, conversationID, history); err != nil {
		// The reply is already computed; losing continuity is not worth
		// failing the turn.
		s.logger.Error("failed to persist conversation history", "error", err)
	}

	return &Response{
		ConversationID: conversationID,
		Message:        reply,
		Timestamp:      time.Now().UTC(),
	}, nil
}

func (s *Service) complete(ctx context.Context, history []openai.ChatCompletionMessage) (openai.ChatCompletionChoice, error) {
	ctx, span := chatTracer.Start(ctx, "chat.oracle")
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	started := time.Now()
	resp, err := s.oracle.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: history,
		Tools:    oracleTools(),
	})
	s.metrics.ObserveOracleLatency(s.model, time.Since(started).Seconds())
	if err != nil {
		span.RecordError(err)
		return openai.ChatCompletionChoice{}, fmt.Errorf("chat: oracle completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		err := fmt.Errorf("chat: oracle returned no choices")
		span.RecordError(err)
		return openai.ChatCompletionChoice{}, err
	}
	return resp.Choices[0], nil
}
