package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nadia/taskwise/internal/config"
	"github.com/nadia/taskwise/internal/observability"
	"github.com/nadia/taskwise/internal/store"
	"github.com/nadia/taskwise/pkg/tools"
	"github.com/rs/zerolog"
)

// failureResponse is the user-facing text for turns that hit an
// internal error. Details stay in the logs.
const failureResponse = "Something went wrong. Please try again."

// defaultSystemPrompt is used when no system prompt is configured.
const defaultSystemPrompt = "You are a helpful assistant that manages the user's task list. " +
	"Use the available tools to create, update, complete and remove tasks when the user asks for it. " +
	"Answer briefly and confirm what you did."

const defaultHistoryWindow = 50

// Session orchestrates conversational turns: it hydrates context,
// drives the model/tool loop and persists the outcome.
type Session struct {
	store        *store.Store
	registry     *tools.Registry
	provider     ModelProvider
	model        config.ModelConfig
	window       int
	systemPrompt string
	logger       zerolog.Logger
}

// Config holds session configuration
type Config struct {
	Store         *store.Store
	Registry      *tools.Registry
	Provider      ModelProvider // optional, built from Model when nil
	Model         config.ModelConfig
	HistoryWindow int
	SystemPrompt  string
	Logger        zerolog.Logger
}

// NewSession creates a new session orchestrator
func NewSession(cfg Config) (*Session, error) {
	observability.EnsureRegistered()

	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}

	provider := cfg.Provider
	if provider == nil {
		var err error
		provider, err = NewProvider(cfg.Model)
		if err != nil {
			return nil, err
		}
	}

	window := cfg.HistoryWindow
	if window <= 0 {
		window = defaultHistoryWindow
	}

	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	return &Session{
		store:        cfg.Store,
		registry:     cfg.Registry,
		provider:     provider,
		model:        cfg.Model,
		window:       window,
		systemPrompt: systemPrompt,
		logger:       cfg.Logger,
	}, nil
}

// Execute runs one conversational turn for the given user. It never
// returns an error: any internal failure is contained, logged and
// reported through Result.Failed with a generic response text. The
// user's message is committed before the model is invoked, so it
// survives a failing turn; tool side effects commit independently and
// are not rolled back either.
func (s *Session) Execute(ctx context.Context, userID, userMessage, conversationID string) Result {
	start := time.Now()
	logger := s.logger.With().Str("user_id", userID).Logger()

	if userID == "" || strings.TrimSpace(userMessage) == "" {
		logger.Error().Msg("Rejecting turn with empty user id or message")
		observability.RecordTurn(s.provider.Provider(), time.Since(start), false)
		return Result{ConversationID: conversationID, Response: failureResponse, Failed: true}
	}

	// Hydrate context and commit the user's message in one unit.
	var conv *store.Conversation
	var history []Message

	err := s.store.WithTx(ctx, func(uow *store.UnitOfWork) error {
		h := &hydrator{
			conversations: uow.Conversations(),
			messages:      uow.Messages(),
			window:        s.window,
			logger:        logger,
		}

		var err error
		conv, history, err = h.hydrate(ctx, userID, conversationID, s.systemPrompt)
		if err != nil {
			return err
		}

		if _, err := uow.Messages().Append(ctx, conv.ID, store.RoleUser, userMessage, nil); err != nil {
			return fmt.Errorf("failed to persist user message: %w", err)
		}
		return uow.Conversations().Touch(ctx, conv.ID)
	})
	if err != nil {
		logger.Error().Err(err).Msg("Turn setup failed")
		observability.RecordTurn(s.provider.Provider(), time.Since(start), false)
		return Result{ConversationID: conversationID, Response: failureResponse, Failed: true}
	}

	logger = logger.With().Str("conversation_id", conv.ID).Logger()

	messages := append(history, Message{Role: RoleUser, Content: userMessage})

	loop := &invocationLoop{
		provider: s.provider,
		registry: s.registry,
		model:    s.model,
		logger:   logger,
	}
	disp := &dispatcher{registry: s.registry, userID: userID, logger: logger}

	failed := false
	response, records, usage, err := loop.run(ctx, messages, disp)
	if err != nil {
		// The user's message is already durable; record the failed
		// turn and answer with the generic text.
		logger.Error().Err(err).Msg("Model invocation failed")
		failed = true
		response = failureResponse
	}

	if err := s.persistAssistantTurn(ctx, conv.ID, response, records); err != nil {
		logger.Error().Err(err).Msg("Failed to persist assistant message")
		failed = true
		response = failureResponse
	}

	observability.RecordTurn(s.provider.Provider(), time.Since(start), !failed)

	logger.Info().
		Int("tool_calls", len(records)).
		Bool("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Turn completed")

	return Result{
		ConversationID: conv.ID,
		Response:       response,
		ToolCalls:      records,
		Usage:          usage,
		Failed:         failed,
	}
}

// persistAssistantTurn writes the assistant message with its tool call
// trace and bumps the conversation in one unit.
func (s *Session) persistAssistantTurn(ctx context.Context, conversationID, response string, records []ToolCallRecord) error {
	start := time.Now()

	var raw json.RawMessage
	if len(records) > 0 {
		data, err := json.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to encode tool call records: %w", err)
		}
		raw = data
	}

	err := s.store.WithTx(ctx, func(uow *store.UnitOfWork) error {
		if _, err := uow.Messages().Append(ctx, conversationID, store.RoleAssistant, response, raw); err != nil {
			return err
		}
		return uow.Conversations().Touch(ctx, conversationID)
	})
	if err != nil {
		return err
	}

	observability.RecordMessageSave(time.Since(start))
	return nil
}
