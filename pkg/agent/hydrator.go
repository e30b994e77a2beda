package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/nadia/taskwise/internal/observability"
	"github.com/nadia/taskwise/internal/store"
	"github.com/rs/zerolog"
)

// hydrator resolves the target conversation and rebuilds the model
// context from persisted history.
type hydrator struct {
	conversations *store.ConversationStore
	messages      *store.MessageStore
	window        int
	logger        zerolog.Logger
}

// hydrate returns the conversation to use for this turn and its recent
// history as model messages, oldest first, with the system directive
// prepended. A missing conversation id yields a fresh conversation
// rather than an error so a stale client reference degrades to a new
// thread instead of a failed turn.
func (h *hydrator) hydrate(ctx context.Context, userID, conversationID, systemPrompt string) (*store.Conversation, []Message, error) {
	start := time.Now()

	conv, err := h.resolveConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, nil, err
	}

	stored, err := h.messages.RecentHistory(ctx, conv.ID, h.window)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load history: %w", err)
	}

	messages := make([]Message, 0, len(stored)+1)
	if systemPrompt != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: systemPrompt})
	}
	for _, m := range stored {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}

	observability.RecordHistoryLoad(time.Since(start))

	return conv, messages, nil
}

func (h *hydrator) resolveConversation(ctx context.Context, userID, conversationID string) (*store.Conversation, error) {
	if conversationID == "" {
		conv, err := h.conversations.Create(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		return conv, nil
	}

	conv, err := h.conversations.GetByID(ctx, conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up conversation: %w", err)
	}
	if conv != nil {
		return conv, nil
	}

	// Unknown or foreign id. Start over with a fresh conversation for
	// this user.
	h.logger.Warn().
		Str("conversation_id", conversationID).
		Msg("Conversation not found, creating a new one")

	conv, err = h.conversations.Create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}
