package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message roles. System messages are synthesized at hydration time and
// never stored.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one persisted conversation turn entry. ToolCalls holds the
// serialized tool-call records of an assistant message, null when the
// turn involved no tools.
type Message struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	Role           string          `json:"role"`
	Content        string          `json:"content"`
	ToolCalls      json.RawMessage `json:"tool_calls,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// MessageStore manages message persistence.
type MessageStore struct {
	q querier
}

// Append adds a message to a conversation. Insertion order is the
// canonical message order within a conversation.
func (ms *MessageStore) Append(ctx context.Context, conversationID, role, content string, toolCalls json.RawMessage) (*Message, error) {
	if role != RoleUser && role != RoleAssistant {
		return nil, fmt.Errorf("invalid message role: %s", role)
	}

	msg := &Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		ToolCalls:      toolCalls,
		CreatedAt:      time.Now().UTC(),
	}

	var calls interface{}
	if len(toolCalls) > 0 {
		calls = string(toolCalls)
	}

	_, err := ms.q.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, tool_calls, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.ConversationID, msg.Role, msg.Content, calls, formatTime(msg.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	return msg, nil
}

// RecentHistory returns the most recent limit messages of a conversation
// in chronological order.
func (ms *MessageStore) RecentHistory(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	// Newest first by insertion order, then reversed below.
	rows, err := ms.q.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, tool_calls, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY rowid DESC
		LIMIT ?
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Restore chronological order
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	return msgs, nil
}

// CountByConversation returns the number of messages in a conversation.
func (ms *MessageStore) CountByConversation(ctx context.Context, conversationID string) (int, error) {
	var n int
	err := ms.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE conversation_id = ?
	`, conversationID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

func scanMessage(rows *sql.Rows) (*Message, error) {
	var msg Message
	var calls sql.NullString
	var createdAt string

	if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &calls, &createdAt); err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}

	if calls.Valid {
		msg.ToolCalls = json.RawMessage(calls.String)
	}
	msg.CreatedAt = parseTime(createdAt)

	return &msg, nil
}
