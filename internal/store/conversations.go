package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Conversation groups the messages of one chat thread. Every
// conversation belongs to exactly one user.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationStore manages conversation persistence.
type ConversationStore struct {
	q querier
}

// Create creates a new conversation for the user.
func (cs *ConversationStore) Create(ctx context.Context, userID string) (*Conversation, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id cannot be empty")
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate conversation id: %w", err)
	}

	now := time.Now().UTC()
	conv := &Conversation{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = cs.q.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, conv.ID, conv.UserID, formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}

	return conv, nil
}

// GetByID returns the conversation if it exists and belongs to the user,
// nil otherwise. The user filter is the cross-user isolation boundary.
func (cs *ConversationStore) GetByID(ctx context.Context, id, userID string) (*Conversation, error) {
	var conv Conversation
	var createdAt, updatedAt string

	err := cs.q.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, updated_at
		FROM conversations
		WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&conv.ID, &conv.UserID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select conversation: %w", err)
	}

	conv.CreatedAt = parseTime(createdAt)
	conv.UpdatedAt = parseTime(updatedAt)
	return &conv, nil
}

// ListByUser lists the user's conversations, most recently active first.
func (cs *ConversationStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Conversation, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := cs.q.QueryContext(ctx, `
		SELECT id, user_id, created_at, updated_at
		FROM conversations
		WHERE user_id = ?
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select conversations: %w", err)
	}
	defer rows.Close()

	var convs []Conversation
	for rows.Next() {
		var conv Conversation
		var createdAt, updatedAt string
		if err := rows.Scan(&conv.ID, &conv.UserID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		conv.CreatedAt = parseTime(createdAt)
		conv.UpdatedAt = parseTime(updatedAt)
		convs = append(convs, conv)
	}

	return convs, rows.Err()
}

// Touch bumps the conversation's updated_at to now.
func (cs *ConversationStore) Touch(ctx context.Context, id string) error {
	_, err := cs.q.ExecContext(ctx, `
		UPDATE conversations SET updated_at = ? WHERE id = ?
	`, formatTime(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

// Delete removes the conversation and its messages if owned by the user.
func (cs *ConversationStore) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := cs.q.ExecContext(ctx, `
		DELETE FROM conversations WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete conversation: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteIdleSince removes conversations whose last activity predates the
// cutoff, returning how many were pruned. Messages cascade.
func (cs *ConversationStore) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := cs.q.ExecContext(ctx, `
		DELETE FROM conversations WHERE updated_at < ?
	`, formatTime(cutoff.UTC()))
	if err != nil {
		return 0, fmt.Errorf("prune conversations: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the total conversation count.
func (cs *ConversationStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := cs.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count conversations: %w", err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
