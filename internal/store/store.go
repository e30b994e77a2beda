// Package store provides sqlite-backed persistence for conversations,
// messages and tasks. All reads and writes are scoped by the owning user.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the per-entity
// stores can run inside or outside a unit of work.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store owns the database connection.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", path).Msg("Store opened")

	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_conversations_user
			ON conversations(user_id, updated_at DESC);

		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL
				REFERENCES conversations(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			tool_calls TEXT,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_messages_conversation
			ON messages(conversation_id);

		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id);
	`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Conversations returns a conversation store running outside any transaction.
func (s *Store) Conversations() *ConversationStore {
	return &ConversationStore{q: s.db}
}

// Messages returns a message store running outside any transaction.
func (s *Store) Messages() *MessageStore {
	return &MessageStore{q: s.db}
}

// Tasks returns a task store running outside any transaction.
func (s *Store) Tasks() *TaskStore {
	return &TaskStore{q: s.db}
}

// UnitOfWork scopes a set of writes to a single transaction.
type UnitOfWork struct {
	tx *sql.Tx
}

// Conversations returns a conversation store bound to the transaction.
func (u *UnitOfWork) Conversations() *ConversationStore {
	return &ConversationStore{q: u.tx}
}

// Messages returns a message store bound to the transaction.
func (u *UnitOfWork) Messages() *MessageStore {
	return &MessageStore{q: u.tx}
}

// Tasks returns a task store bound to the transaction.
func (u *UnitOfWork) Tasks() *TaskStore {
	return &TaskStore{q: u.tx}
}

// WithTx runs fn inside a transaction. A nil error commits, anything
// else rolls the whole unit back.
func (s *Store) WithTx(ctx context.Context, fn func(uow *UnitOfWork) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&UnitOfWork{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("Rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
