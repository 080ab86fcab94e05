// Package history records chat exchanges for later review.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
	"github.com/uptrace/bun"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

var ErrDisabled = errors.New("conversation history is disabled")

type Entry struct {
	bun.BaseModel `bun:"table:conversation_history,alias:ch"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	SessionID  string    `bun:"session_id,notnull" json:"session_id"`
	Message    string    `bun:"message,notnull" json:"message"`
	Response   string    `bun:"response,notnull" json:"response"`
	Capability string    `bun:"capability,notnull" json:"capability"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"created_at"`
}

type Store interface {
	Save(ctx context.Context, entry *Entry) error
	List(ctx context.Context, sessionID string, limit int) ([]Entry, error)
}

var _ Store = (*BunStore)(nil)

type BunStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewBunStore(db *bun.DB) (*BunStore, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: bun db is required", contractx.ErrValidation)
	}
	return &BunStore{db: db, now: time.Now}, nil
}

// Init creates the history table and its session index when missing.
func (s *BunStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*Entry)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create conversation_history table: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*Entry)(nil)).
		Index("conversation_history_session_idx").
		Column("session_id", "created_at").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create conversation_history index: %w", err)
	}
	return nil
}

func (s *BunStore) Save(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: history entry is nil", contractx.ErrValidation)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	} else {
		entry.CreatedAt = entry.CreatedAt.UTC()
	}
	entry.SessionID = strings.TrimSpace(entry.SessionID)

	if _, err := s.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("insert conversation history: %w", err)
	}
	return nil
}

// List returns the newest entries first. An empty session id lists every session.
func (s *BunStore) List(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	limit = ClampLimit(limit)

	entries := make([]Entry, 0, limit)
	q := s.db.NewSelect().
		Model(&entries).
		OrderExpr("created_at DESC, id DESC").
		Limit(limit)
	if sessionID = strings.TrimSpace(sessionID); sessionID != "" {
		q = q.Where("session_id = ?", sessionID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list conversation history: %w", err)
	}
	return entries, nil
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
