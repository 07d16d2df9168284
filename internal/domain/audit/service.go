// Package audit keeps an append-only log of query requests: which model
// was invoked, which path served it, how long it took and what it cost.
// Rows are never updated or deleted.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/codevakure/bedrock-api-code/internal/domain/generation"
	"github.com/codevakure/bedrock-api-code/pkg/uuid"
)

// Entry is one recorded query.
type Entry struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	ModelARN    string    `json:"model_arn"`
	PathKind    string    `json:"path_kind"`
	PromptChars int       `json:"prompt_chars"`
	DurationMS  int64     `json:"duration_ms"`
	TotalCost   string    `json:"total_cost"`
	ErrorText   string    `json:"error_text,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Service writes and reads the query log. It satisfies the generation
// engine's recorder dependency.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// RecordQuery appends one row. Failures surface to the caller, which
// treats recording as best-effort.
func (s *Service) RecordQuery(ctx context.Context, rec generation.QueryRecord) error {
	var errText any
	if rec.ErrorText != "" {
		errText = rec.ErrorText
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO query_log (id, client_id, model_arn, path_kind, prompt_chars, duration_ms, total_cost, error_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewV7().String(), rec.ClientID, rec.ModelARN, rec.PathKind, rec.PromptChars,
		rec.DurationMS, rec.TotalCost, errText, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("audit: record query: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, model_arn, path_kind, prompt_chars, duration_ms, total_cost, error_text, created_at
		FROM query_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			errText   sql.NullString
			createdAt string
		)
		if scanErr := rows.Scan(&e.ID, &e.ClientID, &e.ModelARN, &e.PathKind, &e.PromptChars,
			&e.DurationMS, &e.TotalCost, &errText, &createdAt); scanErr != nil {
			return nil, fmt.Errorf("audit: scan entry: %w", scanErr)
		}
		e.ErrorText = errText.String
		if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
