package ticket

import (
	"context"
	"database/sql"
	"fmt"

	"tagdesk/internal/models"
)

// Store persists materialized tickets.
type Store interface {
	Insert(ctx context.Context, t *Ticket) error
	ListBySession(ctx context.Context, sessionID string) ([]*Ticket, error)
}

// PostgresStore writes tickets to the tickets table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, t *Ticket) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tickets (id, session_id, client, platform_id, platform_name, tag_type, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.SessionID, t.Client, t.PlatformID, t.PlatformName, string(t.TagType), string(t.Priority), t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySession(ctx context.Context, sessionID string) ([]*Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, client, platform_id, platform_name, tag_type, priority, created_at
		FROM tickets
		WHERE session_id = $1
		ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	var out []*Ticket
	for rows.Next() {
		var t Ticket
		var tagType, priority string
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Client, &t.PlatformID, &t.PlatformName, &tagType, &priority, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		t.TagType = models.TagType(tagType)
		t.Priority = models.Priority(priority)
		out = append(out, &t)
	}
	return out, rows.Err()
}
