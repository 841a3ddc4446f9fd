package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Lead is the aggregate root owning a call history and a score history. Its
// CRUD lifecycle lives elsewhere; this service only reads it.
type Lead struct {
	ID            uuid.UUID
	Name          string
	CreditScore   *int
	InterestLevel *int
	Status        string
	Source        string
	LeadType      string
	CreatedAt     time.Time
}

func (s *Store) GetLead(ctx context.Context, id uuid.UUID) (*Lead, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, credit_score, interest_level, COALESCE(status, ''),
		       COALESCE(source, ''), COALESCE(lead_type, ''), created_at
		FROM leads
		WHERE id = $1`,
		id,
	)

	var l Lead
	err := row.Scan(&l.ID, &l.Name, &l.CreditScore, &l.InterestLevel, &l.Status,
		&l.Source, &l.LeadType, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return &l, nil
}
