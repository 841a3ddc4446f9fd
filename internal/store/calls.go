package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Call is one recorded conversation with a lead. Immutable once the
// transcript is set; Transcript is empty when no transcription exists.
type Call struct {
	ID              uuid.UUID
	LeadID          uuid.UUID
	OfficerID       uuid.UUID
	CallDate        time.Time
	DurationMinutes int
	Transcript      string
}

// HasTranscript reports whether the call carries a usable transcript.
func (c *Call) HasTranscript() bool {
	return c.Transcript != ""
}

// CallsByLead returns all calls for a lead, oldest first.
func (s *Store) CallsByLead(ctx context.Context, leadID uuid.UUID) ([]Call, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, lead_id, officer_id, call_date, COALESCE(duration_minutes, 0),
		       COALESCE(transcription, '')
		FROM calls
		WHERE lead_id = $1
		ORDER BY call_date ASC`,
		leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("calls by lead: %w", err)
	}
	defer rows.Close()

	var calls []Call
	for rows.Next() {
		var c Call
		if err := rows.Scan(&c.ID, &c.LeadID, &c.OfficerID, &c.CallDate,
			&c.DurationMinutes, &c.Transcript); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

// LatestTranscribedCall returns the most recently dated call with a
// transcript, or ErrNotFound when the lead has none.
func (s *Store) LatestTranscribedCall(ctx context.Context, leadID uuid.UUID) (*Call, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, lead_id, officer_id, call_date, COALESCE(duration_minutes, 0), transcription
		FROM calls
		WHERE lead_id = $1 AND transcription IS NOT NULL AND transcription <> ''
		ORDER BY call_date DESC
		LIMIT 1`,
		leadID,
	)

	var c Call
	err := row.Scan(&c.ID, &c.LeadID, &c.OfficerID, &c.CallDate, &c.DurationMinutes, &c.Transcript)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest transcribed call: %w", err)
	}
	return &c, nil
}
