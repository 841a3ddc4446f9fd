package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ScoreVersion is one immutable entry in a lead's append-only score ledger.
// Versions per lead are a gap-free increasing sequence starting at 1.
// CallIDsSnapshot records every transcribed call id known at scoring time,
// not only the call the score was computed from.
type ScoreVersion struct {
	ID                 uuid.UUID   `json:"id"`
	LeadID             uuid.UUID   `json:"lead_id"`
	OfficerID          uuid.UUID   `json:"officer_id"`
	Score              float64     `json:"score"`
	Reason             string      `json:"reason"`
	Version            int         `json:"version"`
	TotalCallsAnalyzed int         `json:"total_calls_analyzed"`
	CallIDsSnapshot    []uuid.UUID `json:"call_ids_snapshot"`
	CreatedAt          time.Time   `json:"created_at"`
}

// AppendScore appends the next version for a lead. The version number is
// assigned inside the insert statement, so there is no read-then-write gap;
// the unique (lead_id, version) constraint turns a lost race into an error
// instead of a duplicate version.
func (s *Store) AppendScore(ctx context.Context, leadID, officerID uuid.UUID, score float64, reason string, callIDs []uuid.UUID) (*ScoreVersion, error) {
	v := &ScoreVersion{
		ID:                 uuid.New(),
		LeadID:             leadID,
		OfficerID:          officerID,
		Score:              score,
		Reason:             reason,
		TotalCallsAnalyzed: len(callIDs),
		CallIDsSnapshot:    callIDs,
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO lead_score_versions (
			id, lead_id, officer_id, score, reason, version,
			total_calls_analyzed, call_ids_snapshot, created_at
		)
		SELECT $1, $2, $3, $4, $5, COALESCE(MAX(version), 0) + 1, $6, $7, now()
		FROM lead_score_versions
		WHERE lead_id = $2
		RETURNING version, created_at`,
		v.ID, leadID, officerID, score, reason, len(callIDs), callIDs,
	).Scan(&v.Version, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append score: %w", err)
	}
	return v, nil
}

// LatestScore returns the max-version ledger entry for a lead, or ErrNotFound.
func (s *Store) LatestScore(ctx context.Context, leadID uuid.UUID) (*ScoreVersion, error) {
	row := s.pool.QueryRow(ctx, scoreSelect+`
		WHERE lead_id = $1
		ORDER BY version DESC
		LIMIT 1`,
		leadID,
	)
	v, err := scanScore(row)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ScoreHistory returns all ledger entries for a lead, newest version first.
func (s *Store) ScoreHistory(ctx context.Context, leadID uuid.UUID) ([]ScoreVersion, error) {
	rows, err := s.pool.Query(ctx, scoreSelect+`
		WHERE lead_id = $1
		ORDER BY version DESC`,
		leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("score history: %w", err)
	}
	defer rows.Close()

	var history []ScoreVersion
	for rows.Next() {
		v, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, *v)
	}
	return history, rows.Err()
}

const scoreSelect = `
	SELECT id, lead_id, officer_id, score, COALESCE(reason, ''), version,
	       total_calls_analyzed, call_ids_snapshot, created_at
	FROM lead_score_versions`

func scanScore(row pgx.Row) (*ScoreVersion, error) {
	var v ScoreVersion
	err := row.Scan(&v.ID, &v.LeadID, &v.OfficerID, &v.Score, &v.Reason,
		&v.Version, &v.TotalCallsAnalyzed, &v.CallIDsSnapshot, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan score version: %w", err)
	}
	return &v, nil
}
