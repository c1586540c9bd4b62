package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/pong/internal/models"
)

var (
	// ErrMatchNotFound is returned for an unknown match id.
	ErrMatchNotFound = errors.New("match not found")
	// ErrInvalidMatchID is returned for ids that are not UUIDs.
	ErrInvalidMatchID = errors.New("invalid match id")
)

// Store persists archived matches.
type Store interface {
	SaveMatch(ctx context.Context, m *models.Match) error
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	ListMatches(ctx context.Context, limit, offset int) ([]models.Match, error)
	DeleteMatch(ctx context.Context, id string) error
	SaveVerification(ctx context.Context, v *models.Verification) error
}

// PostgresStore keeps matches in the matches table, events as JSONB.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SaveMatch(ctx context.Context, m *models.Match) error {
	row := s.db.QueryRowxContext(ctx, `
		INSERT INTO matches (id, seed, source, left_score, right_score, winner, tick_count, event_count, events, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`, m.ID, m.Seed, m.Source, m.LeftScore, m.RightScore, m.Winner, m.TickCount, m.EventCount, m.Events)
	if err := row.Scan(&m.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert match %s: %w", m.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	var m models.Match
	err := s.db.GetContext(ctx, &m, `
		SELECT id, seed, source, left_score, right_score, winner, tick_count, event_count, events, created_at
		FROM matches WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %s: %w", id, err)
	}
	return &m, nil
}

// ListMatches returns summaries, newest first, without their events.
func (s *PostgresStore) ListMatches(ctx context.Context, limit, offset int) ([]models.Match, error) {
	matches := []models.Match{}
	err := s.db.SelectContext(ctx, &matches, `
		SELECT id, seed, source, left_score, right_score, winner, tick_count, event_count, created_at
		FROM matches
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *PostgresStore) DeleteMatch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrMatchNotFound
	}
	return nil
}

func (s *PostgresStore) SaveVerification(ctx context.Context, v *models.Verification) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO match_verifications (match_id, original_count, replay_count, matching_count, identical, verified_at)
		VALUES (:match_id, :original_count, :replay_count, :matching_count, :identical, :verified_at)
		ON CONFLICT (match_id) DO UPDATE SET
			original_count = EXCLUDED.original_count,
			replay_count = EXCLUDED.replay_count,
			matching_count = EXCLUDED.matching_count,
			identical = EXCLUDED.identical,
			verified_at = EXCLUDED.verified_at
	`, v)
	if err != nil {
		return fmt.Errorf("failed to store verification for %s: %w", v.MatchID, err)
	}
	return nil
}
