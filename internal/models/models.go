package models

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Match sources
const (
	SourceSimulated = "simulated"
	SourceImported  = "imported"
)

// Match is an archived event log plus the summary derived from it.
type Match struct {
	ID         string         `db:"id" json:"id"`
	Seed       sql.NullInt64  `db:"seed" json:"-"`
	Source     string         `db:"source" json:"source"`
	LeftScore  int            `db:"left_score" json:"left_score"`
	RightScore int            `db:"right_score" json:"right_score"`
	Winner     sql.NullString `db:"winner" json:"-"`
	TickCount  int            `db:"tick_count" json:"tick_count"`
	EventCount int            `db:"event_count" json:"event_count"`
	Events     types.JSONText `db:"events" json:"events,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// MatchView is the JSON shape of a match with nullable columns flattened.
type MatchView struct {
	ID         string         `json:"id"`
	Seed       *int64         `json:"seed,omitempty"`
	Source     string         `json:"source"`
	LeftScore  int            `json:"left_score"`
	RightScore int            `json:"right_score"`
	Winner     string         `json:"winner,omitempty"`
	TickCount  int            `json:"tick_count"`
	EventCount int            `json:"event_count"`
	Events     types.JSONText `json:"events,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// View flattens the nullable columns for API responses.
func (m Match) View() MatchView {
	v := MatchView{
		ID:         m.ID,
		Source:     m.Source,
		LeftScore:  m.LeftScore,
		RightScore: m.RightScore,
		TickCount:  m.TickCount,
		EventCount: m.EventCount,
		Events:     m.Events,
		CreatedAt:  m.CreatedAt,
	}
	if m.Seed.Valid {
		seed := m.Seed.Int64
		v.Seed = &seed
	}
	if m.Winner.Valid {
		v.Winner = m.Winner.String
	}
	return v
}

// Verification is the outcome of replaying an archived match against its log.
type Verification struct {
	MatchID       string    `db:"match_id" json:"match_id"`
	OriginalCount int       `db:"original_count" json:"original_count"`
	ReplayCount   int       `db:"replay_count" json:"replay_count"`
	MatchingCount int       `db:"matching_count" json:"matching_count"`
	Identical     bool      `db:"identical" json:"identical"`
	VerifiedAt    time.Time `db:"verified_at" json:"verified_at"`
}
