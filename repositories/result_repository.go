package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/freddywood17/team-racing-app/models"
	"github.com/lib/pq"
)

// ErrResultExists: results are append-only, there is no correction path.
var ErrResultExists = errors.New("result already recorded for this match")

type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
	// Snapshot returns the full results state for the competition. Consumers
	// always recompute from this complete snapshot, never from deltas.
	Snapshot(ctx context.Context, competitionID string) (models.ResultSet, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) Create(ctx context.Context, result *models.Result) error {
	query := `
		INSERT INTO results (competition_id, match_id, winner)
		VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, result.CompetitionID, result.MatchID, result.Winner)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return ErrResultExists
		}
		return fmt.Errorf("failed to record result for match %s: %w", result.MatchID, err)
	}
	return nil
}

func (r *postgresResultRepository) Snapshot(ctx context.Context, competitionID string) (models.ResultSet, error) {
	query := `SELECT match_id, winner FROM results WHERE competition_id = $1`

	rows, err := r.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results for competition %s: %w", competitionID, err)
	}
	defer rows.Close()

	snapshot := make(models.ResultSet)
	for rows.Next() {
		var matchID, winner string
		if err := rows.Scan(&matchID, &winner); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		snapshot[matchID] = winner
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return snapshot, nil
}
