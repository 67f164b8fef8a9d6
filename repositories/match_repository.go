package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/freddywood17/team-racing-app/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	// ListByCompetition returns the catalog in its fixed display order.
	ListByCompetition(ctx context.Context, competitionID string) ([]*models.Match, error)
	GetByID(ctx context.Context, competitionID, matchID string) (*models.Match, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) ListByCompetition(ctx context.Context, competitionID string) ([]*models.Match, error) {
	query := `
		SELECT id, competition_id, side_a, side_b, position
		FROM matches
		WHERE competition_id = $1
		ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for competition %s: %w", competitionID, err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.ID, &m.CompetitionID, &m.SideA, &m.SideB, &m.Position); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, competitionID, matchID string) (*models.Match, error) {
	query := `
		SELECT id, competition_id, side_a, side_b, position
		FROM matches
		WHERE competition_id = $1 AND id = $2`

	var m models.Match
	err := r.db.QueryRowContext(ctx, query, competitionID, matchID).
		Scan(&m.ID, &m.CompetitionID, &m.SideA, &m.SideB, &m.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s/%s: %w", competitionID, matchID, err)
	}
	return &m, nil
}
