package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/freddywood17/team-racing-app/models"
)

var ErrCompetitionNotFound = errors.New("competition not found")

type CompetitionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Competition, error)
	ListAll(ctx context.Context) ([]*models.Competition, error)
}

type postgresCompetitionRepository struct {
	db *sql.DB
}

func NewPostgresCompetitionRepository(db *sql.DB) CompetitionRepository {
	return &postgresCompetitionRepository{db: db}
}

func (r *postgresCompetitionRepository) GetByID(ctx context.Context, id string) (*models.Competition, error) {
	query := `SELECT id, name, deadline FROM competitions WHERE id = $1`

	var comp models.Competition
	err := r.db.QueryRowContext(ctx, query, id).Scan(&comp.ID, &comp.Name, &comp.Deadline)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("failed to get competition %s: %w", id, err)
	}
	return &comp, nil
}

func (r *postgresCompetitionRepository) ListAll(ctx context.Context) ([]*models.Competition, error) {
	query := `SELECT id, name, deadline FROM competitions ORDER BY deadline`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	defer rows.Close()

	var comps []*models.Competition
	for rows.Next() {
		var comp models.Competition
		if err := rows.Scan(&comp.ID, &comp.Name, &comp.Deadline); err != nil {
			return nil, fmt.Errorf("failed to scan competition row: %w", err)
		}
		comps = append(comps, &comp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating competition rows: %w", err)
	}
	return comps, nil
}
