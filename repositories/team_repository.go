package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/freddywood17/team-racing-app/models"
)

var (
	ErrTeamNotFound = errors.New("team not found")

	// ErrTeamAlreadyFlagged is returned by MarkSubmitted when the flag was
	// already true: the conditional update closes the two-devices race at the
	// database instead of relying on the earlier read-check alone.
	ErrTeamAlreadyFlagged = errors.New("team already marked as submitted")
)

type TeamRepository interface {
	GetByID(ctx context.Context, competitionID, teamID string) (*models.Team, error)
	ListByCompetition(ctx context.Context, competitionID string) ([]*models.Team, error)
	// MarkSubmitted flips has_submitted false->true. The WHERE clause makes the
	// flip conditional, so a concurrent winner cannot be overwritten silently.
	MarkSubmitted(ctx context.Context, exec SQLExecutor, competitionID, teamID string) error
	// ResetAll clears every team's flag for the competition. Submission records
	// are untouched by design.
	ResetAll(ctx context.Context, competitionID string) (int64, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, competitionID, teamID string) (*models.Team, error) {
	query := `
		SELECT id, competition_id, name, has_submitted
		FROM teams
		WHERE competition_id = $1 AND id = $2`

	var team models.Team
	err := r.db.QueryRowContext(ctx, query, competitionID, teamID).
		Scan(&team.ID, &team.CompetitionID, &team.Name, &team.HasSubmitted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s/%s: %w", competitionID, teamID, err)
	}
	return &team, nil
}

func (r *postgresTeamRepository) ListByCompetition(ctx context.Context, competitionID string) ([]*models.Team, error) {
	query := `
		SELECT id, competition_id, name, has_submitted
		FROM teams
		WHERE competition_id = $1
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for competition %s: %w", competitionID, err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.CompetitionID, &team.Name, &team.HasSubmitted); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, &team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) MarkSubmitted(ctx context.Context, exec SQLExecutor, competitionID, teamID string) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE teams
		SET has_submitted = TRUE
		WHERE competition_id = $1 AND id = $2 AND has_submitted = FALSE`

	result, err := executor.ExecContext(ctx, query, competitionID, teamID)
	if err != nil {
		return fmt.Errorf("failed to mark team %s/%s submitted: %w", competitionID, teamID, err)
	}
	return checkAffectedRows(result, ErrTeamAlreadyFlagged)
}

func (r *postgresTeamRepository) ResetAll(ctx context.Context, competitionID string) (int64, error) {
	query := `UPDATE teams SET has_submitted = FALSE WHERE competition_id = $1`

	result, err := r.db.ExecContext(ctx, query, competitionID)
	if err != nil {
		return 0, fmt.Errorf("failed to reset teams for competition %s: %w", competitionID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return affected, nil
}
