package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/freddywood17/team-racing-app/models"
	"github.com/lib/pq"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrSubmissionExists maps the (competition_id, team_id) primary key
	// violation: the second device in a double-submit race lands here.
	ErrSubmissionExists = errors.New("submission already exists for this team")

	// ErrSubmissionLocked is returned by Replace when the team's flag is
	// already set, so the existing record must not be overwritten.
	ErrSubmissionLocked = errors.New("submission is locked for this team")
)

type SubmissionRepository interface {
	// Create inserts the record. While a team's flag is set the record is
	// immutable; after a reset clears the flag, Replace re-opens it.
	Create(ctx context.Context, exec SQLExecutor, submission *models.Submission) error

	// Replace overwrites the record left over from before a reset. The update
	// is joined on the team's flag, so a record whose team is locked again
	// (a concurrent submit won) stays untouched and ErrSubmissionLocked is
	// returned instead.
	Replace(ctx context.Context, exec SQLExecutor, submission *models.Submission) error
	GetByTeam(ctx context.Context, competitionID, teamID string) (*models.Submission, error)
	ListByCompetition(ctx context.Context, competitionID string) ([]*models.Submission, error)
	CountByCompetition(ctx context.Context, competitionID string) (int, error)
}

type postgresSubmissionRepository struct {
	db *sql.DB
}

func NewPostgresSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &postgresSubmissionRepository{db: db}
}

func (r *postgresSubmissionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSubmissionRepository) Create(ctx context.Context, exec SQLExecutor, submission *models.Submission) error {
	executor := r.getExecutor(exec)

	picksJSON, err := json.Marshal(submission.Picks)
	if err != nil {
		return fmt.Errorf("failed to marshal picks: %w", err)
	}

	query := `
		INSERT INTO submissions (competition_id, team_id, team_name, submitted_at, picks)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = executor.ExecContext(ctx, query,
		submission.CompetitionID,
		submission.TeamID,
		submission.TeamName,
		submission.SubmittedAt,
		picksJSON,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return ErrSubmissionExists
		}
		return fmt.Errorf("failed to create submission for team %s: %w", submission.TeamID, err)
	}
	return nil
}

func (r *postgresSubmissionRepository) Replace(ctx context.Context, exec SQLExecutor, submission *models.Submission) error {
	executor := r.getExecutor(exec)

	picksJSON, err := json.Marshal(submission.Picks)
	if err != nil {
		return fmt.Errorf("failed to marshal picks: %w", err)
	}

	query := `
		UPDATE submissions s
		SET team_name = $3, submitted_at = $4, picks = $5
		FROM teams t
		WHERE s.competition_id = $1 AND s.team_id = $2
		  AND t.competition_id = s.competition_id AND t.id = s.team_id
		  AND t.has_submitted = FALSE`

	result, err := executor.ExecContext(ctx, query,
		submission.CompetitionID,
		submission.TeamID,
		submission.TeamName,
		submission.SubmittedAt,
		picksJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to replace submission for team %s: %w", submission.TeamID, err)
	}
	return checkAffectedRows(result, ErrSubmissionLocked)
}

func (r *postgresSubmissionRepository) GetByTeam(ctx context.Context, competitionID, teamID string) (*models.Submission, error) {
	query := `
		SELECT competition_id, team_id, team_name, submitted_at, picks
		FROM submissions
		WHERE competition_id = $1 AND team_id = $2`

	row := r.db.QueryRowContext(ctx, query, competitionID, teamID)
	sub, err := scanSubmission(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission %s/%s: %w", competitionID, teamID, err)
	}
	return sub, nil
}

func (r *postgresSubmissionRepository) ListByCompetition(ctx context.Context, competitionID string) ([]*models.Submission, error) {
	query := `
		SELECT competition_id, team_id, team_name, submitted_at, picks
		FROM submissions
		WHERE competition_id = $1
		ORDER BY team_id`

	rows, err := r.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions for competition %s: %w", competitionID, err)
	}
	defer rows.Close()

	var subs []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission rows: %w", err)
	}
	return subs, nil
}

func (r *postgresSubmissionRepository) CountByCompetition(ctx context.Context, competitionID string) (int, error) {
	query := `SELECT COUNT(*) FROM submissions WHERE competition_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, competitionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count submissions for competition %s: %w", competitionID, err)
	}
	return count, nil
}

func scanSubmission(scan func(dest ...interface{}) error) (*models.Submission, error) {
	var sub models.Submission
	var picksJSON []byte

	if err := scan(&sub.CompetitionID, &sub.TeamID, &sub.TeamName, &sub.SubmittedAt, &picksJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(picksJSON, &sub.Picks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal picks: %w", err)
	}
	return &sub, nil
}
