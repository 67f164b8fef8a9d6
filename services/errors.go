package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации и бизнес-правил (отклонение до любых записей)
	ErrDeadlinePassed   = errors.New("submissions are closed for this competition")
	ErrAlreadySubmitted = errors.New("team has already entered their predictions")
	ErrNothingToSubmit  = errors.New("no predictions have been made yet")
	ErrNoTeamSelected   = errors.New("no team selected")
	ErrInvalidPick      = errors.New("pick winner must be one of the match sides")
	ErrInvalidWinner    = errors.New("result winner must be one of the match sides")

	// Ресурс не найден
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrSubmissionNotFound  = errors.New("submission not found")

	// Конфликты
	ErrResultAlreadyRecorded = errors.New("result already recorded for this match")

	// Ошибки аутентификации
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPersistenceFailure covers storage failures mid-pipeline, including the
	// dangling-submission window where the record landed but the flag flip did
	// not. The team can retry; a retry against durable state reports the truth.
	ErrPersistenceFailure = errors.New("failed to persist submission state")
)
