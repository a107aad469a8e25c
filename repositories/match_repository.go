package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mcoleague/match-center/models"
)

var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchVersionConflict = errors.New("match was modified concurrently")
	ErrMatchClubInvalid     = errors.New("match club conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByClub(ctx context.Context, clubID int, states []models.MatchState) ([]*models.Match, error)
	ListDeadlineExpired(ctx context.Context, exec SQLExecutor, states []models.MatchState) ([]*models.Match, error)
	// UpdateStateCAS persists state, scheduled_at, scores and the
	// registering club as one atomic write guarded by the version
	// column. On success match.Version is advanced; a lost race
	// returns ErrMatchVersionConflict and leaves the row untouched.
	UpdateStateCAS(ctx context.Context, exec SQLExecutor, match *models.Match, expectedVersion int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, home_club_id, away_club_id, state, scheduled_at,
	home_score, away_score, score_registered_by, deadline, version, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(home_club_id, away_club_id, state, scheduled_at, home_score,
			 away_score, score_registered_by, deadline, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
		RETURNING id, version, created_at`

	err := exec.QueryRowContext(ctx, query,
		match.HomeClubID,
		match.AwayClubID,
		match.State,
		match.ScheduledAt,
		match.HomeScore,
		match.AwayScore,
		match.ScoreRegisteredBy,
		match.Deadline,
	).Scan(&match.ID, &match.Version, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByClub(ctx context.Context, clubID int, states []models.MatchState) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + `
		FROM matches
		WHERE (home_club_id = $1 OR away_club_id = $1)`)

	args := []interface{}{clubID}
	if len(states) > 0 {
		stateStrings := make([]string, len(states))
		for i, s := range states {
			stateStrings[i] = string(s)
		}
		queryBuilder.WriteString(" AND state = ANY($")
		queryBuilder.WriteString(strconv.Itoa(len(args) + 1))
		queryBuilder.WriteString(")")
		args = append(args, pq.Array(stateStrings))
	}
	// Stable order so the "active match" classification is deterministic.
	queryBuilder.WriteString(" ORDER BY deadline ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for club %d: %w", clubID, err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) ListDeadlineExpired(ctx context.Context, exec SQLExecutor, states []models.MatchState) ([]*models.Match, error) {
	stateStrings := make([]string, len(states))
	for i, s := range states {
		stateStrings[i] = string(s)
	}
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE deadline < NOW() AND state = ANY($1)
		ORDER BY deadline ASC, id ASC`

	rows, err := exec.QueryContext(ctx, query, pq.Array(stateStrings))
	if err != nil {
		return nil, fmt.Errorf("failed to query deadline-expired matches: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

func (r *postgresMatchRepository) UpdateStateCAS(ctx context.Context, exec SQLExecutor, match *models.Match, expectedVersion int) error {
	query := `
		UPDATE matches
		SET state = $1, scheduled_at = $2, home_score = $3, away_score = $4,
		    score_registered_by = $5, version = version + 1
		WHERE id = $6 AND version = $7`

	result, err := exec.ExecContext(ctx, query,
		match.State,
		match.ScheduledAt,
		match.HomeScore,
		match.AwayScore,
		match.ScoreRegisteredBy,
		match.ID,
		expectedVersion,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	if err := checkAffectedRows(result, ErrMatchVersionConflict); err != nil {
		return err
	}
	match.Version = expectedVersion + 1
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	var rawState string
	err := row.Scan(
		&match.ID,
		&match.HomeClubID,
		&match.AwayClubID,
		&rawState,
		&match.ScheduledAt,
		&match.HomeScore,
		&match.AwayScore,
		&match.ScoreRegisteredBy,
		&match.Deadline,
		&match.Version,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	state, err := models.ParseMatchState(rawState)
	if err != nil {
		return nil, fmt.Errorf("match %d: %w", match.ID, err)
	}
	match.State = state
	return match, nil
}

func collectMatches(rows *sql.Rows) ([]*models.Match, error) {
	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "matches_home_club_id_fkey", "matches_away_club_id_fkey",
			"matches_score_registered_by_fkey":
			return ErrMatchClubInvalid
		}
	}
	return err
}
