package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mcoleague/match-center/models"
)

var (
	ErrPerformanceMatchInvalid  = errors.New("performance entry match conflict or invalid")
	ErrPerformancePlayerInvalid = errors.New("performance entry player conflict or invalid")
)

type PerformanceRepository interface {
	// ReplaceForMatch swaps the full entry set of a match inside the
	// caller's transaction, so a score confirmation is all-or-nothing.
	ReplaceForMatch(ctx context.Context, exec SQLExecutor, matchID int, entries []models.PerformanceEntry) error
	ListByMatch(ctx context.Context, matchID int) ([]models.PerformanceEntry, error)
}

type postgresPerformanceRepository struct {
	db *sql.DB
}

func NewPostgresPerformanceRepository(db *sql.DB) PerformanceRepository {
	return &postgresPerformanceRepository{db: db}
}

func (r *postgresPerformanceRepository) ReplaceForMatch(ctx context.Context, exec SQLExecutor, matchID int, entries []models.PerformanceEntry) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM performance_entries WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("failed to clear performance entries for match %d: %w", matchID, err)
	}

	query := `
		INSERT INTO performance_entries
			(match_id, side, player_id, player_name, rating, goals, assists)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	for i := range entries {
		entry := &entries[i]
		err := exec.QueryRowContext(ctx, query,
			matchID,
			entry.Side,
			entry.PlayerID,
			entry.PlayerName,
			entry.Rating,
			entry.Goals,
			entry.Assists,
		).Scan(&entry.ID)
		if err != nil {
			return r.handlePerformanceError(err)
		}
		entry.MatchID = matchID
	}
	return nil
}

func (r *postgresPerformanceRepository) ListByMatch(ctx context.Context, matchID int) ([]models.PerformanceEntry, error) {
	query := `
		SELECT id, match_id, side, player_id, player_name, rating, goals, assists
		FROM performance_entries
		WHERE match_id = $1
		ORDER BY side ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance entries for match %d: %w", matchID, err)
	}
	defer rows.Close()

	entries := make([]models.PerformanceEntry, 0)
	for rows.Next() {
		var entry models.PerformanceEntry
		var rawSide string
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.MatchID,
			&rawSide,
			&entry.PlayerID,
			&entry.PlayerName,
			&entry.Rating,
			&entry.Goals,
			&entry.Assists,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan performance row: %w", scanErr)
		}
		side, parseErr := models.ParseSide(rawSide)
		if parseErr != nil {
			return nil, fmt.Errorf("performance entry %d: %w", entry.ID, parseErr)
		}
		entry.Side = side
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during performance rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresPerformanceRepository) handlePerformanceError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "performance_entries_match_id_fkey":
			return ErrPerformanceMatchInvalid
		case "performance_entries_player_id_fkey":
			return ErrPerformancePlayerInvalid
		}
	}
	return err
}
