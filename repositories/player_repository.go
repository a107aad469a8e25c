package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mcoleague/match-center/models"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	ListByClub(ctx context.Context, clubID int) ([]models.Player, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) ListByClub(ctx context.Context, clubID int) ([]models.Player, error) {
	query := `
		SELECT id, club_id, name, position, created_at
		FROM players
		WHERE club_id = $1
		ORDER BY name ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players for club %d: %w", clubID, err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var player models.Player
		if scanErr := rows.Scan(
			&player.ID,
			&player.ClubID,
			&player.Name,
			&player.Position,
			&player.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		players = append(players, player)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}
