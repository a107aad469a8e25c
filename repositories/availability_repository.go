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
	ErrAvailabilityNotFound     = errors.New("availability window not found")
	ErrAvailabilityOwnerInvalid = errors.New("availability owner conflict or invalid")
	ErrAvailabilityOverlap      = errors.New("availability window overlaps an existing one")
)

type AvailabilityRepository interface {
	Create(ctx context.Context, window *models.AvailabilityWindow) error
	GetByID(ctx context.Context, id int) (*models.AvailabilityWindow, error)
	ListByOwner(ctx context.Context, ownerID int) ([]models.AvailabilityWindow, error)
	Delete(ctx context.Context, id int) error
}

type postgresAvailabilityRepository struct {
	db *sql.DB
}

func NewPostgresAvailabilityRepository(db *sql.DB) AvailabilityRepository {
	return &postgresAvailabilityRepository{db: db}
}

func (r *postgresAvailabilityRepository) Create(ctx context.Context, window *models.AvailabilityWindow) error {
	query := `
		INSERT INTO availability_windows (owner_id, day_of_week, start_min, end_min)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		window.OwnerID,
		window.DayOfWeek,
		window.StartMin,
		window.EndMin,
	).Scan(&window.ID, &window.CreatedAt)

	return r.handleAvailabilityError(err)
}

func (r *postgresAvailabilityRepository) GetByID(ctx context.Context, id int) (*models.AvailabilityWindow, error) {
	query := `
		SELECT id, owner_id, day_of_week, start_min, end_min, created_at
		FROM availability_windows
		WHERE id = $1`

	window := &models.AvailabilityWindow{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&window.ID,
		&window.OwnerID,
		&window.DayOfWeek,
		&window.StartMin,
		&window.EndMin,
		&window.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAvailabilityNotFound
		}
		return nil, fmt.Errorf("failed to scan availability window %d: %w", id, err)
	}
	return window, nil
}

func (r *postgresAvailabilityRepository) ListByOwner(ctx context.Context, ownerID int) ([]models.AvailabilityWindow, error) {
	query := `
		SELECT id, owner_id, day_of_week, start_min, end_min, created_at
		FROM availability_windows
		WHERE owner_id = $1
		ORDER BY day_of_week ASC, start_min ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	windows := make([]models.AvailabilityWindow, 0)
	for rows.Next() {
		var window models.AvailabilityWindow
		if scanErr := rows.Scan(
			&window.ID,
			&window.OwnerID,
			&window.DayOfWeek,
			&window.StartMin,
			&window.EndMin,
			&window.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan availability row: %w", scanErr)
		}
		windows = append(windows, window)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during availability rows iteration: %w", err)
	}
	return windows, nil
}

func (r *postgresAvailabilityRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM availability_windows WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAvailabilityNotFound)
}

func (r *postgresAvailabilityRepository) handleAvailabilityError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "availability_windows_owner_id_fkey":
			return ErrAvailabilityOwnerInvalid
		case "availability_windows_no_overlap":
			return ErrAvailabilityOverlap
		}
	}
	return err
}
