package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcoleague/match-center/models"
	"github.com/mcoleague/match-center/repositories"
)

type AvailabilityService interface {
	ListClubAvailability(ctx context.Context, clubID int) ([]models.AvailabilityWindow, error)
	AddWindow(ctx context.Context, currentUserID int, window models.AvailabilityWindow) (*models.AvailabilityWindow, error)
	RemoveWindow(ctx context.Context, currentUserID int, windowID int) error
}

type availabilityService struct {
	availabilityRepo repositories.AvailabilityRepository
	clubRepo         repositories.ClubRepository
}

func NewAvailabilityService(
	availabilityRepo repositories.AvailabilityRepository,
	clubRepo repositories.ClubRepository,
) AvailabilityService {
	return &availabilityService{
		availabilityRepo: availabilityRepo,
		clubRepo:         clubRepo,
	}
}

func (s *availabilityService) ListClubAvailability(ctx context.Context, clubID int) ([]models.AvailabilityWindow, error) {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to load club %d: %w", clubID, err)
	}
	windows, err := s.availabilityRepo.ListByOwner(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability for club %d: %w", clubID, err)
	}
	return windows, nil
}

func (s *availabilityService) AddWindow(ctx context.Context, currentUserID int, window models.AvailabilityWindow) (*models.AvailabilityWindow, error) {
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if err := s.authorizeOwner(ctx, currentUserID, window.OwnerID); err != nil {
		return nil, err
	}

	if err := s.availabilityRepo.Create(ctx, &window); err != nil {
		switch {
		case errors.Is(err, repositories.ErrAvailabilityOwnerInvalid):
			return nil, ErrClubNotFound
		case errors.Is(err, repositories.ErrAvailabilityOverlap):
			return nil, fmt.Errorf("%w: window overlaps an existing one", ErrValidationFailed)
		}
		return nil, fmt.Errorf("failed to create availability window: %w", err)
	}
	return &window, nil
}

func (s *availabilityService) RemoveWindow(ctx context.Context, currentUserID int, windowID int) error {
	window, err := s.availabilityRepo.GetByID(ctx, windowID)
	if err != nil {
		if errors.Is(err, repositories.ErrAvailabilityNotFound) {
			return ErrAvailabilityNotFound
		}
		return fmt.Errorf("failed to load availability window %d: %w", windowID, err)
	}
	if err := s.authorizeOwner(ctx, currentUserID, window.OwnerID); err != nil {
		return err
	}

	if err := s.availabilityRepo.Delete(ctx, windowID); err != nil {
		if errors.Is(err, repositories.ErrAvailabilityNotFound) {
			return ErrAvailabilityNotFound
		}
		return fmt.Errorf("failed to delete availability window %d: %w", windowID, err)
	}
	return nil
}

func (s *availabilityService) authorizeOwner(ctx context.Context, currentUserID, clubID int) error {
	club, err := s.clubRepo.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return ErrClubNotFound
		}
		return fmt.Errorf("failed to load club %d: %w", clubID, err)
	}
	if club.OwnerID != currentUserID {
		return ErrForbiddenOperation
	}
	return nil
}
