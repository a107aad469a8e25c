package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mcoleague/match-center/models"
	"github.com/mcoleague/match-center/repositories"
)

const recentResultsLimit = 6

// MatchCenterSummary is the read model the match-center screen renders.
type MatchCenterSummary struct {
	ActiveMatch          *models.Match   `json:"active_match,omitempty"`
	PendingScheduleCount int             `json:"pending_schedule_count"`
	PendingReports       []*models.Match `json:"pending_sumulas"`
	RecentResults        []*models.Match `json:"recent_results"`
}

type MatchCenterService interface {
	// Summary classifies a club's matches for the match-center screen.
	// Pure read side: recomputed on every call so it can never go stale
	// after a transition.
	Summary(ctx context.Context, clubID int) (*MatchCenterSummary, error)
}

type matchCenterService struct {
	matchRepo repositories.MatchRepository
	clubRepo  repositories.ClubRepository
}

func NewMatchCenterService(
	matchRepo repositories.MatchRepository,
	clubRepo repositories.ClubRepository,
) MatchCenterService {
	return &matchCenterService{
		matchRepo: matchRepo,
		clubRepo:  clubRepo,
	}
}

func (s *matchCenterService) Summary(ctx context.Context, clubID int) (*MatchCenterSummary, error) {
	if _, err := s.clubRepo.GetByID(ctx, clubID); err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to load club %d: %w", clubID, err)
	}

	matches, err := s.matchRepo.ListByClub(ctx, clubID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for club %d: %w", clubID, err)
	}

	return ClassifyMatches(matches, clubID), nil
}

// ClassifyMatches splits a club's matches (already in stable order)
// into the match-center buckets.
func ClassifyMatches(matches []*models.Match, clubID int) *MatchCenterSummary {
	summary := &MatchCenterSummary{
		PendingReports: make([]*models.Match, 0),
		RecentResults:  make([]*models.Match, 0),
	}

	for _, match := range matches {
		if summary.ActiveMatch == nil && match.State.Actionable() {
			summary.ActiveMatch = match
		}
		if match.AwayClubID == clubID && match.State.Schedulable() {
			summary.PendingScheduleCount++
		}
		if match.State == models.StatePlacarRegistrado && !match.RegisteredByClub(clubID) {
			summary.PendingReports = append(summary.PendingReports, match)
		}
		switch match.State {
		case models.StateFinalizada, models.StatePlacarConfirmado, models.StateWO, models.StateCancelada:
			summary.RecentResults = append(summary.RecentResults, match)
		}
	}

	sort.SliceStable(summary.RecentResults, func(i, j int) bool {
		return resultTime(summary.RecentResults[i]).After(resultTime(summary.RecentResults[j]))
	})
	if len(summary.RecentResults) > recentResultsLimit {
		summary.RecentResults = summary.RecentResults[:recentResultsLimit]
	}
	return summary
}

func resultTime(match *models.Match) time.Time {
	if match.ScheduledAt != nil {
		return *match.ScheduledAt
	}
	return match.Deadline
}
