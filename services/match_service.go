package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoleague/match-center/models"
	"github.com/mcoleague/match-center/repositories"
)

// MatchBroadcaster pushes match updates to connected clients. Satisfied
// by *live.Hub; nil disables broadcasting.
type MatchBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type MatchService interface {
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	ListClubMatches(ctx context.Context, clubID int) ([]*models.Match, error)

	// Schedule moves a schedulable match to confirmada. The slot must be
	// a member of the set SchedulingService computes for this match, and
	// only the away club picks it.
	Schedule(ctx context.Context, matchID, clubID int, kickoff time.Time) (*models.Match, error)

	// RegisterScore moves confirmada to placar_registrado, persisting the
	// score and the finalized performance entries as one transaction.
	RegisterScore(ctx context.Context, matchID, clubID int, homeScore, awayScore int, entries []models.PerformanceEntry) (*models.Match, error)

	// ConfirmScore is invoked by the club that did NOT register the
	// score; the match passes through placar_confirmado and finalizes.
	ConfirmScore(ctx context.Context, matchID, clubID int) (*models.Match, error)

	DisputeScore(ctx context.Context, matchID, clubID int) (*models.Match, error)

	// ResolveDispute is the admin resolution of em_reclamacao.
	ResolveDispute(ctx context.Context, matchID int, homeScore, awayScore int) (*models.Match, error)

	// SweepDeadlines applies the forfeiture policy to matches whose
	// deadline passed: confirmada with no score becomes wo, a match that
	// was never scheduled becomes cancelada. Returns how many matches
	// were transitioned.
	SweepDeadlines(ctx context.Context) (int, error)
}

// writeTx is the transactional surface score registration needs:
// repository calls plus commit/rollback. *sql.Tx satisfies it.
type writeTx interface {
	repositories.SQLExecutor
	Commit() error
	Rollback() error
}

type txStarter interface {
	begin(ctx context.Context) (writeTx, error)
}

type sqlTxStarter struct {
	db *sql.DB
}

func (s sqlTxStarter) begin(ctx context.Context) (writeTx, error) {
	return s.db.BeginTx(ctx, nil)
}

type matchService struct {
	db              *sql.DB
	txs             txStarter
	matchRepo       repositories.MatchRepository
	performanceRepo repositories.PerformanceRepository
	scheduling      SchedulingService
	hub             MatchBroadcaster
	logger          *slog.Logger
	now             func() time.Time
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	performanceRepo repositories.PerformanceRepository,
	scheduling SchedulingService,
	hub MatchBroadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:              db,
		txs:             sqlTxStarter{db: db},
		matchRepo:       matchRepo,
		performanceRepo: performanceRepo,
		scheduling:      scheduling,
		hub:             hub,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	return s.loadMatch(ctx, matchID)
}

func (s *matchService) ListClubMatches(ctx context.Context, clubID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByClub(ctx, clubID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for club %d: %w", clubID, err)
	}
	return matches, nil
}

func (s *matchService) Schedule(ctx context.Context, matchID, clubID int, kickoff time.Time) (*models.Match, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	side, ok := match.SideOf(clubID)
	if !ok {
		return nil, ErrNotMatchClub
	}
	if side != models.SideVisitante {
		return nil, ErrOnlyAwaySchedules
	}
	if !match.State.Schedulable() {
		return nil, ErrInvalidTransition
	}

	days, err := s.scheduling.AvailableSlots(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !slotOffered(days, kickoff) {
		return nil, ErrSlotNotAvailable
	}

	expected := match.Version
	scheduledAt := kickoff.UTC()
	match.ScheduledAt = &scheduledAt
	if err := transitionMatch(match, models.StateConfirmada); err != nil {
		return nil, err
	}
	if err := s.matchRepo.UpdateStateCAS(ctx, s.db, match, expected); err != nil {
		return nil, s.mapRepoError(err)
	}

	s.broadcastMatch(match)
	return match, nil
}

func (s *matchService) RegisterScore(ctx context.Context, matchID, clubID int, homeScore, awayScore int, entries []models.PerformanceEntry) (*models.Match, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if _, ok := match.SideOf(clubID); !ok {
		return nil, ErrNotMatchClub
	}
	if match.State != models.StateConfirmada {
		return nil, ErrInvalidTransition
	}
	if match.ScheduledAt == nil || match.ScheduledAt.After(s.now()) {
		return nil, ErrMatchNotPlayedYet
	}
	if homeScore < 0 || awayScore < 0 {
		return nil, fmt.Errorf("%w: score cannot be negative", ErrValidationFailed)
	}

	expected := match.Version
	match.HomeScore = &homeScore
	match.AwayScore = &awayScore
	match.ScoreRegisteredBy = &clubID
	if err := transitionMatch(match, models.StatePlacarRegistrado); err != nil {
		return nil, err
	}

	tx, err := s.txs.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin score registration tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.performanceRepo.ReplaceForMatch(ctx, tx, matchID, entries); err != nil {
		return nil, fmt.Errorf("failed to persist performance entries for match %d: %w", matchID, err)
	}
	if err := s.matchRepo.UpdateStateCAS(ctx, tx, match, expected); err != nil {
		return nil, s.mapRepoError(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit score registration for match %d: %w", matchID, err)
	}

	s.broadcastMatch(match)
	return match, nil
}

func (s *matchService) ConfirmScore(ctx context.Context, matchID, clubID int) (*models.Match, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if _, ok := match.SideOf(clubID); !ok {
		return nil, ErrNotMatchClub
	}
	if match.State != models.StatePlacarRegistrado {
		return nil, ErrInvalidTransition
	}
	if match.RegisteredByClub(clubID) {
		return nil, ErrScoreSelfConfirm
	}

	// Confirmation finalizes immediately: the match passes through
	// placar_confirmado and lands on finalizada in a single write.
	expected := match.Version
	if err := transitionMatch(match, models.StatePlacarConfirmado); err != nil {
		return nil, err
	}
	if err := transitionMatch(match, models.StateFinalizada); err != nil {
		return nil, err
	}
	if err := s.matchRepo.UpdateStateCAS(ctx, s.db, match, expected); err != nil {
		return nil, s.mapRepoError(err)
	}

	s.broadcastMatch(match)
	return match, nil
}

func (s *matchService) DisputeScore(ctx context.Context, matchID, clubID int) (*models.Match, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if _, ok := match.SideOf(clubID); !ok {
		return nil, ErrNotMatchClub
	}
	if match.State != models.StatePlacarRegistrado {
		return nil, ErrInvalidTransition
	}
	if match.RegisteredByClub(clubID) {
		return nil, ErrScoreSelfDispute
	}

	expected := match.Version
	if err := transitionMatch(match, models.StateEmReclamacao); err != nil {
		return nil, err
	}
	if err := s.matchRepo.UpdateStateCAS(ctx, s.db, match, expected); err != nil {
		return nil, s.mapRepoError(err)
	}

	s.broadcastMatch(match)
	return match, nil
}

func (s *matchService) ResolveDispute(ctx context.Context, matchID int, homeScore, awayScore int) (*models.Match, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.State != models.StateEmReclamacao {
		return nil, ErrInvalidTransition
	}
	if homeScore < 0 || awayScore < 0 {
		return nil, fmt.Errorf("%w: score cannot be negative", ErrValidationFailed)
	}

	expected := match.Version
	match.HomeScore = &homeScore
	match.AwayScore = &awayScore
	if err := transitionMatch(match, models.StateFinalizada); err != nil {
		return nil, err
	}
	if err := s.matchRepo.UpdateStateCAS(ctx, s.db, match, expected); err != nil {
		return nil, s.mapRepoError(err)
	}

	s.broadcastMatch(match)
	return match, nil
}

func (s *matchService) SweepDeadlines(ctx context.Context) (int, error) {
	states := []models.MatchState{
		models.StateAgendada,
		models.StateConfirmacaoNecessaria,
		models.StateConfirmada,
	}
	expired, err := s.matchRepo.ListDeadlineExpired(ctx, s.db, states)
	if err != nil {
		return 0, fmt.Errorf("failed to list deadline-expired matches: %w", err)
	}

	swept := 0
	for _, match := range expired {
		var next models.MatchState
		if match.State == models.StateConfirmada {
			// Scheduled but never reported: walkover.
			next = models.StateWO
		} else {
			// Never scheduled: no side acted, the fixture is voided.
			next = models.StateCancelada
		}

		expected := match.Version
		if err := transitionMatch(match, next); err != nil {
			continue
		}
		if next == models.StateWO {
			// A walkover is still a result: it carries the stipulated
			// 0x0 placar, and the kickoff that never happened is
			// dropped with it.
			home, away := 0, 0
			match.HomeScore = &home
			match.AwayScore = &away
			match.ScheduledAt = nil
		}
		err := s.matchRepo.UpdateStateCAS(ctx, s.db, match, expected)
		if errors.Is(err, repositories.ErrMatchVersionConflict) {
			// Someone acted on the match between the listing and the
			// write; the sweep must not double-forfeit it.
			if s.logger != nil {
				s.logger.Info("sweep lost race on match", slog.Int("match_id", match.ID))
			}
			continue
		}
		if err != nil {
			return swept, fmt.Errorf("failed to sweep match %d: %w", match.ID, err)
		}
		swept++
		s.broadcastMatch(match)
	}
	return swept, nil
}

func (s *matchService) loadMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	return match, nil
}

func (s *matchService) mapRepoError(err error) error {
	if errors.Is(err, repositories.ErrMatchVersionConflict) {
		return ErrStaleState
	}
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return ErrMatchNotFound
	}
	return err
}

func (s *matchService) broadcastMatch(match *models.Match) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(matchRoomID(match.ID), map[string]interface{}{
		"type":    "MATCH_UPDATED",
		"payload": match,
	})
}

func matchRoomID(matchID int) string {
	return fmt.Sprintf("match_%d", matchID)
}

func slotOffered(days []models.SlotDay, kickoff time.Time) bool {
	target := kickoff.UTC()
	for _, day := range days {
		for _, slot := range day.Slots {
			if slot.DatetimeUTC.Equal(target) {
				return true
			}
		}
	}
	return false
}
