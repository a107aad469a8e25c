package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoleague/match-center/models"
	"github.com/mcoleague/match-center/repositories"
)

const (
	homeClubID = 10
	awayClubID = 20
)

// fakeMatchRepo keeps matches in memory and enforces the same version
// check as the SQL implementation.
type fakeMatchRepo struct {
	store   map[int]*models.Match
	expired []int
	// conflictOnce makes the next CAS on these matches fail, simulating
	// a writer that slipped in between the caller's read and write.
	conflictOnce map[int]bool
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	repo := &fakeMatchRepo{
		store:        make(map[int]*models.Match),
		conflictOnce: make(map[int]bool),
	}
	for _, match := range matches {
		repo.store[match.ID] = cloneMatch(match)
	}
	return repo
}

func cloneMatch(match *models.Match) *models.Match {
	clone := *match
	return &clone
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.store[match.ID] = cloneMatch(match)
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	match, ok := r.store[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return cloneMatch(match), nil
}

func (r *fakeMatchRepo) ListByClub(_ context.Context, clubID int, states []models.MatchState) ([]*models.Match, error) {
	var out []*models.Match
	for _, match := range r.store {
		if match.HomeClubID != clubID && match.AwayClubID != clubID {
			continue
		}
		out = append(out, cloneMatch(match))
	}
	return out, nil
}

func (r *fakeMatchRepo) ListDeadlineExpired(_ context.Context, _ repositories.SQLExecutor, states []models.MatchState) ([]*models.Match, error) {
	var out []*models.Match
	for _, id := range r.expired {
		if match, ok := r.store[id]; ok {
			out = append(out, cloneMatch(match))
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateStateCAS(_ context.Context, _ repositories.SQLExecutor, match *models.Match, expectedVersion int) error {
	stored, ok := r.store[match.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if r.conflictOnce[match.ID] {
		delete(r.conflictOnce, match.ID)
		return repositories.ErrMatchVersionConflict
	}
	if stored.Version != expectedVersion {
		return repositories.ErrMatchVersionConflict
	}
	match.Version = expectedVersion + 1
	r.store[match.ID] = cloneMatch(match)
	return nil
}

type fakePerformanceRepo struct {
	replaced map[int][]models.PerformanceEntry
}

func (r *fakePerformanceRepo) ReplaceForMatch(_ context.Context, _ repositories.SQLExecutor, matchID int, entries []models.PerformanceEntry) error {
	if r.replaced == nil {
		r.replaced = make(map[int][]models.PerformanceEntry)
	}
	r.replaced[matchID] = entries
	return nil
}

func (r *fakePerformanceRepo) ListByMatch(_ context.Context, matchID int) ([]models.PerformanceEntry, error) {
	return r.replaced[matchID], nil
}

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	t.rolledBack = true
	return nil
}

type fakeTxStarter struct {
	tx *fakeTx
}

func (s *fakeTxStarter) begin(context.Context) (writeTx, error) {
	return s.tx, nil
}

type fakeScheduling struct {
	days []models.SlotDay
}

func (s *fakeScheduling) AvailableSlots(_ context.Context, _ int) ([]models.SlotDay, error) {
	return s.days, nil
}

type recordingBroadcaster struct {
	rooms []string
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID string, _ interface{}) {
	b.rooms = append(b.rooms, roomID)
}

func newTestMatchService(repo *fakeMatchRepo, scheduling SchedulingService, hub MatchBroadcaster, now time.Time) *matchService {
	return &matchService{
		matchRepo:  repo,
		scheduling: scheduling,
		hub:        hub,
		now:        func() time.Time { return now },
	}
}

func pendingMatch(state models.MatchState) *models.Match {
	return &models.Match{
		ID:         1,
		HomeClubID: homeClubID,
		AwayClubID: awayClubID,
		State:      state,
		Deadline:   time.Date(2026, time.March, 15, 23, 59, 0, 0, time.UTC),
		Version:    1,
	}
}

func TestSchedule(t *testing.T) {
	now := time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)
	kickoff := time.Date(2026, time.March, 9, 23, 0, 0, 0, time.UTC)
	offered := &fakeScheduling{days: []models.SlotDay{{
		Date:  "2026-03-09",
		Label: "Segunda",
		Slots: []models.Slot{{DatetimeUTC: kickoff, TimeLabel: "20:00"}},
	}}}

	t.Run("away club books an offered slot", func(t *testing.T) {
		repo := newFakeMatchRepo(pendingMatch(models.StateAgendada))
		hub := &recordingBroadcaster{}
		svc := newTestMatchService(repo, offered, hub, now)

		match, err := svc.Schedule(context.Background(), 1, awayClubID, kickoff)
		require.NoError(t, err)
		assert.Equal(t, models.StateConfirmada, match.State)
		require.NotNil(t, match.ScheduledAt)
		assert.True(t, match.ScheduledAt.Equal(kickoff))
		assert.Equal(t, 2, match.Version)
		assert.Equal(t, []string{"match_1"}, hub.rooms)

		stored, err := repo.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, models.StateConfirmada, stored.State)
	})

	t.Run("home club may not pick the slot", func(t *testing.T) {
		repo := newFakeMatchRepo(pendingMatch(models.StateAgendada))
		svc := newTestMatchService(repo, offered, nil, now)

		_, err := svc.Schedule(context.Background(), 1, homeClubID, kickoff)
		assert.ErrorIs(t, err, ErrOnlyAwaySchedules)
	})

	t.Run("club outside the match is rejected", func(t *testing.T) {
		repo := newFakeMatchRepo(pendingMatch(models.StateAgendada))
		svc := newTestMatchService(repo, offered, nil, now)

		_, err := svc.Schedule(context.Background(), 1, 99, kickoff)
		assert.ErrorIs(t, err, ErrNotMatchClub)
	})

	t.Run("slot outside the offered set is rejected", func(t *testing.T) {
		repo := newFakeMatchRepo(pendingMatch(models.StateAgendada))
		svc := newTestMatchService(repo, offered, nil, now)

		_, err := svc.Schedule(context.Background(), 1, awayClubID, kickoff.Add(15*time.Minute))
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})

	t.Run("already confirmed match cannot be rescheduled", func(t *testing.T) {
		repo := newFakeMatchRepo(pendingMatch(models.StateConfirmada))
		svc := newTestMatchService(repo, offered, nil, now)

		_, err := svc.Schedule(context.Background(), 1, awayClubID, kickoff)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("concurrent modification surfaces as stale state", func(t *testing.T) {
		repo := newFakeMatchRepo(pendingMatch(models.StateAgendada))
		svc := newTestMatchService(repo, offered, nil, now)

		// Another actor bumps the row between this caller's read and write.
		repo.conflictOnce[1] = true

		_, err := svc.Schedule(context.Background(), 1, awayClubID, kickoff)
		assert.ErrorIs(t, err, ErrStaleState)

		stored, getErr := repo.GetByID(context.Background(), 1)
		require.NoError(t, getErr)
		assert.Equal(t, models.StateAgendada, stored.State)
	})

	t.Run("missing match", func(t *testing.T) {
		repo := newFakeMatchRepo()
		svc := newTestMatchService(repo, offered, nil, now)

		_, err := svc.Schedule(context.Background(), 404, awayClubID, kickoff)
		assert.ErrorIs(t, err, ErrMatchNotFound)
	})
}

func TestRegisterScore(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	match := pendingMatch(models.StateConfirmada)
	kickoff := now.Add(-3 * time.Hour)
	match.ScheduledAt = &kickoff

	repo := newFakeMatchRepo(match)
	perf := &fakePerformanceRepo{}
	tx := &fakeTx{}
	hub := &recordingBroadcaster{}
	svc := &matchService{
		txs:             &fakeTxStarter{tx: tx},
		matchRepo:       repo,
		performanceRepo: perf,
		hub:             hub,
		now:             func() time.Time { return now },
	}

	entries := []models.PerformanceEntry{
		{PlayerName: "Ana", Side: models.SideMandante, Rating: rating(7.5), Goals: 3},
		{PlayerName: "Bia", Side: models.SideVisitante, Rating: rating(6.0), Goals: 2},
	}

	updated, err := svc.RegisterScore(context.Background(), 1, homeClubID, 3, 2, entries)
	require.NoError(t, err)

	assert.Equal(t, models.StatePlacarRegistrado, updated.State)
	require.NotNil(t, updated.HomeScore)
	require.NotNil(t, updated.AwayScore)
	assert.Equal(t, 3, *updated.HomeScore)
	assert.Equal(t, 2, *updated.AwayScore)
	require.NotNil(t, updated.ScoreRegisteredBy)
	assert.Equal(t, homeClubID, *updated.ScoreRegisteredBy)

	assert.True(t, tx.committed, "entries and state must be written in one committed tx")
	assert.Equal(t, entries, perf.replaced[1])
	assert.Equal(t, []string{"match_1"}, hub.rooms)

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatePlacarRegistrado, stored.State)
	assert.Equal(t, homeClubID, *stored.ScoreRegisteredBy)
}

func TestRegisterScoreGuards(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("only confirmed matches accept a score", func(t *testing.T) {
		repo := newFakeMatchRepo(pendingMatch(models.StateAgendada))
		svc := newTestMatchService(repo, nil, nil, now)

		_, err := svc.RegisterScore(context.Background(), 1, homeClubID, 2, 1, nil)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("kickoff still in the future", func(t *testing.T) {
		match := pendingMatch(models.StateConfirmada)
		kickoff := now.Add(3 * time.Hour)
		match.ScheduledAt = &kickoff
		repo := newFakeMatchRepo(match)
		svc := newTestMatchService(repo, nil, nil, now)

		_, err := svc.RegisterScore(context.Background(), 1, homeClubID, 2, 1, nil)
		assert.ErrorIs(t, err, ErrMatchNotPlayedYet)
	})

	t.Run("negative score", func(t *testing.T) {
		match := pendingMatch(models.StateConfirmada)
		kickoff := now.Add(-3 * time.Hour)
		match.ScheduledAt = &kickoff
		repo := newFakeMatchRepo(match)
		svc := newTestMatchService(repo, nil, nil, now)

		_, err := svc.RegisterScore(context.Background(), 1, homeClubID, -1, 0, nil)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("disputed matches route to the admin resolver, not a new score", func(t *testing.T) {
		match := registeredMatch()
		match.State = models.StateEmReclamacao
		repo := newFakeMatchRepo(match)
		svc := newTestMatchService(repo, nil, nil, now)

		_, err := svc.RegisterScore(context.Background(), 1, awayClubID, 1, 1, nil)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func registeredMatch() *models.Match {
	match := pendingMatch(models.StatePlacarRegistrado)
	kickoff := time.Date(2026, time.March, 9, 23, 0, 0, 0, time.UTC)
	match.ScheduledAt = &kickoff
	home, away := 3, 2
	match.HomeScore = &home
	match.AwayScore = &away
	registeredBy := homeClubID
	match.ScoreRegisteredBy = &registeredBy
	match.Version = 3
	return match
}

func TestConfirmScore(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("opponent confirmation finalizes the match", func(t *testing.T) {
		repo := newFakeMatchRepo(registeredMatch())
		hub := &recordingBroadcaster{}
		svc := newTestMatchService(repo, nil, hub, now)

		match, err := svc.ConfirmScore(context.Background(), 1, awayClubID)
		require.NoError(t, err)
		assert.Equal(t, models.StateFinalizada, match.State)
		assert.Equal(t, []string{"match_1"}, hub.rooms)
	})

	t.Run("registering club cannot confirm its own score", func(t *testing.T) {
		repo := newFakeMatchRepo(registeredMatch())
		svc := newTestMatchService(repo, nil, nil, now)

		_, err := svc.ConfirmScore(context.Background(), 1, homeClubID)
		require.ErrorIs(t, err, ErrScoreSelfConfirm)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		stored, getErr := repo.GetByID(context.Background(), 1)
		require.NoError(t, getErr)
		assert.Equal(t, models.StatePlacarRegistrado, stored.State)
	})

	t.Run("nothing registered yet", func(t *testing.T) {
		repo := newFakeMatchRepo(pendingMatch(models.StateConfirmada))
		svc := newTestMatchService(repo, nil, nil, now)

		_, err := svc.ConfirmScore(context.Background(), 1, awayClubID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestDisputeScore(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("opponent opens a dispute", func(t *testing.T) {
		repo := newFakeMatchRepo(registeredMatch())
		svc := newTestMatchService(repo, nil, nil, now)

		match, err := svc.DisputeScore(context.Background(), 1, awayClubID)
		require.NoError(t, err)
		assert.Equal(t, models.StateEmReclamacao, match.State)
	})

	t.Run("registering club cannot dispute its own score", func(t *testing.T) {
		repo := newFakeMatchRepo(registeredMatch())
		svc := newTestMatchService(repo, nil, nil, now)

		_, err := svc.DisputeScore(context.Background(), 1, homeClubID)
		assert.ErrorIs(t, err, ErrScoreSelfDispute)
	})
}

func TestResolveDispute(t *testing.T) {
	now := time.Date(2026, time.March, 12, 12, 0, 0, 0, time.UTC)

	t.Run("admin decision finalizes with the ruled score", func(t *testing.T) {
		match := registeredMatch()
		match.State = models.StateEmReclamacao
		repo := newFakeMatchRepo(match)
		svc := newTestMatchService(repo, nil, nil, now)

		resolved, err := svc.ResolveDispute(context.Background(), 1, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, models.StateFinalizada, resolved.State)
		assert.Equal(t, 1, *resolved.HomeScore)
		assert.Equal(t, 1, *resolved.AwayScore)
	})

	t.Run("only disputed matches can be resolved", func(t *testing.T) {
		repo := newFakeMatchRepo(registeredMatch())
		svc := newTestMatchService(repo, nil, nil, now)

		_, err := svc.ResolveDispute(context.Background(), 1, 1, 1)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestSweepDeadlines(t *testing.T) {
	now := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)

	scheduled := pendingMatch(models.StateConfirmada)
	scheduled.ID = 1
	kickoff := time.Date(2026, time.March, 14, 23, 0, 0, 0, time.UTC)
	scheduled.ScheduledAt = &kickoff

	neverScheduled := pendingMatch(models.StateAgendada)
	neverScheduled.ID = 2

	awaiting := pendingMatch(models.StateConfirmacaoNecessaria)
	awaiting.ID = 3

	t.Run("scheduled but unreported forfeits, unscheduled is voided", func(t *testing.T) {
		repo := newFakeMatchRepo(scheduled, neverScheduled, awaiting)
		repo.expired = []int{1, 2, 3}
		svc := newTestMatchService(repo, nil, nil, now)

		swept, err := svc.SweepDeadlines(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, swept)

		states := map[int]models.MatchState{}
		for id := 1; id <= 3; id++ {
			stored, err := repo.GetByID(context.Background(), id)
			require.NoError(t, err)
			states[id] = stored.State
		}
		assert.Equal(t, models.StateWO, states[1])
		assert.Equal(t, models.StateCancelada, states[2])
		assert.Equal(t, models.StateCancelada, states[3])
	})

	t.Run("a walkover carries the stipulated placar and drops the kickoff", func(t *testing.T) {
		repo := newFakeMatchRepo(scheduled)
		repo.expired = []int{1}
		svc := newTestMatchService(repo, nil, nil, now)

		_, err := svc.SweepDeadlines(context.Background())
		require.NoError(t, err)

		stored, err := repo.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, models.StateWO, stored.State)
		require.NotNil(t, stored.HomeScore)
		require.NotNil(t, stored.AwayScore)
		assert.Equal(t, 0, *stored.HomeScore)
		assert.Equal(t, 0, *stored.AwayScore)
		assert.Nil(t, stored.ScheduledAt)
	})

	t.Run("a voided fixture carries no placar", func(t *testing.T) {
		repo := newFakeMatchRepo(neverScheduled)
		repo.expired = []int{2}
		svc := newTestMatchService(repo, nil, nil, now)

		_, err := svc.SweepDeadlines(context.Background())
		require.NoError(t, err)

		stored, err := repo.GetByID(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, models.StateCancelada, stored.State)
		assert.Nil(t, stored.HomeScore)
		assert.Nil(t, stored.AwayScore)
	})

	t.Run("a lost race skips the match instead of double-forfeiting", func(t *testing.T) {
		repo := newFakeMatchRepo(scheduled, neverScheduled)
		repo.expired = []int{1, 2}
		svc := newTestMatchService(repo, nil, nil, now)

		// Match 1 is acted on between the sweep's read and write.
		repo.conflictOnce[1] = true

		swept, err := svc.SweepDeadlines(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, swept)

		stored, err := repo.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, models.StateConfirmada, stored.State)
	})
}
