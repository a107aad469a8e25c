package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoleague/match-center/models"
)

func rating(v float64) *float64 { return &v }

func TestComputeSideScore(t *testing.T) {
	tests := []struct {
		name          string
		entries       []models.PerformanceEntry
		reportedGoals int
		want          int
	}{
		{
			name: "goals from entries only",
			entries: []models.PerformanceEntry{
				{PlayerName: "Ana", Rating: rating(7.5), Goals: 2},
				{PlayerName: "Bia", Rating: rating(6.0), Goals: 1},
			},
			reportedGoals: 3,
			want:          3,
		},
		{
			name: "sheet total above attributable adds the difference",
			entries: []models.PerformanceEntry{
				{PlayerName: "Ana", Rating: rating(7.5), Goals: 1},
			},
			reportedGoals: 3,
			want:          3,
		},
		{
			name: "sheet total below attributable is ignored",
			entries: []models.PerformanceEntry{
				{PlayerName: "Ana", Rating: rating(7.5), Goals: 2},
			},
			reportedGoals: 1,
			want:          2,
		},
		{
			name: "goals of players without a rating do not count",
			entries: []models.PerformanceEntry{
				{PlayerName: "Ana", Rating: rating(7.5), Goals: 1},
				{PlayerName: "Reserva", Rating: nil, Goals: 2},
			},
			reportedGoals: 0,
			want:          1,
		},
		{
			name:          "no entries, sheet total stands",
			entries:       nil,
			reportedGoals: 2,
			want:          2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeSideScore(tt.entries, tt.reportedGoals))
		})
	}
}

func TestFinalizeEntries(t *testing.T) {
	t.Run("drops entries without a rating and stamps the side", func(t *testing.T) {
		drafts := []models.PerformanceEntry{
			{PlayerName: "Ana", Rating: rating(8.0), Goals: 1, Assists: 2},
			{PlayerName: "Reserva", Rating: nil, Goals: 3},
			{PlayerName: "Bia", Rating: rating(5.5)},
		}

		finalized, err := FinalizeEntries(drafts, models.SideVisitante)
		require.NoError(t, err)
		require.Len(t, finalized, 2)
		for _, entry := range finalized {
			assert.Equal(t, models.SideVisitante, entry.Side)
		}
		assert.Equal(t, "Ana", finalized[0].PlayerName)
		assert.Equal(t, "Bia", finalized[1].PlayerName)
	})

	t.Run("collects all offenders into one validation error", func(t *testing.T) {
		drafts := []models.PerformanceEntry{
			{PlayerName: "Ana", Rating: rating(11.0)},
			{PlayerName: "Bia", Rating: rating(7.0), Goals: -1},
			{PlayerName: "Clara", Rating: rating(7.0), Assists: -2},
			{PlayerName: "Dani", Rating: rating(6.0)},
		}

		_, err := FinalizeEntries(drafts, models.SideMandante)
		require.ErrorIs(t, err, ErrValidationFailed)
		assert.Contains(t, err.Error(), "Ana")
		assert.Contains(t, err.Error(), "Bia")
		assert.Contains(t, err.Error(), "Clara")
		assert.NotContains(t, err.Error(), "Dani")
	})

	t.Run("empty draft is fine", func(t *testing.T) {
		finalized, err := FinalizeEntries(nil, models.SideMandante)
		require.NoError(t, err)
		assert.Empty(t, finalized)
	})
}

func TestScoreDraftOverride(t *testing.T) {
	draft := ScoreDraft{Computed: 2}
	assert.Equal(t, 2, draft.Final())

	draft.ApplyOverride(5)
	assert.Equal(t, 5, draft.Final())
	assert.Equal(t, 2, draft.Computed, "override must not touch the computed value")

	draft.ClearOverride()
	assert.Equal(t, 2, draft.Final())
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "joão silva", normalizeName("  João Silva "))
	assert.Equal(t, normalizeName("JOÃO  SILVA"), normalizeName("joão silva"))
}
