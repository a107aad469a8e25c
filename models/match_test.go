package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatchState_AcceptsKnownTokens(t *testing.T) {
	tokens := []string{
		"agendada", "confirmacao_necessaria", "confirmada",
		"placar_registrado", "placar_confirmado", "em_reclamacao",
		"finalizada", "wo", "cancelada",
	}
	for _, token := range tokens {
		state, err := ParseMatchState(token)
		require.NoError(t, err, token)
		assert.Equal(t, token, string(state))
	}
}

func TestParseMatchState_RejectsUnknownTokens(t *testing.T) {
	for _, token := range []string{"", "scheduled", "AGENDADA", "finalizado"} {
		_, err := ParseMatchState(token)
		assert.Error(t, err, token)
	}
}

func TestMatchState_Terminal(t *testing.T) {
	assert.True(t, StateFinalizada.Terminal())
	assert.True(t, StateWO.Terminal())
	assert.True(t, StateCancelada.Terminal())
	assert.False(t, StatePlacarRegistrado.Terminal())
	assert.False(t, StateConfirmada.Terminal())
}

func TestMatch_SideOf(t *testing.T) {
	m := &Match{ID: 1, HomeClubID: 10, AwayClubID: 20}

	side, ok := m.SideOf(10)
	require.True(t, ok)
	assert.Equal(t, SideMandante, side)

	side, ok = m.SideOf(20)
	require.True(t, ok)
	assert.Equal(t, SideVisitante, side)

	_, ok = m.SideOf(99)
	assert.False(t, ok)
}

func TestAvailabilityWindow_Validate(t *testing.T) {
	valid := AvailabilityWindow{OwnerID: 1, DayOfWeek: 1, StartMin: 19 * 60, EndMin: 22 * 60}
	assert.NoError(t, valid.Validate())

	cases := map[string]AvailabilityWindow{
		"day too large":   {DayOfWeek: 7, StartMin: 0, EndMin: 60},
		"negative day":    {DayOfWeek: -1, StartMin: 0, EndMin: 60},
		"start after end": {DayOfWeek: 1, StartMin: 120, EndMin: 60},
		"zero length":     {DayOfWeek: 1, StartMin: 60, EndMin: 60},
		"past midnight":   {DayOfWeek: 1, StartMin: 23 * 60, EndMin: 25 * 60},
	}
	for name, w := range cases {
		assert.Error(t, w.Validate(), name)
	}
}
