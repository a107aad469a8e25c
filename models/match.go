package models

import (
	"fmt"
	"time"
)

// MatchState represents the match lifecycle states, matching the ENUM in the DB.
// The Portuguese tokens are part of the public API contract and must
// round-trip exactly; unknown tokens are rejected at the boundary.
type MatchState string

const (
	StateAgendada              MatchState = "agendada"
	StateConfirmacaoNecessaria MatchState = "confirmacao_necessaria"
	StateConfirmada            MatchState = "confirmada"
	StatePlacarRegistrado      MatchState = "placar_registrado"
	StatePlacarConfirmado      MatchState = "placar_confirmado"
	StateEmReclamacao          MatchState = "em_reclamacao"
	StateFinalizada            MatchState = "finalizada"
	StateWO                    MatchState = "wo"
	StateCancelada             MatchState = "cancelada"
)

// ParseMatchState validates a raw state token coming from the database
// or a client and rejects anything outside the closed set.
func ParseMatchState(raw string) (MatchState, error) {
	state := MatchState(raw)
	switch state {
	case StateAgendada, StateConfirmacaoNecessaria, StateConfirmada,
		StatePlacarRegistrado, StatePlacarConfirmado, StateEmReclamacao,
		StateFinalizada, StateWO, StateCancelada:
		return state, nil
	}
	return "", fmt.Errorf("unknown match state %q", raw)
}

// Terminal reports whether no further transition is possible.
func (s MatchState) Terminal() bool {
	switch s {
	case StateFinalizada, StateWO, StateCancelada:
		return true
	}
	return false
}

// Schedulable reports whether the match is still waiting for a slot.
func (s MatchState) Schedulable() bool {
	return s == StateAgendada || s == StateConfirmacaoNecessaria
}

// Actionable reports whether the match needs attention in the match center.
func (s MatchState) Actionable() bool {
	switch s {
	case StateConfirmacaoNecessaria, StateConfirmada, StateAgendada:
		return true
	}
	return false
}

// Side identifies which club of a match an entry or action belongs to.
type Side string

const (
	SideMandante  Side = "mandante"
	SideVisitante Side = "visitante"
)

func ParseSide(raw string) (Side, error) {
	side := Side(raw)
	if side == SideMandante || side == SideVisitante {
		return side, nil
	}
	return "", fmt.Errorf("unknown match side %q", raw)
}

type Match struct {
	ID                int        `json:"id"`
	HomeClubID        int        `json:"mandante_id"`
	AwayClubID        int        `json:"visitante_id"`
	State             MatchState `json:"estado"`
	ScheduledAt       *time.Time `json:"scheduled_at,omitempty"`
	HomeScore         *int       `json:"placar_mandante,omitempty"`
	AwayScore         *int       `json:"placar_visitante,omitempty"`
	ScoreRegisteredBy *int       `json:"placar_registrado_por,omitempty"`
	Deadline          time.Time  `json:"deadline"`
	Version           int        `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`

	// Optional related entities (populated by services, not mapped directly).
	HomeClub *Club `json:"mandante,omitempty"`
	AwayClub *Club `json:"visitante,omitempty"`
}

// SideOf returns which side the given club plays on.
func (m *Match) SideOf(clubID int) (Side, bool) {
	switch clubID {
	case m.HomeClubID:
		return SideMandante, true
	case m.AwayClubID:
		return SideVisitante, true
	}
	return "", false
}

// RegisteredByClub reports whether clubID is the club that submitted the score.
func (m *Match) RegisteredByClub(clubID int) bool {
	return m.ScoreRegisteredBy != nil && *m.ScoreRegisteredBy == clubID
}
