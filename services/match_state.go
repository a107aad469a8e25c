package services

import "github.com/mcoleague/match-center/models"

// allowedMatchTransitions is the closed transition table of the match
// lifecycle. Guards (who may trigger, timing rules) live with the
// operations in MatchService; this table only answers whether the edge
// exists at all. Terminal states map to empty sets.
var allowedMatchTransitions = map[models.MatchState][]models.MatchState{
	models.StateAgendada: {
		models.StateConfirmada,
		models.StateCancelada,
	},
	models.StateConfirmacaoNecessaria: {
		models.StateConfirmada,
		models.StateCancelada,
	},
	models.StateConfirmada: {
		models.StatePlacarRegistrado,
		models.StateWO,
	},
	models.StatePlacarRegistrado: {
		models.StatePlacarConfirmado,
		models.StateEmReclamacao,
	},
	models.StatePlacarConfirmado: {
		models.StateFinalizada,
	},
	models.StateEmReclamacao: {
		models.StateFinalizada,
	},
	models.StateFinalizada: {},
	models.StateWO:         {},
	models.StateCancelada:  {},
}

func isValidMatchTransition(current, next models.MatchState) bool {
	for _, allowed := range allowedMatchTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// transitionMatch applies the pure state change to the in-memory match,
// or returns ErrInvalidTransition leaving it untouched. Persistence
// (and the concurrency CAS) happens afterwards in the caller.
func transitionMatch(match *models.Match, next models.MatchState) error {
	if !isValidMatchTransition(match.State, next) {
		return ErrInvalidTransition
	}
	match.State = next
	return nil
}
