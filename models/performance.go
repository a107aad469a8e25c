package models

import "time"

// PerformanceEntry is one line of a match report (súmula): a player's
// rating, goals and assists on one side of one match. A nil Rating
// means the player did not play; such entries never count toward the
// score and are dropped when the report is finalized.
type PerformanceEntry struct {
	ID         int      `json:"id,omitempty"`
	MatchID    int      `json:"-"`
	Side       Side     `json:"-"`
	PlayerID   *int     `json:"player_id,omitempty"`
	PlayerName string   `json:"player_name"`
	Rating     *float64 `json:"rating"`
	Goals      int      `json:"goals"`
	Assists    int      `json:"assists"`
}

// Played reports whether the entry counts as an actual appearance.
func (e PerformanceEntry) Played() bool {
	return e.Rating != nil
}

// Unknown reports whether the OCR step could not match the name to a roster.
func (e PerformanceEntry) Unknown() bool {
	return e.PlayerID == nil
}

// Player is the roster read model the reconciler matches OCR names against.
type Player struct {
	ID        int       `json:"id"`
	ClubID    int       `json:"clube_id"`
	Name      string    `json:"name"`
	Position  *string   `json:"position,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
