package models

import "time"

// Club is the actor on each side of a match. Identity customization
// (badges, colors, escudo) lives outside this service; only the fields
// the scheduling core needs are mapped here.
type Club struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int       `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}
