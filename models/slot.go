package models

import "time"

// Slot is a concrete bookable kickoff instant. Slots are derived per
// request and never persisted.
type Slot struct {
	DatetimeUTC time.Time `json:"datetime_utc"`
	TimeLabel   string    `json:"time_label"`
}

// SlotDay groups the slots of one calendar day in the league timezone.
type SlotDay struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Slots []Slot `json:"slots"`
}
