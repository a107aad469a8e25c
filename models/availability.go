package models

import (
	"fmt"
	"time"
)

// AvailabilityWindow is a recurring weekly interval during which a club
// can play. Times are minutes from midnight in the league timezone,
// DayOfWeek uses the Sunday=0 convention (same as time.Weekday).
type AvailabilityWindow struct {
	ID        int       `json:"id"`
	OwnerID   int       `json:"clube_id"`
	DayOfWeek int       `json:"day_of_week"`
	StartMin  int       `json:"start_min"`
	EndMin    int       `json:"end_min"`
	CreatedAt time.Time `json:"created_at"`
}

const minutesPerDay = 24 * 60

func (w AvailabilityWindow) Validate() error {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week must be between 0 (Sunday) and 6, got %d", w.DayOfWeek)
	}
	if w.StartMin < 0 || w.EndMin > minutesPerDay {
		return fmt.Errorf("window must fit within a single day (minutes 0..%d)", minutesPerDay)
	}
	if w.StartMin >= w.EndMin {
		return fmt.Errorf("window start (%s) must be before end (%s)",
			FormatMinutes(w.StartMin), FormatMinutes(w.EndMin))
	}
	return nil
}

// FormatMinutes renders minutes-from-midnight as an HH:MM label.
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
