package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mcoleague/match-center/models"
	"github.com/mcoleague/match-center/repositories"
)

// SlotConfig controls slot discretization. All wall-clock arithmetic
// happens in Location (the league timezone); only the final
// Slot.DatetimeUTC is converted to UTC.
type SlotConfig struct {
	StepMinutes     int
	DurationMinutes int
	MinLeadTime     time.Duration
	Location        *time.Location
}

func DefaultSlotConfig(loc *time.Location) SlotConfig {
	return SlotConfig{
		StepMinutes:     30,
		DurationMinutes: 60,
		MinLeadTime:     2 * time.Hour,
		Location:        loc,
	}
}

var weekdayLabels = [7]string{
	"Domingo", "Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado",
}

type SchedulingService interface {
	// AvailableSlots computes the bookable slots of a pending match by
	// intersecting both clubs' recurring availability inside the
	// horizon [now, match deadline].
	AvailableSlots(ctx context.Context, matchID int) ([]models.SlotDay, error)
}

type schedulingService struct {
	matchRepo        repositories.MatchRepository
	availabilityRepo repositories.AvailabilityRepository
	cfg              SlotConfig
	now              func() time.Time
}

func NewSchedulingService(
	matchRepo repositories.MatchRepository,
	availabilityRepo repositories.AvailabilityRepository,
	cfg SlotConfig,
) SchedulingService {
	return &schedulingService{
		matchRepo:        matchRepo,
		availabilityRepo: availabilityRepo,
		cfg:              cfg,
		now:              time.Now,
	}
}

func (s *schedulingService) AvailableSlots(ctx context.Context, matchID int) ([]models.SlotDay, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}

	home, err := s.availabilityRepo.ListByOwner(ctx, match.HomeClubID)
	if err != nil {
		return nil, fmt.Errorf("failed to load home availability for match %d: %w", matchID, err)
	}
	away, err := s.availabilityRepo.ListByOwner(ctx, match.AwayClubID)
	if err != nil {
		return nil, fmt.Errorf("failed to load away availability for match %d: %w", matchID, err)
	}

	return ComputeSlots(home, away, s.now(), match.Deadline, s.cfg), nil
}

// minuteInterval is a half-open [start, end) interval in minutes from
// midnight of one day.
type minuteInterval struct {
	start int
	end   int
}

// ComputeSlots is the pure slot intersection. For every day in the
// horizon it intersects the union of each club's windows for that
// weekday, discretizes the overlaps at StepMinutes, keeps starts whose
// full match duration fits in the overlap, and drops anything before
// horizonStart+MinLeadTime or after horizonEnd. Days without surviving
// slots are omitted; a club with no windows yields an empty result.
func ComputeSlots(home, away []models.AvailabilityWindow, horizonStart, horizonEnd time.Time, cfg SlotConfig) []models.SlotDay {
	days := make([]models.SlotDay, 0)
	if !horizonStart.Before(horizonEnd) {
		return days
	}

	homeByDay := windowsByWeekday(home)
	awayByDay := windowsByWeekday(away)

	loc := cfg.Location
	earliest := horizonStart.Add(cfg.MinLeadTime)

	start := horizonStart.In(loc)
	end := horizonEnd.In(loc)
	firstDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	lastDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)

	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		weekday := int(day.Weekday())
		overlaps := intersectIntervals(homeByDay[weekday], awayByDay[weekday])
		if len(overlaps) == 0 {
			continue
		}

		slots := make([]models.Slot, 0)
		for _, overlap := range overlaps {
			for _, startMin := range slotStarts(overlap, cfg.StepMinutes, cfg.DurationMinutes) {
				// Build the instant from wall-clock components so DST
				// shifts in the league timezone are handled correctly.
				instant := time.Date(day.Year(), day.Month(), day.Day(),
					startMin/60, startMin%60, 0, 0, loc)
				if instant.Before(earliest) || instant.After(horizonEnd) {
					continue
				}
				slots = append(slots, models.Slot{
					DatetimeUTC: instant.UTC(),
					TimeLabel:   models.FormatMinutes(startMin),
				})
			}
		}
		if len(slots) == 0 {
			continue
		}
		days = append(days, models.SlotDay{
			Date:  day.Format("2006-01-02"),
			Label: weekdayLabels[weekday],
			Slots: slots,
		})
	}
	return days
}

// windowsByWeekday groups windows per weekday, merging overlapping
// windows of the same owner into their union so they cannot produce
// duplicate slots.
func windowsByWeekday(windows []models.AvailabilityWindow) map[int][]minuteInterval {
	byDay := make(map[int][]minuteInterval)
	for _, w := range windows {
		if w.DayOfWeek < 0 || w.DayOfWeek > 6 || w.StartMin >= w.EndMin {
			continue
		}
		byDay[w.DayOfWeek] = append(byDay[w.DayOfWeek], minuteInterval{start: w.StartMin, end: w.EndMin})
	}
	for day, intervals := range byDay {
		byDay[day] = mergeIntervals(intervals)
	}
	return byDay
}

func mergeIntervals(intervals []minuteInterval) []minuteInterval {
	if len(intervals) <= 1 {
		return intervals
	}
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})
	merged := intervals[:1]
	for _, next := range intervals[1:] {
		last := &merged[len(merged)-1]
		if next.start <= last.end {
			if next.end > last.end {
				last.end = next.end
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// intersectIntervals computes the pairwise overlaps of two sorted,
// non-overlapping interval sets.
func intersectIntervals(a, b []minuteInterval) []minuteInterval {
	var out []minuteInterval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].start
		if b[j].start > start {
			start = b[j].start
		}
		end := a[i].end
		if b[j].end < end {
			end = b[j].end
		}
		if start < end {
			out = append(out, minuteInterval{start: start, end: end})
		}
		if a[i].end < b[j].end {
			i++
		} else {
			j++
		}
	}
	return out
}

// slotStarts discretizes one overlap into kickoff minutes: starts on
// the step grid with the full duration fitting before the overlap ends.
func slotStarts(overlap minuteInterval, stepMin, durationMin int) []int {
	var starts []int
	first := overlap.start
	if rem := first % stepMin; rem != 0 {
		first += stepMin - rem
	}
	for start := first; start+durationMin <= overlap.end; start += stepMin {
		starts = append(starts, start)
	}
	return starts
}
