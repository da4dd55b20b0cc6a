package schedule

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"verdebot/models"
)

const (
	// Today's window never starts in the past; it is advanced to the
	// next increment boundary from now.
	startIncrement = 30 * time.Minute
	morningEndHour   = 13
	afternoonStartHour = 14
)

// Searcher finds the earliest feasible slot for a requested duration.
type Searcher struct {
	Calendar Calendar
	Hours    WorkingHours
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// FindSlot returns the first contiguous free slot that fits the request,
// or nil when nothing in the lookahead horizon fits. The returned slot
// is a proposal, not a reservation.
func (s *Searcher) FindSlot(ctx context.Context, req SlotRequest) (*models.TimeRange, error) {
	if req.DurationHours <= 0 {
		return nil, fmt.Errorf("schedule: non-positive duration %.1f", req.DurationHours)
	}
	now := s.now()
	duration := time.Duration(math.Round(req.DurationHours*60)) * time.Minute

	horizonStart := s.dayStart(now)
	horizonEnd := s.dayStart(now.AddDate(0, 0, s.lookahead())).Add(24 * time.Hour)
	busy, err := s.Calendar.FreeBusy(ctx, horizonStart, horizonEnd)
	if err != nil {
		return nil, fmt.Errorf("schedule: free/busy query: %w", err)
	}
	// The collaborator promises sorted output, but the sweep depends on
	// it, so sort rather than trust.
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })

	for offset := 0; offset <= s.lookahead(); offset++ {
		day := now.AddDate(0, 0, offset)
		if req.Day != nil && !sameDate(day, *req.Day) {
			continue
		}
		if !s.workingDay(day) {
			continue
		}
		window, ok := s.window(day, offset == 0, now, req)
		if !ok {
			continue
		}
		if slot := firstFit(window, busy, duration); slot != nil {
			return slot, nil
		}
	}
	return nil, nil
}

// window builds the candidate working window for a day, applying
// part-of-day clipping, the earliest-start clamp, and the "today" rule.
func (s *Searcher) window(day time.Time, today bool, now time.Time, req SlotRequest) (models.TimeRange, bool) {
	start := s.at(day, s.Hours.StartHour)
	end := s.at(day, s.Hours.EndHour)

	switch req.PartOfDay {
	case models.PartOfDayMorning:
		end = minTime(end, s.at(day, morningEndHour))
	case models.PartOfDayAfternoon:
		start = maxTime(start, s.at(day, afternoonStartHour))
	}
	if req.EarliestStart != nil {
		start = maxTime(start, *req.EarliestStart)
	}
	if today {
		start = maxTime(start, now.Truncate(startIncrement).Add(startIncrement))
	}
	if !start.Before(end) {
		return models.TimeRange{}, false
	}
	return models.TimeRange{Start: start, End: end}, true
}

// firstFit sweeps the window left to right against sorted busy
// intervals and returns the earliest gap large enough for the duration.
func firstFit(window models.TimeRange, busy []models.BusyInterval, duration time.Duration) *models.TimeRange {
	cursor := window.Start
	for _, b := range busy {
		if !b.End.After(cursor) || !b.Start.Before(window.End) {
			continue
		}
		if b.Start.Sub(cursor) >= duration {
			return &models.TimeRange{Start: cursor, End: cursor.Add(duration)}
		}
		// Advance past the conflict; the cursor never moves backward.
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if window.End.Sub(cursor) >= duration {
		return &models.TimeRange{Start: cursor, End: cursor.Add(duration)}
	}
	return nil
}

func (s *Searcher) workingDay(day time.Time) bool {
	switch day.Weekday() {
	case time.Sunday:
		return false
	case time.Saturday:
		return s.Hours.Saturday
	default:
		return true
	}
}

func (s *Searcher) now() time.Time {
	if s.Now != nil {
		return s.Now().In(s.location())
	}
	return time.Now().In(s.location())
}

func (s *Searcher) location() *time.Location {
	if s.Hours.Location != nil {
		return s.Hours.Location
	}
	return time.Local
}

func (s *Searcher) lookahead() int {
	if s.Hours.LookaheadDays > 0 {
		return s.Hours.LookaheadDays
	}
	return 14
}

func (s *Searcher) at(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, s.location())
}

func (s *Searcher) dayStart(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.location())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
