// Package schedule computes bookable time slots by subtracting an
// external calendar's busy intervals from configured working windows.
package schedule

import (
	"context"
	"errors"
	"time"

	"verdebot/models"
)

// ErrSlotTaken is returned by CreateEvent when the requested range
// collides with an event inserted after the slot was proposed.
var ErrSlotTaken = errors.New("schedule: slot no longer free")

// Calendar is the external calendar collaborator. Both methods may be
// slow; callers bound them with a context deadline.
type Calendar interface {
	// FreeBusy returns busy intervals overlapping [from, to), sorted by
	// start time.
	FreeBusy(ctx context.Context, from, to time.Time) ([]models.BusyInterval, error)
	// CreateEvent inserts an event and returns its id.
	CreateEvent(ctx context.Context, ev models.CalendarEvent) (string, error)
}

// WorkingHours describes the recurring daily window candidate slots are
// generated from.
type WorkingHours struct {
	StartHour     int
	EndHour       int
	Saturday      bool
	LookaheadDays int
	Location      *time.Location
}

// SlotRequest narrows the search. Zero-value fields mean no preference.
type SlotRequest struct {
	DurationHours float64
	// Day restricts the search to a single calendar date.
	Day *time.Time
	// PartOfDay clips each window to its morning or afternoon range.
	PartOfDay models.PartOfDay
	// EarliestStart advances a window's start when it falls inside it.
	EarliestStart *time.Time
}
