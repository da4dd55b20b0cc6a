package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"verdebot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCalendar serves a fixed busy list.
type fakeCalendar struct {
	busy []models.BusyInterval
	err  error
}

func (f *fakeCalendar) FreeBusy(context.Context, time.Time, time.Time) ([]models.BusyInterval, error) {
	return f.busy, f.err
}

func (f *fakeCalendar) CreateEvent(context.Context, models.CalendarEvent) (string, error) {
	return "", errors.New("not implemented")
}

// Tuesday, 07:00 local time.
var testNow = time.Date(2026, time.September, 1, 7, 0, 0, 0, time.Local)

func newSearcher(cal Calendar) *Searcher {
	return &Searcher{
		Calendar: cal,
		Hours: WorkingHours{
			StartHour:     8,
			EndHour:       18,
			Saturday:      true,
			LookaheadDays: 14,
			Location:      time.Local,
		},
		Now: func() time.Time { return testNow },
	}
}

func at(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, time.Local)
}

func TestFindSlotEmptyCalendarReturnsWindowStart(t *testing.T) {
	s := newSearcher(&fakeCalendar{})

	slot, err := s.FindSlot(context.Background(), SlotRequest{DurationHours: 2})
	require.NoError(t, err)
	require.NotNil(t, slot)

	assert.Equal(t, at(testNow, 8, 0), slot.Start)
	assert.Equal(t, at(testNow, 10, 0), slot.End)
}

func TestFindSlotPrefersGapBeforeBusyInterval(t *testing.T) {
	// Busy 10:00-11:00; a 2h request must take the earlier gap even
	// though the one after the meeting is larger.
	s := newSearcher(&fakeCalendar{busy: []models.BusyInterval{
		{Start: at(testNow, 10, 0), End: at(testNow, 11, 0)},
	}})

	slot, err := s.FindSlot(context.Background(), SlotRequest{DurationHours: 2})
	require.NoError(t, err)
	require.NotNil(t, slot)

	assert.Equal(t, at(testNow, 8, 0), slot.Start)
	assert.Equal(t, at(testNow, 10, 0), slot.End)
}

func TestFindSlotSkipsFullyBookedDay(t *testing.T) {
	s := newSearcher(&fakeCalendar{busy: []models.BusyInterval{
		{Start: at(testNow, 8, 0), End: at(testNow, 18, 0)},
	}})

	slot, err := s.FindSlot(context.Background(), SlotRequest{DurationHours: 4})
	require.NoError(t, err)
	require.NotNil(t, slot)

	wednesday := testNow.AddDate(0, 0, 1)
	assert.Equal(t, at(wednesday, 8, 0), slot.Start)
	assert.Equal(t, at(wednesday, 12, 0), slot.End)
}

func TestFindSlotAdvancesCursorThroughAdjacentBusy(t *testing.T) {
	s := newSearcher(&fakeCalendar{busy: []models.BusyInterval{
		{Start: at(testNow, 8, 0), End: at(testNow, 9, 30)},
		{Start: at(testNow, 9, 0), End: at(testNow, 12, 0)}, // overlaps previous
	}})

	slot, err := s.FindSlot(context.Background(), SlotRequest{DurationHours: 3})
	require.NoError(t, err)
	require.NotNil(t, slot)

	assert.Equal(t, at(testNow, 12, 0), slot.Start)
	assert.Equal(t, at(testNow, 15, 0), slot.End)
}

func TestFindSlotHonorsDayPreference(t *testing.T) {
	s := newSearcher(&fakeCalendar{})
	thursday := time.Date(2026, time.September, 3, 0, 0, 0, 0, time.Local)

	slot, err := s.FindSlot(context.Background(), SlotRequest{
		DurationHours: 2,
		Day:           &thursday,
		PartOfDay:     models.PartOfDayMorning,
	})
	require.NoError(t, err)
	require.NotNil(t, slot)

	assert.Equal(t, at(thursday, 8, 0), slot.Start)
	assert.Equal(t, at(thursday, 10, 0), slot.End)
}

func TestFindSlotMorningWindowTooSmall(t *testing.T) {
	// Morning runs 8:00-13:00; a 6h job cannot fit it.
	s := newSearcher(&fakeCalendar{})
	thursday := time.Date(2026, time.September, 3, 0, 0, 0, 0, time.Local)

	slot, err := s.FindSlot(context.Background(), SlotRequest{
		DurationHours: 6,
		Day:           &thursday,
		PartOfDay:     models.PartOfDayMorning,
	})
	require.NoError(t, err)
	assert.Nil(t, slot)
}

func TestFindSlotAfternoonStartsAtFourteen(t *testing.T) {
	s := newSearcher(&fakeCalendar{})

	slot, err := s.FindSlot(context.Background(), SlotRequest{
		DurationHours: 2,
		PartOfDay:     models.PartOfDayAfternoon,
	})
	require.NoError(t, err)
	require.NotNil(t, slot)

	assert.Equal(t, at(testNow, 14, 0), slot.Start)
}

func TestFindSlotSundayNotWorked(t *testing.T) {
	s := newSearcher(&fakeCalendar{})
	sunday := time.Date(2026, time.September, 6, 0, 0, 0, 0, time.Local)

	slot, err := s.FindSlot(context.Background(), SlotRequest{
		DurationHours: 2,
		Day:           &sunday,
	})
	require.NoError(t, err)
	assert.Nil(t, slot)
}

func TestFindSlotTodayStartsAtNextIncrement(t *testing.T) {
	s := newSearcher(&fakeCalendar{})
	s.Now = func() time.Time {
		return time.Date(2026, time.September, 1, 9, 10, 0, 0, time.Local)
	}

	slot, err := s.FindSlot(context.Background(), SlotRequest{DurationHours: 1})
	require.NoError(t, err)
	require.NotNil(t, slot)

	assert.Equal(t, at(testNow, 9, 30), slot.Start)
}

func TestFindSlotHonorsEarliestStart(t *testing.T) {
	s := newSearcher(&fakeCalendar{})
	thursday := time.Date(2026, time.September, 3, 0, 0, 0, 0, time.Local)
	earliest := at(thursday, 10, 0)

	slot, err := s.FindSlot(context.Background(), SlotRequest{
		DurationHours: 2,
		Day:           &thursday,
		EarliestStart: &earliest,
	})
	require.NoError(t, err)
	require.NotNil(t, slot)

	assert.Equal(t, earliest, slot.Start)
}

func TestFindSlotPropagatesCalendarError(t *testing.T) {
	s := newSearcher(&fakeCalendar{err: errors.New("calendar down")})

	_, err := s.FindSlot(context.Background(), SlotRequest{DurationHours: 2})
	assert.Error(t, err)
}

func TestFindSlotRejectsNonPositiveDuration(t *testing.T) {
	s := newSearcher(&fakeCalendar{})

	_, err := s.FindSlot(context.Background(), SlotRequest{DurationHours: 0})
	assert.Error(t, err)
}
