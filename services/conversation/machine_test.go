package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"verdebot/models"
	"verdebot/services/catalog"
	"verdebot/services/estimate"
	"verdebot/services/extract"
	"verdebot/services/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Tuesday, 07:00 local time.
var machineNow = time.Date(2026, time.September, 1, 7, 0, 0, 0, time.Local)

// memStore round-trips sessions through JSON, like the Redis store does,
// so tests catch anything that would not survive serialization.
type memStore struct {
	sessions map[string][]byte
	loadErr  error
	saveErr  error
	saves    int
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string][]byte{}}
}

func (m *memStore) Load(_ context.Context, userID string) (*models.Session, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	raw, ok := m.sessions[userID]
	if !ok {
		return models.NewSession(userID), nil
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (m *memStore) Save(_ context.Context, session *models.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	m.sessions[session.UserID] = raw
	m.saves++
	return nil
}

func (m *memStore) get(t *testing.T, userID string) *models.Session {
	t.Helper()
	raw, ok := m.sessions[userID]
	require.True(t, ok, "no stored session for %s", userID)
	var sess models.Session
	require.NoError(t, json.Unmarshal(raw, &sess))
	return &sess
}

type memCalendar struct {
	busy        []models.BusyInterval
	freeBusyErr error
	createErr   error
	events      []models.CalendarEvent
}

func (c *memCalendar) FreeBusy(context.Context, time.Time, time.Time) ([]models.BusyInterval, error) {
	return c.busy, c.freeBusyErr
}

func (c *memCalendar) CreateEvent(_ context.Context, ev models.CalendarEvent) (string, error) {
	if c.createErr != nil {
		err := c.createErr
		if errors.Is(err, schedule.ErrSlotTaken) {
			// One lost race is enough for the retry tests.
			c.createErr = nil
			c.busy = append(c.busy, models.BusyInterval{Start: ev.Start, End: ev.End})
		}
		return "", err
	}
	c.events = append(c.events, ev)
	return "evt-1", nil
}

type memHistory struct {
	records []models.BookingRecord
	err     error
}

func (h *memHistory) Append(_ context.Context, record models.BookingRecord) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	h.records = append(h.records, record)
	return record.ID, nil
}

type memReminders struct {
	payloads []models.ReminderPayload
	err      error
}

func (r *memReminders) Schedule(_ context.Context, payload models.ReminderPayload) error {
	if r.err != nil {
		return r.err
	}
	r.payloads = append(r.payloads, payload)
	return nil
}

type fixture struct {
	svc       *DefaultConversationService
	store     *memStore
	calendar  *memCalendar
	history   *memHistory
	reminders *memReminders
}

func newFixture() *fixture {
	cat := catalog.Default()
	store := newMemStore()
	cal := &memCalendar{}
	hist := &memHistory{}
	rem := &memReminders{}
	svc := &DefaultConversationService{
		Store:     store,
		Extractor: &extract.KeywordExtractor{Catalog: cat, Now: func() time.Time { return machineNow }},
		Catalog:   cat,
		Estimator: estimate.Estimator{Catalog: cat},
		Calendar:  cal,
		Searcher: &schedule.Searcher{
			Calendar: cal,
			Hours: schedule.WorkingHours{
				StartHour:     8,
				EndHour:       18,
				Saturday:      true,
				LookaheadDays: 14,
				Location:      time.Local,
			},
			Now: func() time.Time { return machineNow },
		},
		History:   hist,
		Reminders: rem,
		Logger:    zap.NewNop(),
	}
	return &fixture{svc: svc, store: store, calendar: cal, history: hist, reminders: rem}
}

func (f *fixture) turn(t *testing.T, text string) string {
	t.Helper()
	reply, err := f.svc.HandleTurn(context.Background(), "user-1", text)
	require.NoError(t, err)
	return reply
}

// fillHedgeJob walks a session from idle to a quoted hedge job.
func fillHedgeJob(t *testing.T, f *fixture) string {
	t.Helper()
	f.turn(t, "can you trim my hedge")
	f.turn(t, "about 36 meters")
	f.turn(t, "1.2")
	f.turn(t, "access is easy")
	f.turn(t, "yes there is waste")
	return f.turn(t, "no obstacles at all")
}

func TestHandleTurnAsksRequiredFieldsInOrder(t *testing.T) {
	f := newFixture()

	reply := f.turn(t, "can you trim my hedge")
	assert.Contains(t, reply, "Happy to quote hedge-trim")
	assert.Contains(t, reply, catalog.QuestionFor(models.ServiceHedgeTrim, models.FieldLengthM))

	sess := f.store.get(t, "user-1")
	assert.Equal(t, models.PhaseCollecting, sess.Phase)
	require.Len(t, sess.Jobs, 1)
	assert.Equal(t, models.ServiceHedgeTrim, sess.Jobs[0].Service)

	reply = f.turn(t, "about 36 meters")
	assert.Equal(t, catalog.QuestionFor(models.ServiceHedgeTrim, models.FieldHeightM), reply)

	sess = f.store.get(t, "user-1")
	assert.Equal(t, "36", sess.Jobs[0].Get(models.FieldLengthM))
}

func TestHandleTurnRepeatsQuestionOnUnparsableAnswer(t *testing.T) {
	f := newFixture()
	f.turn(t, "can you trim my hedge")

	question := catalog.QuestionFor(models.ServiceHedgeTrim, models.FieldLengthM)
	reply := f.turn(t, "dunno")
	assert.Equal(t, question, reply)

	// Still waiting on the same field, nothing committed.
	sess := f.store.get(t, "user-1")
	assert.Equal(t, models.PhaseCollecting, sess.Phase)
	assert.Empty(t, sess.Jobs[0].Get(models.FieldLengthM))
}

func TestHandleTurnQuotesWhenJobComplete(t *testing.T) {
	f := newFixture()

	reply := fillHedgeJob(t, f)
	assert.Contains(t, reply, "Total: 3.8h, 114.00€")
	assert.Contains(t, reply, "book an appointment")

	sess := f.store.get(t, "user-1")
	assert.Equal(t, models.PhaseQuoted, sess.Phase)
}

func TestHandleTurnHintsPrefillFields(t *testing.T) {
	f := newFixture()

	// The count arrives with the request, so the first question is the
	// next missing field.
	reply := f.turn(t, "can you prune 3 trees")
	assert.Contains(t, reply, catalog.QuestionFor(models.ServiceTreePrune, models.FieldSize))

	sess := f.store.get(t, "user-1")
	assert.Equal(t, "3", sess.Jobs[0].Get(models.FieldCount))
}

func TestHandleTurnCollectsMultipleJobsInOrder(t *testing.T) {
	f := newFixture()

	reply := f.turn(t, "I need the hedge trimmed and the lawn mowed")
	assert.Contains(t, reply, catalog.QuestionFor(models.ServiceHedgeTrim, models.FieldLengthM))

	sess := f.store.get(t, "user-1")
	require.Len(t, sess.Jobs, 2)
	assert.Equal(t, models.ServiceHedgeTrim, sess.Jobs[0].Service)
	assert.Equal(t, models.ServiceLawnMow, sess.Jobs[1].Service)
}

func TestHandleTurnCancelResetsSession(t *testing.T) {
	f := newFixture()
	f.turn(t, "can you trim my hedge")

	reply := f.turn(t, "never mind, forget it")
	assert.Equal(t, replyCancelled, reply)

	sess := f.store.get(t, "user-1")
	assert.Equal(t, models.PhaseIdle, sess.Phase)
	assert.Empty(t, sess.Jobs)
}

func TestHandleTurnBookingFlowEndToEnd(t *testing.T) {
	f := newFixture()
	fillHedgeJob(t, f)

	reply := f.turn(t, "can you book tomorrow morning")
	// 3.8h starting at the Wednesday morning window open.
	wednesday := time.Date(2026, time.September, 2, 8, 0, 0, 0, time.Local)
	assert.Contains(t, reply, "Shall I book it?")
	assert.Contains(t, reply, wednesday.Format("Monday 02/01"))
	assert.Contains(t, reply, "08:00")
	assert.Contains(t, reply, "11:48")

	sess := f.store.get(t, "user-1")
	assert.Equal(t, models.PhaseAwaitingConfirmation, sess.Phase)
	require.NotNil(t, sess.ProposedSlot)
	assert.Equal(t, wednesday, sess.ProposedSlot.Start)

	reply = f.turn(t, "yes")
	assert.Contains(t, reply, "Booked!")

	require.Len(t, f.calendar.events, 1)
	assert.Equal(t, wednesday, f.calendar.events[0].Start)
	require.Len(t, f.history.records, 1)
	assert.Equal(t, "user-1", f.history.records[0].UserID)
	assert.Equal(t, "evt-1", f.history.records[0].EventID)
	assert.InDelta(t, 3.8, f.history.records[0].TotalHours, 1e-9)
	assert.InDelta(t, 114.0, f.history.records[0].TotalPrice, 1e-9)
	require.Len(t, f.reminders.payloads, 1)
	assert.Equal(t, wednesday, f.reminders.payloads[0].Start)

	sess = f.store.get(t, "user-1")
	assert.Equal(t, models.PhaseIdle, sess.Phase)
	assert.Empty(t, sess.Jobs)
}

func TestHandleTurnConfirmationIsIdempotent(t *testing.T) {
	f := newFixture()
	fillHedgeJob(t, f)
	f.turn(t, "can you book tomorrow morning")
	f.turn(t, "yes")

	// A duplicate "yes" after the reset must not book again.
	reply := f.turn(t, "yes")
	assert.Equal(t, replyNothingPending, reply)
	assert.Len(t, f.calendar.events, 1)
	assert.Len(t, f.history.records, 1)
}

func TestHandleTurnAsksForDayWhenPreferenceInsufficient(t *testing.T) {
	f := newFixture()
	fillHedgeJob(t, f)

	reply := f.turn(t, "yes, book it")
	assert.Equal(t, replyAskDay, reply)

	sess := f.store.get(t, "user-1")
	assert.Equal(t, models.PhaseAwaitingPreference, sess.Phase)

	reply = f.turn(t, "tomorrow")
	assert.Equal(t, replyAskPartOfDay, reply)

	reply = f.turn(t, "morning")
	assert.Contains(t, reply, "Shall I book it?")
}

func TestHandleTurnNegativeAbandonsProposalKeepsQuote(t *testing.T) {
	f := newFixture()
	fillHedgeJob(t, f)
	f.turn(t, "can you book tomorrow morning")

	reply := f.turn(t, "no")
	assert.Equal(t, slotAbandonedReply(), reply)

	sess := f.store.get(t, "user-1")
	assert.Equal(t, models.PhaseQuoted, sess.Phase)
	assert.Nil(t, sess.ProposedSlot)
	assert.Len(t, sess.Jobs, 1)
	assert.Empty(t, f.calendar.events)
}

func TestHandleTurnCounterProposalReplacesSlot(t *testing.T) {
	f := newFixture()
	fillHedgeJob(t, f)
	f.turn(t, "can you book tomorrow morning")

	// A different preference at the confirmation prompt restarts the
	// search instead of reading as a plain no.
	reply := f.turn(t, "thursday afternoon")
	assert.Contains(t, reply, "Shall I book it?")

	sess := f.store.get(t, "user-1")
	assert.Equal(t, models.PhaseAwaitingConfirmation, sess.Phase)
	require.NotNil(t, sess.ProposedSlot)
	assert.Equal(t, time.Date(2026, time.September, 3, 14, 0, 0, 0, time.Local), sess.ProposedSlot.Start)
}

func TestHandleTurnNoAvailabilityKeepsQuote(t *testing.T) {
	f := newFixture()
	f.calendar.busy = []models.BusyInterval{{
		Start: time.Date(2026, time.September, 2, 8, 0, 0, 0, time.Local),
		End:   time.Date(2026, time.September, 2, 18, 0, 0, 0, time.Local),
	}}
	fillHedgeJob(t, f)

	reply := f.turn(t, "can you book tomorrow morning")
	assert.Equal(t, replyNoAvailability, reply)

	sess := f.store.get(t, "user-1")
	assert.Equal(t, models.PhaseQuoted, sess.Phase)
	assert.Nil(t, sess.Preference)
}

func TestHandleTurnManualSchedulingWithoutCalendar(t *testing.T) {
	f := newFixture()
	f.svc.Calendar = nil
	f.svc.Searcher = nil
	fillHedgeJob(t, f)

	reply := f.turn(t, "can you book tomorrow morning")
	assert.Equal(t, replyManualScheduling, reply)

	sess := f.store.get(t, "user-1")
	assert.Equal(t, models.PhaseQuoted, sess.Phase)
	assert.Len(t, sess.Jobs, 1)
}

func TestHandleTurnCalendarFailureLeavesSessionUntouched(t *testing.T) {
	f := newFixture()
	fillHedgeJob(t, f)
	savesBefore := f.store.saves

	f.calendar.freeBusyErr = errors.New("calendar down")
	reply := f.turn(t, "can you book tomorrow morning")
	assert.Equal(t, replyUnavailable, reply)

	// The failed turn must not be committed.
	assert.Equal(t, savesBefore, f.store.saves)
	sess := f.store.get(t, "user-1")
	assert.Equal(t, models.PhaseQuoted, sess.Phase)

	// After the calendar recovers the same message succeeds.
	f.calendar.freeBusyErr = nil
	reply = f.turn(t, "can you book tomorrow morning")
	assert.Contains(t, reply, "Shall I book it?")
}

// fillPestJob quotes a short job (1.5h) so two proposals fit in one
// morning window.
func fillPestJob(t *testing.T, f *fixture) string {
	t.Helper()
	f.turn(t, "pest treatment please")
	f.turn(t, "roses")
	f.turn(t, "aphids")
	return f.turn(t, "5")
}

func TestHandleTurnSlotTakenTriggersResearch(t *testing.T) {
	f := newFixture()
	fillPestJob(t, f)
	f.turn(t, "can you book tomorrow morning")

	f.calendar.createErr = schedule.ErrSlotTaken
	reply := f.turn(t, "yes")

	// Lost the race: a fresh proposal, no booking yet.
	assert.Contains(t, reply, "Shall I book it?")
	assert.Empty(t, f.history.records)
	assert.Empty(t, f.calendar.events)

	sess := f.store.get(t, "user-1")
	assert.Equal(t, models.PhaseAwaitingConfirmation, sess.Phase)
	require.NotNil(t, sess.ProposedSlot)
	// The taken interval is now busy, so the new slot starts after it.
	assert.True(t, sess.ProposedSlot.Start.After(time.Date(2026, time.September, 2, 8, 0, 0, 0, time.Local)))
}

func TestHandleTurnHistoryFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture()
	f.history.err = errors.New("mongo down")
	fillHedgeJob(t, f)
	f.turn(t, "can you book tomorrow morning")

	reply := f.turn(t, "yes")
	assert.Contains(t, reply, "Booked!")
	assert.Len(t, f.calendar.events, 1)
}

func TestHandleTurnStoreLoadFailureDegradesGracefully(t *testing.T) {
	f := newFixture()
	f.store.loadErr = errors.New("redis down")

	reply := f.turn(t, "can you trim my hedge")
	assert.Equal(t, replyUnavailable, reply)
}

func TestHandleTurnIdleChatterGetsScriptedAdvice(t *testing.T) {
	f := newFixture()

	reply := f.turn(t, "how often should I water roses")
	assert.Equal(t, replyScriptedAdvice, reply)

	sess := f.store.get(t, "user-1")
	assert.Equal(t, models.PhaseIdle, sess.Phase)
}

func TestHandleTurnAddingServiceAfterQuoteRequotes(t *testing.T) {
	f := newFixture()
	fillHedgeJob(t, f)

	reply := f.turn(t, "can you also mow the lawn")
	assert.Contains(t, reply, catalog.QuestionFor(models.ServiceLawnMow, models.FieldAreaM2))

	sess := f.store.get(t, "user-1")
	assert.Equal(t, models.PhaseCollecting, sess.Phase)
	require.Len(t, sess.Jobs, 2)
	// The finished hedge answers survive.
	assert.Equal(t, "36", sess.Jobs[0].Get(models.FieldLengthM))
}

func TestHandleTurnSerializesTurnsPerUser(t *testing.T) {
	f := newFixture()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = f.svc.HandleTurn(context.Background(), "user-1", "can you trim my hedge")
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	sess := f.store.get(t, "user-1")
	require.Len(t, sess.Jobs, 1)
	assert.Equal(t, models.ServiceHedgeTrim, sess.Jobs[0].Service)
}
