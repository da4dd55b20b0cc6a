package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"verdebot/models"
	"verdebot/services/catalog"
	"verdebot/services/schedule"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// calendarTimeout bounds the two potentially slow collaborator calls.
const calendarTimeout = 5 * time.Second

// HandleTurn processes one inbound message. Collaborator failures never
// corrupt state: the session is saved only when the turn fully applied,
// so a degraded turn leaves the user exactly where they were.
func (s *DefaultConversationService) HandleTurn(ctx context.Context, userID, text string) (string, error) {
	lock := s.locks.forUser(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.Store.Load(ctx, userID)
	if err != nil {
		s.Logger.Error("session load failed", zap.String("user", userID), zap.Error(err))
		return replyUnavailable, nil
	}

	ext, err := s.Extractor.Extract(ctx, text, session)
	if err != nil {
		s.Logger.Error("extraction failed", zap.String("user", userID), zap.Error(err))
		return replyUnavailable, nil
	}

	session.RememberTurn(text, time.Now())
	reply, commit := s.dispatch(ctx, session, ext, text)
	if !commit {
		return reply, nil
	}

	if err := s.Store.Save(ctx, session); err != nil {
		s.Logger.Error("session save failed", zap.String("user", userID), zap.Error(err))
		return replyUnavailable, nil
	}
	return reply, nil
}

func (s *DefaultConversationService) dispatch(ctx context.Context, sess *models.Session, ext models.Extraction, text string) (string, bool) {
	switch sess.Phase {
	case models.PhaseCollecting:
		return s.handleCollecting(ctx, sess, ext, text)
	case models.PhaseQuoted:
		return s.handleQuoted(ctx, sess, ext, text)
	case models.PhaseAwaitingPreference:
		return s.handleAwaitingPreference(ctx, sess, ext, text)
	case models.PhaseAwaitingConfirmation:
		return s.handleAwaitingConfirmation(ctx, sess, ext, text)
	default:
		return s.handleIdle(ctx, sess, ext, text)
	}
}

func (s *DefaultConversationService) handleIdle(ctx context.Context, sess *models.Session, ext models.Extraction, text string) (string, bool) {
	if len(ext.ServiceCandidates) > 0 {
		intro := serviceIntro(ext.ServiceCandidates)
		s.addJobs(sess, ext)
		reply, commit := s.advance(sess)
		return intro + reply, commit
	}
	if ext.Affirmative || ext.CancelSignal {
		// Stale confirmation or cancellation with nothing in flight:
		// resending "yes" after a booking must stay a no-op.
		return replyNothingPending, true
	}
	return s.advise(ctx, text), true
}

func (s *DefaultConversationService) handleCollecting(ctx context.Context, sess *models.Session, ext models.Extraction, text string) (string, bool) {
	if ext.CancelSignal {
		sess.Reset()
		return replyCancelled, true
	}

	s.applyHints(sess, ext.FieldHints)

	idx, field, ok := s.pendingQuestion(sess)
	if ok && !s.Catalog.IsValid(sess.Jobs[idx], field) {
		if !s.Catalog.ApplyAnswer(&sess.Jobs[idx], field, text) {
			// Unparsable answer: no state advance, identical question.
			return catalog.QuestionFor(sess.Jobs[idx].Service, field), true
		}
	}
	return s.advance(sess)
}

func (s *DefaultConversationService) handleQuoted(ctx context.Context, sess *models.Session, ext models.Extraction, text string) (string, bool) {
	if ext.CancelSignal {
		sess.Reset()
		return replyCancelled, true
	}
	if added := s.addJobs(sess, ext); added > 0 {
		return s.advance(sess)
	}
	if ext.BookingSignal || ext.Affirmative || ext.HasBookingPreference() {
		return s.pursueBooking(ctx, sess, ext)
	}
	return s.advise(ctx, text), true
}

func (s *DefaultConversationService) handleAwaitingPreference(ctx context.Context, sess *models.Session, ext models.Extraction, text string) (string, bool) {
	if ext.CancelSignal {
		sess.Reset()
		return replyCancelled, true
	}
	if ext.HasBookingPreference() || ext.BookingSignal {
		return s.pursueBooking(ctx, sess, ext)
	}
	return s.advise(ctx, text), true
}

func (s *DefaultConversationService) handleAwaitingConfirmation(ctx context.Context, sess *models.Session, ext models.Extraction, text string) (string, bool) {
	if ext.Affirmative {
		return s.confirmBooking(ctx, sess)
	}
	// Any non-affirmative input abandons the proposal but keeps the
	// quote and jobs; the message is then re-read as a fresh turn.
	sess.ProposedSlot = nil
	sess.Preference = nil
	sess.Phase = models.PhaseQuoted
	if ext.Negative && !ext.HasBookingPreference() && !ext.CancelSignal {
		return slotAbandonedReply(), true
	}
	return s.handleQuoted(ctx, sess, ext, text)
}

// pursueBooking merges preferences and either asks for the missing one
// or runs the slot search.
func (s *DefaultConversationService) pursueBooking(ctx context.Context, sess *models.Session, ext models.Extraction) (string, bool) {
	if s.Calendar == nil || s.Searcher == nil {
		sess.Phase = models.PhaseQuoted
		return replyManualScheduling, true
	}
	if sess.Preference == nil {
		sess.Preference = &models.BookingPreference{}
	}
	sess.Preference.Merge(ext.DayPreference, ext.PartOfDay, ext.StartMinute)

	if !sess.Preference.Sufficient() {
		sess.Phase = models.PhaseAwaitingPreference
		if sess.Preference.Day == nil {
			return replyAskDay, true
		}
		return replyAskPartOfDay, true
	}
	return s.proposeSlot(ctx, sess)
}

func (s *DefaultConversationService) proposeSlot(ctx context.Context, sess *models.Session) (string, bool) {
	quote, err := s.Estimator.EstimateAll(sess.Jobs)
	if err != nil {
		s.Logger.Error("estimate failed while booking", zap.Error(err))
		return replyUnavailable, false
	}

	req := schedule.SlotRequest{
		DurationHours: quote.TotalHours,
		Day:           sess.Preference.Day,
		PartOfDay:     sess.Preference.PartOfDay,
	}
	if sess.Preference.Day != nil && sess.Preference.StartMinute != nil {
		d := *sess.Preference.Day
		earliest := time.Date(d.Year(), d.Month(), d.Day(), 0, *sess.Preference.StartMinute, 0, 0, d.Location())
		req.EarliestStart = &earliest
	}

	cctx, cancel := context.WithTimeout(ctx, calendarTimeout)
	defer cancel()
	slot, err := s.Searcher.FindSlot(cctx, req)
	if err != nil {
		s.Logger.Error("slot search failed", zap.Error(err))
		return replyUnavailable, false
	}
	if slot == nil {
		sess.Phase = models.PhaseQuoted
		sess.Preference = nil
		return replyNoAvailability, true
	}

	sess.ProposedSlot = slot
	sess.Phase = models.PhaseAwaitingConfirmation
	return proposalReply(*slot), true
}

// confirmBooking commits the proposed slot: calendar event first, then
// the append-only history record, then the session reset.
func (s *DefaultConversationService) confirmBooking(ctx context.Context, sess *models.Session) (string, bool) {
	if sess.ProposedSlot == nil {
		// Stale pointer; re-derive instead of trusting it.
		sess.Phase = models.PhaseQuoted
		return s.pursueBooking(ctx, sess, models.Extraction{BookingSignal: true})
	}
	slot := *sess.ProposedSlot

	quote, err := s.Estimator.EstimateAll(sess.Jobs)
	if err != nil {
		s.Logger.Error("estimate failed while confirming", zap.Error(err))
		return replyUnavailable, false
	}

	ev := models.CalendarEvent{
		Summary:     fmt.Sprintf("Garden work: %s", jobsSummary(sess.Jobs)),
		Description: fmt.Sprintf("Quoted %.1fh, %.2f€ for %s", quote.TotalHours, quote.TotalPrice, sess.UserID),
		Start:       slot.Start,
		End:         slot.End,
	}
	cctx, cancel := context.WithTimeout(ctx, calendarTimeout)
	defer cancel()
	eventID, err := s.Calendar.CreateEvent(cctx, ev)
	if errors.Is(err, schedule.ErrSlotTaken) {
		// Lost the race between proposal and confirmation; look again.
		s.Logger.Warn("proposed slot taken, re-searching", zap.Time("start", slot.Start))
		sess.ProposedSlot = nil
		return s.proposeSlot(ctx, sess)
	}
	if err != nil {
		s.Logger.Error("event creation failed", zap.Error(err))
		return replyUnavailable, false
	}

	record := models.BookingRecord{
		ID:         uuid.New().String(),
		UserID:     sess.UserID,
		Jobs:       append([]models.Job(nil), sess.Jobs...),
		TotalHours: quote.TotalHours,
		TotalPrice: quote.TotalPrice,
		EventID:    eventID,
		Start:      slot.Start,
		End:        slot.End,
		CreatedAt:  time.Now(),
	}
	if _, err := s.History.Append(ctx, record); err != nil {
		// The calendar event exists; surface the inconsistency in logs
		// rather than failing the user's confirmation.
		s.Logger.Error("history append failed", zap.String("event", eventID), zap.Error(err))
	}

	if s.Reminders != nil {
		payload := models.ReminderPayload{
			RecordID: record.ID,
			UserID:   record.UserID,
			Summary:  ev.Summary,
			Start:    record.Start,
		}
		if err := s.Reminders.Schedule(ctx, payload); err != nil {
			s.Logger.Warn("reminder scheduling failed", zap.Error(err))
		}
	}

	sess.Reset()
	return confirmationReply(record), true
}

// advance asks the next missing question or, when every job is
// complete, computes the quote and moves to QUOTED.
func (s *DefaultConversationService) advance(sess *models.Session) (string, bool) {
	for i := range sess.Jobs {
		if field, missing := s.Catalog.NextMissingField(sess.Jobs[i]); missing {
			sess.Phase = models.PhaseCollecting
			sess.Pending = &models.PendingQuestion{JobIndex: i, Field: field}
			return catalog.QuestionFor(sess.Jobs[i].Service, field), true
		}
	}
	sess.Pending = nil
	quote, err := s.Estimator.EstimateAll(sess.Jobs)
	if err != nil {
		s.Logger.Error("estimate failed", zap.Error(err))
		return replyUnavailable, false
	}
	sess.Phase = models.PhaseQuoted
	return quoteReply(quote), true
}

// pendingQuestion resolves the outstanding question, re-deriving it when
// the stored pointer is stale or already satisfied.
func (s *DefaultConversationService) pendingQuestion(sess *models.Session) (int, string, bool) {
	if p := sess.Pending; p != nil && p.JobIndex >= 0 && p.JobIndex < len(sess.Jobs) {
		if !s.Catalog.IsValid(sess.Jobs[p.JobIndex], p.Field) {
			return p.JobIndex, p.Field, true
		}
	}
	for i := range sess.Jobs {
		if field, missing := s.Catalog.NextMissingField(sess.Jobs[i]); missing {
			sess.Pending = &models.PendingQuestion{JobIndex: i, Field: field}
			return i, field, true
		}
	}
	sess.Pending = nil
	return 0, "", false
}

// addJobs creates jobs for newly mentioned services (no duplicates per
// session) and routes any field hints to the first job that can take them.
func (s *DefaultConversationService) addJobs(sess *models.Session, ext models.Extraction) int {
	added := 0
	for _, svc := range ext.ServiceCandidates {
		if !s.Catalog.Known(svc) || sess.HasService(svc) {
			continue
		}
		sess.Jobs = append(sess.Jobs, models.NewJob(svc))
		added++
	}
	if added > 0 {
		s.applyHints(sess, ext.FieldHints)
	}
	return added
}

func (s *DefaultConversationService) applyHints(sess *models.Session, hints map[string]string) {
	for field, value := range hints {
		for i := range sess.Jobs {
			if !requiresField(sess.Jobs[i].Service, field) || s.Catalog.IsValid(sess.Jobs[i], field) {
				continue
			}
			if s.Catalog.ApplyAnswer(&sess.Jobs[i], field, value) {
				break
			}
		}
	}
}

func (s *DefaultConversationService) advise(ctx context.Context, text string) string {
	if s.Advisor == nil {
		return replyScriptedAdvice
	}
	cctx, cancel := context.WithTimeout(ctx, calendarTimeout)
	defer cancel()
	answer, err := s.Advisor.Advise(cctx, text)
	if err != nil || answer == "" {
		s.Logger.Warn("advisor unavailable", zap.Error(err))
		return replyScriptedAdvice
	}
	return answer
}

func requiresField(service models.ServiceType, field string) bool {
	for _, f := range catalog.RequiredFields(service) {
		if f == field {
			return true
		}
	}
	return false
}
