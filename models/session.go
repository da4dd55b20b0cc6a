package models

import "time"

// Phase is the discrete conversational state governing which input is
// expected next.
type Phase string

const (
	PhaseIdle                Phase = "IDLE"
	PhaseCollecting          Phase = "COLLECTING"
	PhaseQuoted              Phase = "QUOTED"
	PhaseAwaitingPreference  Phase = "AWAITING_BOOKING_PREFERENCE"
	PhaseAwaitingConfirmation Phase = "AWAITING_CONFIRMATION"
)

// PendingQuestion points at the exact question outstanding: which job
// and which of its fields the next answer belongs to.
type PendingQuestion struct {
	JobIndex int    `json:"jobIndex"`
	Field    string `json:"field"`
}

// TimeRange is a half-open [Start, End) interval.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BookingPreference accumulates scheduling wishes across turns while
// the machine waits for enough of them to run a slot search.
type BookingPreference struct {
	Day         *time.Time `json:"day,omitempty"`
	PartOfDay   PartOfDay  `json:"partOfDay,omitempty"`
	StartMinute *int       `json:"startMinute,omitempty"`
}

// Sufficient reports whether the preference can drive a slot search: a
// day plus either a part of day or an explicit start time.
func (p *BookingPreference) Sufficient() bool {
	if p == nil || p.Day == nil {
		return false
	}
	return p.PartOfDay != PartOfDayAny || p.StartMinute != nil
}

// Merge folds newly extracted preferences into the accumulated ones.
func (p *BookingPreference) Merge(day *time.Time, part PartOfDay, startMinute *int) {
	if day != nil {
		p.Day = day
	}
	if part != PartOfDayAny {
		p.PartOfDay = part
	}
	if startMinute != nil {
		p.StartMinute = startMinute
	}
}

// TurnRecord is one remembered conversation turn (diagnostic only).
type TurnRecord struct {
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// ShortHistoryLimit bounds the session's turn ring.
const ShortHistoryLimit = 8

// Session holds the conversation state of one user between turns.
// It is plain serializable data; Redis is the backing store.
type Session struct {
	UserID       string           `json:"userId"`
	Phase        Phase            `json:"phase"`
	Jobs         []Job            `json:"jobs"`
	Pending      *PendingQuestion `json:"pending,omitempty"`
	Preference   *BookingPreference `json:"preference,omitempty"`
	ProposedSlot *TimeRange       `json:"proposedSlot,omitempty"`
	ShortHistory []TurnRecord     `json:"shortHistory,omitempty"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// NewSession returns a fresh idle session for a user.
func NewSession(userID string) *Session {
	return &Session{UserID: userID, Phase: PhaseIdle}
}

// Reset clears jobs and booking state back to idle. Booking history is
// kept elsewhere and survives the reset.
func (s *Session) Reset() {
	s.Phase = PhaseIdle
	s.Jobs = nil
	s.Pending = nil
	s.Preference = nil
	s.ProposedSlot = nil
}

// RememberTurn appends a turn to the bounded short history ring.
func (s *Session) RememberTurn(text string, at time.Time) {
	s.ShortHistory = append(s.ShortHistory, TurnRecord{Text: text, At: at})
	if len(s.ShortHistory) > ShortHistoryLimit {
		s.ShortHistory = s.ShortHistory[len(s.ShortHistory)-ShortHistoryLimit:]
	}
}

// HasService reports whether a job for the given service is already
// pending in the session.
func (s *Session) HasService(service ServiceType) bool {
	for _, j := range s.Jobs {
		if j.Service == service {
			return true
		}
	}
	return false
}
