package models

import "time"

// PartOfDay is a coarse scheduling preference.
type PartOfDay string

const (
	PartOfDayAny       PartOfDay = ""
	PartOfDayMorning   PartOfDay = "morning"
	PartOfDayAfternoon PartOfDay = "afternoon"
)

// Extraction is the structured reading of one inbound message. The
// extractor collaborator fills what it can recognize; the zero value
// means "no signal" and is always safe to act on.
type Extraction struct {
	// Services mentioned in the message, catalog order preserved.
	ServiceCandidates []ServiceType `json:"serviceCandidates,omitempty"`
	// Hints routed to specific fields (e.g. "count" -> "3").
	FieldHints map[string]string `json:"fieldHints,omitempty"`

	// Booking intent and confirmation tokens.
	BookingSignal bool `json:"bookingSignal,omitempty"`
	Affirmative   bool `json:"affirmative,omitempty"`
	Negative      bool `json:"negative,omitempty"`
	CancelSignal  bool `json:"cancelSignal,omitempty"`

	// Scheduling preferences.
	DayPreference *time.Time `json:"dayPreference,omitempty"`
	PartOfDay     PartOfDay  `json:"partOfDay,omitempty"`
	// Minutes from midnight of an explicit start time, if any.
	StartMinute *int `json:"startMinute,omitempty"`
}

// HasBookingPreference reports whether the message carried any usable
// scheduling preference.
func (e Extraction) HasBookingPreference() bool {
	return e.DayPreference != nil || e.PartOfDay != PartOfDayAny || e.StartMinute != nil
}
