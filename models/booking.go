package models

import "time"

// BusyInterval is an already-occupied range reported by the calendar.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CalendarEvent is the payload for creating a calendar entry.
type CalendarEvent struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// BookingRecord is the append-only history entry written on a confirmed
// booking. Never mutated after creation.
type BookingRecord struct {
	ID         string    `bson:"id" json:"id"`
	UserID     string    `bson:"userId" json:"userId"`
	Jobs       []Job     `bson:"jobs" json:"jobs"`
	TotalHours float64   `bson:"totalHours" json:"totalHours"`
	TotalPrice float64   `bson:"totalPrice" json:"totalPrice"`
	EventID    string    `bson:"eventId" json:"eventId"`
	Start      time.Time `bson:"start" json:"start"`
	End        time.Time `bson:"end" json:"end"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// ReminderPayload is the task body enqueued for the reminder worker.
type ReminderPayload struct {
	RecordID string    `json:"recordId"`
	UserID   string    `json:"userId"`
	Summary  string    `json:"summary"`
	Start    time.Time `json:"start"`
}
