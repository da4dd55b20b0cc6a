// Package conversation holds the turn-taking state machine that drives
// a quoting-and-booking dialogue for one user at a time.
package conversation

import (
	"context"

	"verdebot/models"
	"verdebot/services/catalog"
	"verdebot/services/estimate"
	"verdebot/services/extract"
	"verdebot/services/schedule"

	"go.uber.org/zap"
)

// ConversationService exposes the single inbound operation.
type ConversationService interface {
	// HandleTurn processes one message for a user and returns the reply
	// text. Turns for the same user are serialized.
	HandleTurn(ctx context.Context, userID, text string) (string, error)
}

// SessionStore is the durable key-value collaborator holding session
// state between turns.
type SessionStore interface {
	// Load returns the user's session, or a fresh idle one when none exists.
	Load(ctx context.Context, userID string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
}

// HistorySink receives the append-only record of a confirmed booking.
type HistorySink interface {
	Append(ctx context.Context, record models.BookingRecord) (string, error)
}

// ReminderScheduler enqueues a reminder for a confirmed booking.
// Best-effort: a scheduling failure never fails the booking.
type ReminderScheduler interface {
	Schedule(ctx context.Context, payload models.ReminderPayload) error
}

// DefaultConversationService implements ConversationService.
type DefaultConversationService struct {
	Store     SessionStore
	Extractor extract.Extractor
	// Advisor answers informational turns; nil means scripted replies.
	Advisor   extract.Advisor
	Catalog   catalog.Catalog
	Estimator estimate.Estimator
	// Calendar and Searcher are nil when no calendar is configured; the
	// machine then degrades to manual-scheduling replies.
	Calendar schedule.Calendar
	Searcher *schedule.Searcher
	History  HistorySink
	// Reminders is optional.
	Reminders ReminderScheduler
	Logger    *zap.Logger

	locks turnLocks
}
