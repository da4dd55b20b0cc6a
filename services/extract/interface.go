// Package extract turns free-form messages into the structured signals
// the conversation state machine consumes. The state machine never
// parses text itself.
package extract

import (
	"context"

	"verdebot/models"
)

// Extractor reads one inbound message in the context of the current
// session snapshot. Implementations must return a zero-value Extraction
// rather than failing on unrecognizable input.
type Extractor interface {
	Extract(ctx context.Context, text string, session *models.Session) (models.Extraction, error)
}

// Advisor answers out-of-scope or informational gardening questions.
type Advisor interface {
	Advise(ctx context.Context, text string) (string, error)
}
