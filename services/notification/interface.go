package notification

import (
	"context"

	"verdebot/models"

	"go.uber.org/zap"
)

// Notifier delivers a booking reminder to the customer. The outbound
// message transport lives outside this repo, so implementations adapt
// whatever channel the deployment uses.
type Notifier interface {
	SendReminder(ctx context.Context, payload models.ReminderPayload) error
}

// LogNotifier writes reminders to the log. It stands in wherever no
// outbound channel is wired up.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) SendReminder(_ context.Context, payload models.ReminderPayload) error {
	n.Logger.Info("booking reminder due",
		zap.String("user", payload.UserID),
		zap.String("record", payload.RecordID),
		zap.String("summary", payload.Summary),
		zap.Time("start", payload.Start),
	)
	return nil
}
