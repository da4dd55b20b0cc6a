package tasks

import (
	"context"
	"encoding/json"
	"time"

	"verdebot/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// reminderLead is how long before the appointment the reminder fires.
const reminderLead = 24 * time.Hour

// NewReminderTask builds the asynq task for a booking reminder.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// Scheduler enqueues booking reminders on the asynq queue. It satisfies
// the conversation service's ReminderScheduler.
type Scheduler struct {
	Client *asynq.Client
}

// Schedule enqueues a reminder 24h before the appointment start. A
// booking closer than that gets no reminder.
func (s *Scheduler) Schedule(ctx context.Context, payload models.ReminderPayload) error {
	fireAt := payload.Start.Add(-reminderLead)
	if fireAt.Before(time.Now()) {
		return nil
	}
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return err
	}
	_, err = s.Client.EnqueueContext(ctx, task, opts...)
	return err
}
