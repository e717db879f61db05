package scheduler

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskQuoteExpiryReminder = "quotes.expiry_reminder"

type QuoteExpiryReminderPayload struct {
	QuoteID uuid.UUID `json:"quoteId"`
}

func NewQuoteExpiryReminderTask(payload QuoteExpiryReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuoteExpiryReminder, data), nil
}

func ParseQuoteExpiryReminderPayload(task *asynq.Task) (QuoteExpiryReminderPayload, error) {
	var payload QuoteExpiryReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return QuoteExpiryReminderPayload{}, err
	}
	return payload, nil
}

// quoteReminderTaskID makes one reminder per quote; a quote is only sent once.
func quoteReminderTaskID(quoteID uuid.UUID) string {
	return "quote-expiry:" + quoteID.String()
}
