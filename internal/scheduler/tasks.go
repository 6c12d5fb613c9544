package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// TaskFollowUpReminder fires when an open follow-up reaches its due date.
	TaskFollowUpReminder = "leads.followup.reminder"
)

// FollowUpReminderPayload carries the identifiers needed to re-load a
// follow-up when its reminder fires. UUIDs travel as strings so the payload
// stays readable in the Redis queue.
type FollowUpReminderPayload struct {
	FollowUpID string `json:"followUpId"`
	LeadID     string `json:"leadId"`
	TenantID   string `json:"tenantId"`
}

func NewFollowUpReminderTask(payload FollowUpReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal follow-up reminder payload: %w", err)
	}
	return asynq.NewTask(TaskFollowUpReminder, data), nil
}

func ParseFollowUpReminderPayload(task *asynq.Task) (FollowUpReminderPayload, error) {
	var payload FollowUpReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpReminderPayload{}, fmt.Errorf("unmarshal follow-up reminder payload: %w", err)
	}
	return payload, nil
}
