package domain

import (
	"time"

	"github.com/google/uuid"
)

// UpdatePlan is the full intent batch produced for one lead update:
// the resolved status and patched snapshot, the follow-up rows to insert or
// update, the history entry, and the optional notification and webhook
// intents. The persistence collaborator applies the batch inside one
// transaction; the webhook intent is delivered fire-and-forget afterwards.
type UpdatePlan struct {
	LeadID   uuid.UUID
	TenantID uuid.UUID

	Patch         Patch
	OldStatus     Status
	NewStatus     Status
	StatusChanged bool
	NewLead       Lead

	FollowUpInserts []FollowUp
	FollowUpUpdates []FollowUp

	History      HistoryEntry
	Notification *NotificationIntent
	Webhook      *WebhookIntent
}

// PlanUpdate runs the whole pipeline for one update request:
// resolve the next status, escalate aged open auto follow-ups, generate and
// dedupe status-driven follow-ups, and record the transition. openAuto must
// be the lead's currently open auto-generated follow-ups; now is the request
// time. The function is pure - nothing is written.
func PlanUpdate(current Lead, patch Patch, openAuto []FollowUp, actor uuid.UUID, reason, notes *string, now time.Time) UpdatePlan {
	newStatus := ResolveStatus(current, patch)

	next := patch.Apply(current)
	next.Status = newStatus
	next.UpdatedAt = now

	plan := UpdatePlan{
		LeadID:        current.ID,
		TenantID:      current.TenantID,
		Patch:         patch,
		OldStatus:     current.Status,
		NewStatus:     newStatus,
		StatusChanged: newStatus != current.Status,
		NewLead:       next,
	}

	// Escalation first, so a merge below sees the escalated row state and the
	// at-most-one-open-task-per-type invariant holds across both steps.
	updates := make(map[uuid.UUID]FollowUp)
	for _, escalated := range Escalate(openAuto, now) {
		updates[escalated.ID] = escalated
	}

	if plan.StatusChanged {
		for _, spec := range GenerateFollowUps(next, newStatus, now) {
			if existing, ok := findOpenAuto(openAuto, updates, spec.Type); ok {
				merged, changed := MergeFollowUp(existing, spec)
				if changed {
					merged.UpdatedAt = now
					updates[merged.ID] = merged
				}
				continue
			}
			plan.FollowUpInserts = append(plan.FollowUpInserts, NewFollowUp(next, spec, now))
		}
	}

	for _, task := range openAuto {
		if updated, ok := updates[task.ID]; ok {
			updated.UpdatedAt = now
			plan.FollowUpUpdates = append(plan.FollowUpUpdates, updated)
		}
	}

	plan.History, plan.Notification = RecordTransition(current, next, actor, reason, notes, now)

	if plan.StatusChanged && newStatus == StatusNotReached3 {
		plan.Webhook = &WebhookIntent{LeadID: current.ID, TenantID: current.TenantID}
	}

	return plan
}

// findOpenAuto locates the open auto follow-up of the given type, preferring
// the already-updated (escalated) version of the row when present.
func findOpenAuto(openAuto []FollowUp, updates map[uuid.UUID]FollowUp, taskType FollowUpType) (FollowUp, bool) {
	for _, task := range openAuto {
		if !task.Open() || !task.AutoGenerated || task.Type != taskType {
			continue
		}
		if updated, ok := updates[task.ID]; ok {
			return updated, true
		}
		return task, true
	}
	return FollowUp{}, false
}
