package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

var planNow = time.Date(2026, 3, 2, 11, 30, 0, 0, time.UTC)

func TestPlanUpdateFirstContactAttemptFails(t *testing.T) {
	// A fresh lead where the first call goes unanswered: the agent patches
	// nicht_erreicht and count 1 in one request.
	lead := testLead(StatusNew)
	actor := uuid.New()

	patch := Patch{
		PhoneStatus:     Some(PhoneStatusNotReached),
		NotReachedCount: Some(1),
	}

	plan := PlanUpdate(lead, patch, nil, actor, nil, nil, planNow)

	if plan.NewStatus != StatusNotReached1 {
		t.Fatalf("status %q, want %q", plan.NewStatus, StatusNotReached1)
	}
	if !plan.StatusChanged {
		t.Error("expected StatusChanged")
	}
	if len(plan.FollowUpInserts) != 1 {
		t.Fatalf("got %d inserts, want 1", len(plan.FollowUpInserts))
	}

	task := plan.FollowUpInserts[0]
	if task.Type != FollowUpCall {
		t.Errorf("type %q, want %q", task.Type, FollowUpCall)
	}
	if want := Day(planNow).AddDate(0, 0, 1); !task.DueDate.Equal(want) {
		t.Errorf("due %v, want %v", task.DueDate, want)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("priority %q, want medium", task.Priority)
	}
	if !task.AutoGenerated {
		t.Error("task not marked auto-generated")
	}
	if task.LeadID != lead.ID || task.TenantID != lead.TenantID {
		t.Error("task not keyed to the lead")
	}

	if plan.History.OldStatus != StatusNew || plan.History.NewStatus != StatusNotReached1 {
		t.Error("history does not record the transition")
	}
	if plan.Notification == nil || plan.Notification.Type != NotificationStatusChange {
		t.Error("expected a status change notification")
	}
	if plan.Webhook != nil {
		t.Error("no webhook before the third failed attempt")
	}
}

func TestPlanUpdateLeadBecomesReachable(t *testing.T) {
	// Second attempt succeeds: erreichbar without an appointment lands the
	// lead in "In Bearbeitung" and creates no tasks.
	lead := testLead(StatusNotReached2)
	lead.NotReachedCount = 2
	lead.PhoneStatus = PhoneStatusNotReached

	patch := Patch{PhoneStatus: Some(PhoneStatusReachable)}

	plan := PlanUpdate(lead, patch, nil, uuid.New(), nil, nil, planNow)

	if plan.NewStatus != StatusInProgress {
		t.Fatalf("status %q, want %q", plan.NewStatus, StatusInProgress)
	}
	if len(plan.FollowUpInserts) != 0 || len(plan.FollowUpUpdates) != 0 {
		t.Errorf("got %d inserts and %d updates, want none",
			len(plan.FollowUpInserts), len(plan.FollowUpUpdates))
	}
	if plan.Notification == nil || plan.Notification.Type != NotificationStatusChange {
		t.Error("expected a status change notification")
	}
}

func TestPlanUpdateOfferUploadBeatsManualLost(t *testing.T) {
	lead := testLead(StatusInProgress)

	patch := Patch{OfferPV: Some(true), Status: Some(StatusLost)}

	plan := PlanUpdate(lead, patch, nil, uuid.New(), nil, nil, planNow)

	if plan.NewStatus != StatusOfferSent {
		t.Fatalf("status %q, want %q", plan.NewStatus, StatusOfferSent)
	}
	if len(plan.FollowUpInserts) != 2 {
		t.Fatalf("got %d inserts, want 2", len(plan.FollowUpInserts))
	}
	if !plan.NewLead.OfferPV {
		t.Error("patched snapshot lost the offer flag")
	}
}

func TestPlanUpdateThirdAttemptFiresWebhook(t *testing.T) {
	lead := testLead(StatusNotReached2)
	lead.NotReachedCount = 2
	lead.PhoneStatus = PhoneStatusNotReached

	patch := Patch{NotReachedCount: Some(3)}

	plan := PlanUpdate(lead, patch, nil, uuid.New(), nil, nil, planNow)

	if plan.NewStatus != StatusNotReached3 {
		t.Fatalf("status %q, want %q", plan.NewStatus, StatusNotReached3)
	}
	if plan.Webhook == nil {
		t.Fatal("expected a webhook intent")
	}
	if plan.Webhook.LeadID != lead.ID || plan.Webhook.TenantID != lead.TenantID {
		t.Error("webhook not keyed to the lead")
	}
	if len(plan.FollowUpInserts) != 1 || plan.FollowUpInserts[0].EscalationLevel != 1 {
		t.Errorf("expected one escalation-level-1 task, got %+v", plan.FollowUpInserts)
	}

	// Re-submitting count 3 on a lead already in NR3 changes nothing and
	// must not fire the webhook again.
	settled := plan.NewLead
	again := PlanUpdate(settled, patch, nil, uuid.New(), nil, nil, planNow)
	if again.StatusChanged {
		t.Error("repeat update should not change the status")
	}
	if again.Webhook != nil {
		t.Error("repeat update must not fire the webhook")
	}
	if len(again.FollowUpInserts) != 0 {
		t.Errorf("repeat update inserted %d tasks", len(again.FollowUpInserts))
	}
}

func TestPlanUpdateMergesIntoExistingOpenTask(t *testing.T) {
	// An open auto "offer" task already exists; entering "Angebot übermittelt"
	// again must update that row instead of inserting a duplicate.
	lead := testLead(StatusInProgress)

	existing := FollowUp{
		ID:            uuid.New(),
		LeadID:        lead.ID,
		TenantID:      lead.TenantID,
		Type:          FollowUpOffer,
		DueDate:       Day(planNow).AddDate(0, 0, 5),
		Priority:      PriorityLow,
		AutoGenerated: true,
	}

	patch := Patch{Status: Some(StatusOfferSent)}

	plan := PlanUpdate(lead, patch, []FollowUp{existing}, uuid.New(), nil, nil, planNow)

	// The generic follow-up has no open counterpart and is inserted; the
	// offer task is merged.
	if len(plan.FollowUpInserts) != 1 || plan.FollowUpInserts[0].Type != FollowUpGeneric {
		t.Fatalf("inserts %+v, want exactly the generic follow-up", plan.FollowUpInserts)
	}
	if len(plan.FollowUpUpdates) != 1 {
		t.Fatalf("got %d updates, want 1", len(plan.FollowUpUpdates))
	}

	merged := plan.FollowUpUpdates[0]
	if merged.ID != existing.ID {
		t.Error("merge produced a different row")
	}
	if want := Day(planNow).AddDate(0, 0, 1); !merged.DueDate.Equal(want) {
		t.Errorf("due %v, want earlier date %v", merged.DueDate, want)
	}
	if merged.Priority != PriorityMedium {
		t.Errorf("priority %q, want raised to medium", merged.Priority)
	}
}

func TestPlanUpdateEscalatesAndMergesSameRowOnce(t *testing.T) {
	// The open call task is 11 days overdue. The same update pushes the lead
	// to NR1, whose rule also targets a call task. The row must appear
	// exactly once in the plan, carrying both the escalation and the merge.
	lead := testLead(StatusNew)

	existing := FollowUp{
		ID:            uuid.New(),
		LeadID:        lead.ID,
		TenantID:      lead.TenantID,
		Type:          FollowUpCall,
		DueDate:       Day(planNow).AddDate(0, 0, -11),
		Priority:      PriorityMedium,
		AutoGenerated: true,
	}

	patch := Patch{NotReachedCount: Some(1)}

	plan := PlanUpdate(lead, patch, []FollowUp{existing}, uuid.New(), nil, nil, planNow)

	if len(plan.FollowUpInserts) != 0 {
		t.Fatalf("unexpected inserts %+v", plan.FollowUpInserts)
	}
	if len(plan.FollowUpUpdates) != 1 {
		t.Fatalf("got %d updates, want 1", len(plan.FollowUpUpdates))
	}

	row := plan.FollowUpUpdates[0]
	if row.ID != existing.ID {
		t.Error("expected the existing row")
	}
	if row.EscalationLevel != 3 || row.Priority != PriorityOverdue {
		t.Errorf("escalation %d/%q, want 3/overdue", row.EscalationLevel, row.Priority)
	}
	if !row.DueDate.Equal(Day(planNow)) {
		t.Errorf("due %v, want today", row.DueDate)
	}
}

func TestPlanUpdateRecordsReasonAndNotes(t *testing.T) {
	lead := testLead(StatusNew)
	reason := "Kunde hat abgesagt"
	notes := "Will nächstes Jahr neu bewerten"

	lost := LostReasonNoInterest
	patch := Patch{Status: Some(StatusLost), LostReason: Some(lost)}

	plan := PlanUpdate(lead, patch, nil, uuid.New(), &reason, &notes, planNow)

	if plan.History.Reason == nil || *plan.History.Reason != reason {
		t.Error("reason not carried into history")
	}
	if plan.History.Notes == nil || *plan.History.Notes != notes {
		t.Error("notes not carried into history")
	}
	if len(plan.FollowUpInserts) != 1 || plan.FollowUpInserts[0].Type != FollowUpReengagement {
		t.Errorf("expected a reengagement task, got %+v", plan.FollowUpInserts)
	}
}
