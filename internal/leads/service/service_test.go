package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"solarlead_backend/internal/events"
	"solarlead_backend/internal/leads/domain"
	"solarlead_backend/internal/leads/repository"
	"solarlead_backend/internal/leads/transport"
	"solarlead_backend/platform/apperr"
	"solarlead_backend/platform/logger"
)

type fakeRepo struct {
	leads    map[uuid.UUID]domain.Lead
	openAuto []domain.FollowUp

	appliedPlan *domain.UpdatePlan
	created     []domain.FollowUp
	deleted     []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{leads: make(map[uuid.UUID]domain.Lead)}
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateLeadParams) (domain.Lead, error) {
	lead := domain.Lead{
		ID:             uuid.New(),
		TenantID:       params.TenantID,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		Phone:          params.Phone,
		Email:          params.Email,
		City:           params.City,
		Status:         domain.StatusNew,
		PhoneStatus:    domain.PhoneStatusOpen,
		FollowUpDate:   params.FollowUpDate,
		AssignedUserID: params.AssignedUserID,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id, tenantID uuid.UUID) (domain.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.TenantID != tenantID {
		return domain.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeRepo) List(_ context.Context, params repository.ListLeadsParams) ([]domain.Lead, int, error) {
	items := make([]domain.Lead, 0)
	for _, lead := range f.leads {
		if lead.TenantID == params.TenantID {
			items = append(items, lead)
		}
	}
	return items, len(items), nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id, tenantID uuid.UUID) error {
	lead, ok := f.leads[id]
	if !ok || lead.TenantID != tenantID {
		return repository.ErrNotFound
	}
	delete(f.leads, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepo) ApplyUpdatePlan(_ context.Context, plan domain.UpdatePlan) (domain.Lead, error) {
	if _, ok := f.leads[plan.LeadID]; !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	f.appliedPlan = &plan
	f.leads[plan.LeadID] = plan.NewLead
	return plan.NewLead, nil
}

func (f *fakeRepo) ListOpenAutoFollowUps(_ context.Context, _, _ uuid.UUID) ([]domain.FollowUp, error) {
	return f.openAuto, nil
}

func (f *fakeRepo) ListFollowUpsByLead(_ context.Context, _, _ uuid.UUID) ([]domain.FollowUp, error) {
	return f.openAuto, nil
}

func (f *fakeRepo) ListDueFollowUps(_ context.Context, _ uuid.UUID, _ time.Time) ([]domain.FollowUp, error) {
	return f.openAuto, nil
}

func (f *fakeRepo) CreateFollowUp(_ context.Context, task domain.FollowUp) error {
	f.created = append(f.created, task)
	return nil
}

func (f *fakeRepo) CompleteFollowUp(_ context.Context, id, _ uuid.UUID, _ *string) (domain.FollowUp, error) {
	for _, task := range f.openAuto {
		if task.ID == id && task.Open() {
			done := time.Now()
			task.CompletedAt = &done
			return task, nil
		}
	}
	return domain.FollowUp{}, repository.ErrFollowUpNotFound
}

func (f *fakeRepo) ListHistory(_ context.Context, _, _ uuid.UUID) ([]domain.HistoryEntry, error) {
	return nil, nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	names := make([]string, 0, len(b.published))
	for _, event := range b.published {
		names = append(names, event.EventName())
	}
	return names
}

type recordingScheduler struct {
	scheduled []domain.FollowUp
}

func (r *recordingScheduler) ScheduleFollowUpReminder(_ context.Context, task domain.FollowUp) error {
	r.scheduled = append(r.scheduled, task)
	return nil
}

func newTestService(repo *fakeRepo) (*Service, *recordingBus, *recordingScheduler) {
	bus := &recordingBus{}
	reminders := &recordingScheduler{}
	svc := New(repo, bus, reminders, logger.New("test"))
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC) }
	return svc, bus, reminders
}

func strPtr(s string) *string { return &s }

func TestCreateNormalizesPhoneAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	svc, bus, _ := newTestService(repo)
	tenantID := uuid.New()

	resp, err := svc.Create(context.Background(), tenantID, transport.CreateLeadRequest{
		FirstName: "Max",
		LastName:  "Mustermann",
		Phone:     "0151 12345678",
		City:      "Köln",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Phone != "+4915112345678" {
		t.Errorf("phone %q, want normalized E.164", resp.Phone)
	}
	if resp.Status != string(domain.StatusNew) {
		t.Errorf("status %q, want %q", resp.Status, domain.StatusNew)
	}
	if got := bus.names(); len(got) != 1 || got[0] != "leads.lead.created" {
		t.Errorf("published %v, want the created event", got)
	}
}

func TestUpdateRunsPipelineAndPublishesEffects(t *testing.T) {
	repo := newFakeRepo()
	svc, bus, reminders := newTestService(repo)
	tenantID := uuid.New()
	actor := uuid.New()

	lead := domain.Lead{
		ID:          uuid.New(),
		TenantID:    tenantID,
		FirstName:   "Max",
		LastName:    "Mustermann",
		Phone:       "+4915112345678",
		Status:      domain.StatusNew,
		PhoneStatus: domain.PhoneStatusOpen,
	}
	repo.leads[lead.ID] = lead

	count := 1
	req := transport.UpdateLeadRequest{
		PhoneStatus:     transport.OptionalString{Set: true, Value: strPtr(string(domain.PhoneStatusNotReached))},
		NotReachedCount: transport.OptionalInt{Set: true, Value: &count},
	}

	resp, err := svc.Update(context.Background(), lead.ID, tenantID, actor, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Status != string(domain.StatusNotReached1) {
		t.Errorf("status %q, want %q", resp.Status, domain.StatusNotReached1)
	}
	if repo.appliedPlan == nil {
		t.Fatal("plan was not applied")
	}
	if len(repo.appliedPlan.FollowUpInserts) != 1 {
		t.Errorf("plan carries %d inserts, want 1", len(repo.appliedPlan.FollowUpInserts))
	}
	if len(reminders.scheduled) != 1 {
		t.Errorf("%d reminders scheduled, want 1", len(reminders.scheduled))
	}

	names := bus.names()
	if len(names) != 2 || names[0] != "leads.lead.status_changed" || names[1] != "notifications.requested" {
		t.Errorf("published %v, want status change and notification", names)
	}
}

func TestUpdateThirdAttemptPublishesUnreachable(t *testing.T) {
	repo := newFakeRepo()
	svc, bus, _ := newTestService(repo)
	tenantID := uuid.New()

	lead := domain.Lead{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Status:          domain.StatusNotReached2,
		PhoneStatus:     domain.PhoneStatusNotReached,
		NotReachedCount: 2,
	}
	repo.leads[lead.ID] = lead

	count := 3
	req := transport.UpdateLeadRequest{
		NotReachedCount: transport.OptionalInt{Set: true, Value: &count},
	}

	if _, err := svc.Update(context.Background(), lead.ID, tenantID, uuid.New(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, name := range bus.names() {
		if name == "leads.lead.unreachable" {
			found = true
		}
	}
	if !found {
		t.Errorf("published %v, want the unreachable event", bus.names())
	}
}

func TestUpdateRejectsUnknownEnumValues(t *testing.T) {
	repo := newFakeRepo()
	svc, _, _ := newTestService(repo)
	tenantID := uuid.New()

	lead := testServiceLead(tenantID)
	repo.leads[lead.ID] = lead

	tests := []struct {
		name string
		req  transport.UpdateLeadRequest
	}{
		{
			name: "unknown status",
			req: transport.UpdateLeadRequest{
				Status: transport.OptionalString{Set: true, Value: strPtr("Qualifiziert")},
			},
		},
		{
			name: "unknown phone status",
			req: transport.UpdateLeadRequest{
				PhoneStatus: transport.OptionalString{Set: true, Value: strPtr("besetzt")},
			},
		},
		{
			name: "unknown lost reason",
			req: transport.UpdateLeadRequest{
				LostReason: transport.OptionalString{Set: true, Value: strPtr("umgezogen")},
			},
		},
		{
			name: "negative count",
			req: transport.UpdateLeadRequest{
				NotReachedCount: transport.OptionalInt{Set: true, Value: intPtr(-1)},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), lead.ID, tenantID, uuid.New(), tc.req)
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindBadRequest {
				t.Errorf("got %v, want a bad request error", err)
			}
		})
	}
}

func TestUpdateUnknownLeadIsNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc, _, _ := newTestService(repo)

	_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), uuid.New(), transport.UpdateLeadRequest{})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Errorf("got %v, want not found", err)
	}
}

func TestUpdateEnforcesTenantIsolation(t *testing.T) {
	repo := newFakeRepo()
	svc, _, _ := newTestService(repo)

	lead := testServiceLead(uuid.New())
	repo.leads[lead.ID] = lead

	// Same lead ID, different tenant: must look like it does not exist.
	_, err := svc.Update(context.Background(), lead.ID, uuid.New(), uuid.New(), transport.UpdateLeadRequest{})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Errorf("got %v, want not found", err)
	}
}

func TestCreateFollowUpManualTask(t *testing.T) {
	repo := newFakeRepo()
	svc, _, reminders := newTestService(repo)
	tenantID := uuid.New()

	lead := testServiceLead(tenantID)
	repo.leads[lead.ID] = lead

	due := time.Date(2026, 3, 9, 15, 0, 0, 0, time.UTC)
	resp, err := svc.CreateFollowUp(context.Background(), lead.ID, tenantID, transport.CreateFollowUpRequest{
		Type:     "meeting",
		DueDate:  due,
		Priority: "high",
		Notes:    "Vor-Ort-Termin vorbereiten",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.AutoGenerated {
		t.Error("manual task must not be auto-generated")
	}
	if !resp.DueDate.Equal(domain.Day(due)) {
		t.Errorf("due %v, want truncated to day", resp.DueDate)
	}
	if len(repo.created) != 1 {
		t.Errorf("%d tasks persisted, want 1", len(repo.created))
	}
	if len(reminders.scheduled) != 1 {
		t.Errorf("%d reminders scheduled, want 1", len(reminders.scheduled))
	}
}

func testServiceLead(tenantID uuid.UUID) domain.Lead {
	return domain.Lead{
		ID:          uuid.New(),
		TenantID:    tenantID,
		FirstName:   "Max",
		LastName:    "Mustermann",
		Phone:       "+4915112345678",
		Status:      domain.StatusNew,
		PhoneStatus: domain.PhoneStatusOpen,
	}
}

func intPtr(i int) *int { return &i }
