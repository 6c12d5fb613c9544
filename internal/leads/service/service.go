package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"solarlead_backend/internal/events"
	"solarlead_backend/internal/leads/domain"
	"solarlead_backend/internal/leads/repository"
	"solarlead_backend/internal/leads/transport"
	"solarlead_backend/platform/apperr"
	"solarlead_backend/platform/logger"
	"solarlead_backend/platform/phone"
	"solarlead_backend/platform/sanitize"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (domain.Lead, error)
	GetByID(ctx context.Context, id, tenantID uuid.UUID) (domain.Lead, error)
	List(ctx context.Context, params repository.ListLeadsParams) ([]domain.Lead, int, error)
	SoftDelete(ctx context.Context, id, tenantID uuid.UUID) error
	ApplyUpdatePlan(ctx context.Context, plan domain.UpdatePlan) (domain.Lead, error)

	ListOpenAutoFollowUps(ctx context.Context, leadID, tenantID uuid.UUID) ([]domain.FollowUp, error)
	ListFollowUpsByLead(ctx context.Context, leadID, tenantID uuid.UUID) ([]domain.FollowUp, error)
	ListDueFollowUps(ctx context.Context, tenantID uuid.UUID, due time.Time) ([]domain.FollowUp, error)
	CreateFollowUp(ctx context.Context, task domain.FollowUp) error
	CompleteFollowUp(ctx context.Context, id, tenantID uuid.UUID, notes *string) (domain.FollowUp, error)

	ListHistory(ctx context.Context, leadID, tenantID uuid.UUID) ([]domain.HistoryEntry, error)
}

// ReminderScheduler enqueues a reminder task for a follow-up's due date.
type ReminderScheduler interface {
	ScheduleFollowUpReminder(ctx context.Context, task domain.FollowUp) error
}

type Service struct {
	repo      Repository
	eventBus  events.Bus
	reminders ReminderScheduler
	log       *logger.Logger
	now       func() time.Time
}

func New(repo Repository, eventBus events.Bus, reminders ReminderScheduler, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		eventBus:  eventBus,
		reminders: reminders,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	req.Phone = phone.NormalizeE164(req.Phone)

	params := repository.CreateLeadParams{
		TenantID:     tenantID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		City:         req.City,
		FollowUpDate: req.FollowUpDate,
	}
	if req.Email != "" {
		params.Email = &req.Email
	}
	if req.AssignedUserID.Set {
		params.AssignedUserID = req.AssignedUserID.Value
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.eventBus.Publish(ctx, events.LeadCreated{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		TenantID:       lead.TenantID,
		AssignedUserID: lead.AssignedUserID,
		Name:           lead.FirstName + " " + lead.LastName,
		Phone:          lead.Phone,
		City:           lead.City,
	})

	return transport.ToLeadResponse(lead), nil
}

func (s *Service) Get(ctx context.Context, id, tenantID uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}
	return transport.ToLeadResponse(lead), nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListLeadsRequest) (transport.ListLeadsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 25
	}

	params := repository.ListLeadsParams{
		TenantID: tenantID,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}
	if req.Status != "" {
		status := domain.Status(req.Status)
		if !status.Valid() {
			return transport.ListLeadsResponse{}, apperr.BadRequest("unknown status filter")
		}
		params.Status = &status
	}
	if req.PhoneStatus != "" {
		phoneStatus := domain.PhoneStatus(req.PhoneStatus)
		if !phoneStatus.Valid() {
			return transport.ListLeadsResponse{}, apperr.BadRequest("unknown phone status filter")
		}
		params.PhoneStatus = &phoneStatus
	}
	if req.AssignedUserID != "" {
		id, err := uuid.Parse(req.AssignedUserID)
		if err != nil {
			return transport.ListLeadsResponse{}, apperr.BadRequest("invalid assignedUserId filter")
		}
		params.AssignedUserID = &id
	}
	if req.City != "" {
		params.City = &req.City
	}
	if req.Search != "" {
		params.Search = &req.Search
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.ListLeadsResponse{}, err
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, transport.ToLeadResponse(lead))
	}

	return transport.ListLeadsResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Update runs the status pipeline for one partial lead update: resolve the
// next status, generate and dedupe follow-ups, escalate stale ones, write
// everything in one transaction, then publish the side effects.
func (s *Service) Update(ctx context.Context, id, tenantID, actor uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	patch, err := req.Patch()
	if err != nil {
		return transport.LeadResponse{}, apperr.BadRequest(err.Error())
	}
	if patch.Phone.HasValue() {
		patch.Phone = domain.Some(phone.NormalizeE164(patch.Phone.Value))
	}

	current, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}

	openAuto, err := s.repo.ListOpenAutoFollowUps(ctx, id, tenantID)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	plan := domain.PlanUpdate(current, patch, openAuto, actor, sanitize.TextPtr(req.Reason), sanitize.TextPtr(req.Notes), s.now())

	lead, err := s.repo.ApplyUpdatePlan(ctx, plan)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}

	s.publishUpdateEffects(ctx, plan, actor)

	return transport.ToLeadResponse(lead), nil
}

func (s *Service) publishUpdateEffects(ctx context.Context, plan domain.UpdatePlan, actor uuid.UUID) {
	if plan.StatusChanged {
		s.log.StatusTransition(plan.LeadID.String(), plan.TenantID.String(),
			string(plan.OldStatus), string(plan.NewStatus), len(plan.FollowUpInserts))

		s.eventBus.Publish(ctx, events.LeadStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    plan.LeadID,
			TenantID:  plan.TenantID,
			OldStatus: string(plan.OldStatus),
			NewStatus: string(plan.NewStatus),
			ChangedBy: actor,
		})
	}

	if plan.Notification != nil {
		s.eventBus.Publish(ctx, events.NotificationRequested{
			BaseEvent: events.NewBaseEvent(),
			TenantID:  plan.Notification.TenantID,
			UserID:    plan.Notification.UserID,
			LeadID:    plan.Notification.LeadID,
			Type:      plan.Notification.Type,
			Title:     plan.Notification.Title,
			Message:   plan.Notification.Message,
		})
	}

	if plan.Webhook != nil {
		s.eventBus.Publish(ctx, events.LeadUnreachable{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    plan.Webhook.LeadID,
			TenantID:  plan.Webhook.TenantID,
		})
	}

	if s.reminders != nil {
		for _, task := range plan.FollowUpInserts {
			if err := s.reminders.ScheduleFollowUpReminder(ctx, task); err != nil {
				s.log.Error("failed to schedule follow-up reminder", "error", err, "follow_up_id", task.ID)
			}
		}
	}
}

func (s *Service) Delete(ctx context.Context, id, tenantID uuid.UUID) error {
	err := s.repo.SoftDelete(ctx, id, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return err
}

func (s *Service) ListHistory(ctx context.Context, leadID, tenantID uuid.UUID) ([]transport.HistoryEntryResponse, error) {
	if _, err := s.repo.GetByID(ctx, leadID, tenantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, err
	}

	entries, err := s.repo.ListHistory(ctx, leadID, tenantID)
	if err != nil {
		return nil, err
	}
	return transport.ToHistoryResponses(entries), nil
}

func (s *Service) ListFollowUps(ctx context.Context, leadID, tenantID uuid.UUID) ([]transport.FollowUpResponse, error) {
	if _, err := s.repo.GetByID(ctx, leadID, tenantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, err
	}

	tasks, err := s.repo.ListFollowUpsByLead(ctx, leadID, tenantID)
	if err != nil {
		return nil, err
	}
	return transport.ToFollowUpResponses(tasks), nil
}

// CreateFollowUp adds a manual follow-up task to a lead. Manual tasks never
// participate in auto-dedup or escalation.
func (s *Service) CreateFollowUp(ctx context.Context, leadID, tenantID uuid.UUID, req transport.CreateFollowUpRequest) (transport.FollowUpResponse, error) {
	lead, err := s.repo.GetByID(ctx, leadID, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.FollowUpResponse{}, apperr.NotFound("lead not found")
		}
		return transport.FollowUpResponse{}, err
	}

	now := s.now()
	task := domain.FollowUp{
		ID:        uuid.New(),
		LeadID:    lead.ID,
		TenantID:  lead.TenantID,
		Type:      domain.FollowUpType(req.Type),
		DueDate:   domain.Day(req.DueDate),
		Priority:  domain.Priority(req.Priority),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if notes := sanitize.Text(req.Notes); notes != "" {
		task.Notes = &notes
	}

	if err := s.repo.CreateFollowUp(ctx, task); err != nil {
		return transport.FollowUpResponse{}, err
	}

	if s.reminders != nil {
		if err := s.reminders.ScheduleFollowUpReminder(ctx, task); err != nil {
			s.log.Error("failed to schedule follow-up reminder", "error", err, "follow_up_id", task.ID)
		}
	}

	return transport.ToFollowUpResponse(task), nil
}

func (s *Service) CompleteFollowUp(ctx context.Context, id, tenantID uuid.UUID, req transport.CompleteFollowUpRequest) (transport.FollowUpResponse, error) {
	task, err := s.repo.CompleteFollowUp(ctx, id, tenantID, sanitize.TextPtr(req.Notes))
	if err != nil {
		if errors.Is(err, repository.ErrFollowUpNotFound) {
			return transport.FollowUpResponse{}, apperr.NotFound("follow-up not found or already completed")
		}
		return transport.FollowUpResponse{}, err
	}
	return transport.ToFollowUpResponse(task), nil
}

// ListDueFollowUps returns the tenant's open follow-ups due today or earlier.
func (s *Service) ListDueFollowUps(ctx context.Context, tenantID uuid.UUID) ([]transport.FollowUpResponse, error) {
	tasks, err := s.repo.ListDueFollowUps(ctx, tenantID, s.now())
	if err != nil {
		return nil, err
	}
	return transport.ToFollowUpResponses(tasks), nil
}
