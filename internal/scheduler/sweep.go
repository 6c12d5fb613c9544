package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"solarlead_backend/internal/events"
	"solarlead_backend/internal/leads/domain"
	"solarlead_backend/internal/leads/repository"
	"solarlead_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSweepInterval   = time.Hour
	sweepTenantConcurrency = 4
)

// EscalationSweep periodically raises the escalation level of overdue
// auto-generated follow-ups. Each pass walks every tenant with open
// follow-ups, applies the escalation thresholds, persists the changed tasks
// and announces each raise on the event bus.
type EscalationSweep struct {
	repo     *repository.Repository
	bus      events.Bus
	log      *logger.Logger
	interval time.Duration
	now      func() time.Time
}

func NewEscalationSweep(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger, interval time.Duration) *EscalationSweep {
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	return &EscalationSweep{
		repo:     repository.New(pool),
		bus:      bus,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

func (s *EscalationSweep) Run(ctx context.Context) {
	if s == nil || s.repo == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *EscalationSweep) sweep(ctx context.Context) {
	tenants, err := s.repo.ListTenantsWithOpenFollowUps(ctx)
	if err != nil {
		s.log.Warn("escalation sweep could not list tenants", "error", err)
		return
	}
	if len(tenants) == 0 {
		return
	}

	today := domain.Day(s.now())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepTenantConcurrency)

	for _, tenantID := range tenants {
		tenantID := tenantID
		g.Go(func() error {
			if err := s.sweepTenant(gctx, tenantID, today); err != nil {
				s.log.Warn("escalation sweep failed for tenant", "tenant_id", tenantID.String(), "error", err)
			}
			// A failing tenant never aborts the other tenants.
			return nil
		})
	}

	_ = g.Wait()
}

func (s *EscalationSweep) sweepTenant(ctx context.Context, tenantID uuid.UUID, today time.Time) error {
	open, err := s.repo.ListOpenAutoFollowUpsForSweep(ctx, tenantID, today)
	if err != nil {
		return fmt.Errorf("list overdue follow-ups: %w", err)
	}
	if len(open) == 0 {
		return nil
	}

	originalDue := make(map[uuid.UUID]time.Time, len(open))
	for _, task := range open {
		originalDue[task.ID] = task.DueDate
	}

	escalated := domain.Escalate(open, today)
	if len(escalated) == 0 {
		return nil
	}

	if err := s.repo.UpdateFollowUps(ctx, escalated); err != nil {
		return fmt.Errorf("persist escalations: %w", err)
	}

	s.log.Info("escalation sweep raised follow-ups",
		"tenant_id", tenantID.String(),
		"escalated", len(escalated))

	if s.bus == nil {
		return nil
	}

	for _, task := range escalated {
		lead, err := s.repo.GetByID(ctx, task.LeadID, tenantID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			s.log.Warn("escalation sweep could not load lead", "lead_id", task.LeadID.String(), "error", err)
			continue
		}

		s.bus.Publish(ctx, events.FollowUpEscalated{
			BaseEvent:       events.NewBaseEvent(),
			FollowUpID:      task.ID,
			LeadID:          task.LeadID,
			TenantID:        tenantID,
			LeadName:        strings.TrimSpace(fmt.Sprintf("%s %s", lead.FirstName, lead.LastName)),
			AssignedUserID:  lead.AssignedUserID,
			EscalationLevel: task.EscalationLevel,
			DaysOverdue:     domain.DaysOverdue(originalDue[task.ID], today),
			DueDate:         task.DueDate,
		})
	}

	return nil
}
