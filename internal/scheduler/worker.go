package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"solarlead_backend/internal/events"
	"solarlead_backend/internal/leads/repository"
	"solarlead_backend/platform/config"
	"solarlead_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskFollowUpReminder, w.handleFollowUpReminder)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleFollowUpReminder re-loads the follow-up when its due moment arrives
// and notifies the assigned user. Reminders for tasks that were completed or
// deleted in the meantime are dropped silently.
func (w *Worker) handleFollowUpReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		return err
	}

	followUpID, err := uuid.Parse(payload.FollowUpID)
	if err != nil {
		return err
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return err
	}

	followUp, err := w.repo.GetFollowUp(ctx, followUpID, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrFollowUpNotFound) {
			return nil
		}
		return err
	}

	if !followUp.Open() {
		return nil
	}

	lead, err := w.repo.GetByID(ctx, followUp.LeadID, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if lead.AssignedUserID == nil || w.bus == nil {
		return nil
	}

	leadName := strings.TrimSpace(fmt.Sprintf("%s %s", lead.FirstName, lead.LastName))

	return w.bus.PublishSync(ctx, events.NotificationRequested{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  tenantID,
		UserID:    *lead.AssignedUserID,
		LeadID:    lead.ID,
		Type:      "follow_up_due",
		Title:     "Follow-up fällig",
		Message:   fmt.Sprintf("Aufgabe %q für Lead %s ist heute fällig.", followUp.Type, leadName),
	})
}
