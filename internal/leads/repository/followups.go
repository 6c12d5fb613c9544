package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"solarlead_backend/internal/leads/domain"
)

var ErrFollowUpNotFound = errors.New("follow-up not found")

const followUpColumns = `id, lead_id, tenant_id, type, due_date, priority,
	auto_generated, escalation_level, completed_at, notes, created_at, updated_at`

// ListOpenAutoFollowUps returns the lead's open auto-generated follow-ups,
// oldest first. This is the working set for escalation and dedup.
func (r *Repository) ListOpenAutoFollowUps(ctx context.Context, leadID, tenantID uuid.UUID) ([]domain.FollowUp, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+followUpColumns+`
		FROM follow_ups
		WHERE lead_id = $1 AND tenant_id = $2 AND auto_generated = true AND completed_at IS NULL
		ORDER BY created_at ASC
	`, leadID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFollowUps(rows)
}

func (r *Repository) ListFollowUpsByLead(ctx context.Context, leadID, tenantID uuid.UUID) ([]domain.FollowUp, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+followUpColumns+`
		FROM follow_ups
		WHERE lead_id = $1 AND tenant_id = $2
		ORDER BY completed_at IS NOT NULL, due_date ASC
	`, leadID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFollowUps(rows)
}

// ListDueFollowUps returns open follow-ups due on or before the given day,
// most urgent first.
func (r *Repository) ListDueFollowUps(ctx context.Context, tenantID uuid.UUID, due time.Time) ([]domain.FollowUp, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+followUpColumns+`
		FROM follow_ups
		WHERE tenant_id = $1 AND completed_at IS NULL AND due_date <= $2
		ORDER BY escalation_level DESC, due_date ASC
	`, tenantID, domain.Day(due))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFollowUps(rows)
}

// ListOpenAutoFollowUpsForSweep returns every open auto-generated follow-up
// of a tenant that is past due, for the escalation sweep.
func (r *Repository) ListOpenAutoFollowUpsForSweep(ctx context.Context, tenantID uuid.UUID, today time.Time) ([]domain.FollowUp, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+followUpColumns+`
		FROM follow_ups
		WHERE tenant_id = $1 AND auto_generated = true AND completed_at IS NULL AND due_date < $2
		ORDER BY due_date ASC
	`, tenantID, domain.Day(today))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFollowUps(rows)
}

// ListTenantsWithOpenFollowUps returns the tenants that have at least one
// open auto-generated follow-up, so the sweep can fan out per tenant.
func (r *Repository) ListTenantsWithOpenFollowUps(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT tenant_id FROM follow_ups
		WHERE auto_generated = true AND completed_at IS NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		tenants = append(tenants, id)
	}
	return tenants, rows.Err()
}

func (r *Repository) GetFollowUp(ctx context.Context, id, tenantID uuid.UUID) (domain.FollowUp, error) {
	var task domain.FollowUp
	err := r.pool.QueryRow(ctx, `
		SELECT `+followUpColumns+`
		FROM follow_ups WHERE id = $1 AND tenant_id = $2
	`, id, tenantID).Scan(followUpFields(&task)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FollowUp{}, ErrFollowUpNotFound
	}
	return task, err
}

func (r *Repository) CreateFollowUp(ctx context.Context, task domain.FollowUp) error {
	return insertFollowUp(ctx, r.pool, task)
}

// CompleteFollowUp closes an open follow-up. Completing an already completed
// task returns ErrFollowUpNotFound.
func (r *Repository) CompleteFollowUp(ctx context.Context, id, tenantID uuid.UUID, notes *string) (domain.FollowUp, error) {
	var task domain.FollowUp
	err := r.pool.QueryRow(ctx, `
		UPDATE follow_ups
		SET completed_at = now(), notes = COALESCE($3, notes), updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND completed_at IS NULL
		RETURNING `+followUpColumns,
		id, tenantID, notes,
	).Scan(followUpFields(&task)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FollowUp{}, ErrFollowUpNotFound
	}
	return task, err
}

// UpdateFollowUps persists escalation changes from the sweep in one
// transaction and returns the rows that were still open when written.
func (r *Repository) UpdateFollowUps(ctx context.Context, tasks []domain.FollowUp) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, task := range tasks {
		if err := updateFollowUp(ctx, tx, task); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// querier is the slice of pgx shared by *pgxpool.Pool and pgx.Tx that the
// insert and update helpers need.
type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func insertFollowUp(ctx context.Context, q querier, task domain.FollowUp) error {
	_, err := q.Exec(ctx, `
		INSERT INTO follow_ups (id, lead_id, tenant_id, type, due_date, priority, auto_generated, escalation_level, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, task.ID, task.LeadID, task.TenantID, task.Type, task.DueDate, task.Priority,
		task.AutoGenerated, task.EscalationLevel, task.Notes, task.CreatedAt, task.UpdatedAt)
	return err
}

func updateFollowUp(ctx context.Context, q querier, task domain.FollowUp) error {
	_, err := q.Exec(ctx, `
		UPDATE follow_ups
		SET due_date = $3, priority = $4, escalation_level = $5, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND completed_at IS NULL
	`, task.ID, task.TenantID, task.DueDate, task.Priority, task.EscalationLevel)
	return err
}

func scanFollowUps(rows pgx.Rows) ([]domain.FollowUp, error) {
	items := make([]domain.FollowUp, 0)
	for rows.Next() {
		var task domain.FollowUp
		if err := rows.Scan(followUpFields(&task)...); err != nil {
			return nil, err
		}
		items = append(items, task)
	}
	return items, rows.Err()
}

func followUpFields(task *domain.FollowUp) []interface{} {
	return []interface{}{
		&task.ID, &task.LeadID, &task.TenantID, &task.Type, &task.DueDate, &task.Priority,
		&task.AutoGenerated, &task.EscalationLevel, &task.CompletedAt, &task.Notes,
		&task.CreatedAt, &task.UpdatedAt,
	}
}
