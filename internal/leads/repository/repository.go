package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solarlead_backend/internal/leads/domain"
)

var ErrNotFound = errors.New("lead not found")

const leadColumns = `id, tenant_id, first_name, last_name, phone, email, city,
	status, phone_status, not_reached_count, follow_up, follow_up_date, appointment_date,
	offer_pv, offer_storage, offer_backup, tvp, lost_reason, assigned_user_id,
	created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type CreateLeadParams struct {
	TenantID       uuid.UUID
	FirstName      string
	LastName       string
	Phone          string
	Email          *string
	City           string
	FollowUpDate   *time.Time
	AssignedUserID *uuid.UUID
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error) {
	var lead domain.Lead
	err := r.pool.QueryRow(ctx, `
		INSERT INTO leads (tenant_id, first_name, last_name, phone, email, city, status, phone_status, follow_up_date, assigned_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+leadColumns,
		params.TenantID, params.FirstName, params.LastName, params.Phone, params.Email, params.City,
		domain.StatusNew, domain.PhoneStatusOpen, params.FollowUpDate, params.AssignedUserID,
	).Scan(leadFields(&lead)...)
	if err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id, tenantID uuid.UUID) (domain.Lead, error) {
	var lead domain.Lead
	err := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`, id, tenantID).Scan(leadFields(&lead)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

// ListLeadsParams filters the lead listing. Zero values mean "no filter".
type ListLeadsParams struct {
	TenantID       uuid.UUID
	Status         *domain.Status
	PhoneStatus    *domain.PhoneStatus
	AssignedUserID *uuid.UUID
	City           *string
	Search         *string
	Limit          int
	Offset         int
}

func (r *Repository) List(ctx context.Context, params ListLeadsParams) ([]domain.Lead, int, error) {
	where := []string{"tenant_id = $1", "deleted_at IS NULL"}
	args := []interface{}{params.TenantID}
	argIdx := 2

	if params.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.PhoneStatus != nil {
		where = append(where, fmt.Sprintf("phone_status = $%d", argIdx))
		args = append(args, *params.PhoneStatus)
		argIdx++
	}
	if params.AssignedUserID != nil {
		where = append(where, fmt.Sprintf("assigned_user_id = $%d", argIdx))
		args = append(args, *params.AssignedUserID)
		argIdx++
	}
	if params.City != nil {
		where = append(where, fmt.Sprintf("city ILIKE $%d", argIdx))
		args = append(args, *params.City)
		argIdx++
	}
	if params.Search != nil {
		where = append(where, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR phone LIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+*params.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM leads WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM leads
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]domain.Lead, 0)
	for rows.Next() {
		var lead domain.Lead
		if err := rows.Scan(leadFields(&lead)...); err != nil {
			return nil, 0, err
		}
		items = append(items, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return items, total, nil
}

func (r *Repository) SoftDelete(ctx context.Context, id, tenantID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`, id, tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyUpdatePlan persists one lead update batch atomically: the patched lead
// row, the follow-up inserts and updates, and the history entry. The caller
// handles notification and webhook intents after commit.
func (r *Repository) ApplyUpdatePlan(ctx context.Context, plan domain.UpdatePlan) (domain.Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lead, err := updateLead(ctx, tx, plan)
	if err != nil {
		return domain.Lead{}, err
	}

	for _, task := range plan.FollowUpInserts {
		if err := insertFollowUp(ctx, tx, task); err != nil {
			return domain.Lead{}, fmt.Errorf("failed to insert follow-up: %w", err)
		}
	}
	for _, task := range plan.FollowUpUpdates {
		if err := updateFollowUp(ctx, tx, task); err != nil {
			return domain.Lead{}, fmt.Errorf("failed to update follow-up: %w", err)
		}
	}

	if err := insertHistory(ctx, tx, plan.History); err != nil {
		return domain.Lead{}, fmt.Errorf("failed to insert history entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Lead{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return lead, nil
}

func updateLead(ctx context.Context, tx pgx.Tx, plan domain.UpdatePlan) (domain.Lead, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	p := plan.Patch
	fields := []struct {
		enabled bool
		column  string
		value   interface{}
	}{
		{p.FirstName.Set, "first_name", p.FirstName.Value},
		{p.LastName.Set, "last_name", p.LastName.Value},
		{p.Phone.Set, "phone", p.Phone.Value},
		{p.Email.Set, "email", p.Email.Ptr()},
		{p.City.Set, "city", p.City.Value},
		{p.PhoneStatus.Set, "phone_status", p.PhoneStatus.Value},
		{p.NotReachedCount.Set, "not_reached_count", p.NotReachedCount.Value},
		{p.FollowUp.Set, "follow_up", p.FollowUp.Value},
		{p.FollowUpDate.Set, "follow_up_date", p.FollowUpDate.Ptr()},
		{p.AppointmentDate.Set, "appointment_date", p.AppointmentDate.Ptr()},
		{p.OfferPV.Set, "offer_pv", p.OfferPV.Value},
		{p.OfferStorage.Set, "offer_storage", p.OfferStorage.Value},
		{p.OfferBackup.Set, "offer_backup", p.OfferBackup.Value},
		{p.TVP.Set, "tvp", p.TVP.Value},
		{p.LostReason.Set, "lost_reason", p.LostReason.Ptr()},
		{p.AssignedUserID.Set, "assigned_user_id", p.AssignedUserID.Ptr()},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	// The resolved status is always written, even when the patch carried none.
	setClauses = append(setClauses, fmt.Sprintf("status = $%d", argIdx))
	args = append(args, plan.NewStatus)
	argIdx++

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, plan.LeadID, plan.TenantID)

	query := fmt.Sprintf(`
		UPDATE leads SET %s
		WHERE id = $%d AND tenant_id = $%d AND deleted_at IS NULL
		RETURNING `+leadColumns,
		strings.Join(setClauses, ", "), argIdx, argIdx+1)

	var lead domain.Lead
	err := tx.QueryRow(ctx, query, args...).Scan(leadFields(&lead)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func leadFields(lead *domain.Lead) []interface{} {
	return []interface{}{
		&lead.ID, &lead.TenantID, &lead.FirstName, &lead.LastName, &lead.Phone, &lead.Email, &lead.City,
		&lead.Status, &lead.PhoneStatus, &lead.NotReachedCount, &lead.FollowUp, &lead.FollowUpDate, &lead.AppointmentDate,
		&lead.OfferPV, &lead.OfferStorage, &lead.OfferBackup, &lead.TVP, &lead.LostReason, &lead.AssignedUserID,
		&lead.CreatedAt, &lead.UpdatedAt,
	}
}
