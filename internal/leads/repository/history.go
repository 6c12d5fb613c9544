package repository

import (
	"context"

	"github.com/google/uuid"

	"solarlead_backend/internal/leads/domain"
)

// ListHistory returns a lead's status history, newest first.
func (r *Repository) ListHistory(ctx context.Context, leadID, tenantID uuid.UUID) ([]domain.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, tenant_id, old_status, new_status, old_phone_status, new_phone_status,
			changed_by, reason, notes, changed_at
		FROM lead_status_history
		WHERE lead_id = $1 AND tenant_id = $2
		ORDER BY changed_at DESC
	`, leadID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&entry.ID, &entry.LeadID, &entry.TenantID, &entry.OldStatus, &entry.NewStatus,
			&entry.OldPhoneStatus, &entry.NewPhoneStatus,
			&entry.ChangedBy, &entry.Reason, &entry.Notes, &entry.ChangedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, entry)
	}
	return items, rows.Err()
}

func insertHistory(ctx context.Context, q querier, entry domain.HistoryEntry) error {
	_, err := q.Exec(ctx, `
		INSERT INTO lead_status_history (id, lead_id, tenant_id, old_status, new_status, old_phone_status, new_phone_status, changed_by, reason, notes, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, entry.ID, entry.LeadID, entry.TenantID, entry.OldStatus, entry.NewStatus,
		entry.OldPhoneStatus, entry.NewPhoneStatus, entry.ChangedBy, entry.Reason, entry.Notes, entry.ChangedAt)
	return err
}
