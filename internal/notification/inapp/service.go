package inapp

import (
	"context"

	"solarlead_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo *Repository
	log  *logger.Logger
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

type SendParams struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	LeadID   *uuid.UUID
	Type     string
	Title    string
	Message  string
}

// Send persists the notification for the user's notification feed.
func (s *Service) Send(ctx context.Context, p SendParams) error {
	_, err := s.repo.Create(ctx, CreateParams{
		TenantID: p.TenantID,
		UserID:   p.UserID,
		LeadID:   p.LeadID,
		Type:     p.Type,
		Title:    p.Title,
		Message:  p.Message,
	})
	if err != nil && s.log != nil {
		s.log.Error("failed to persist in-app notification", "error", err, "userId", p.UserID)
	}
	return err
}

func (s *Service) List(ctx context.Context, tenantID, userID uuid.UUID, page, pageSize int) ([]Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	offset := (page - 1) * pageSize
	return s.repo.List(ctx, tenantID, userID, pageSize, offset)
}

func (s *Service) CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, tenantID, userID)
}

func (s *Service) MarkRead(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, tenantID, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, tenantID, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, tenantID, userID)
}

func (s *Service) Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, tenantID, userID, id)
}
