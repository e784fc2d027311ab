package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
)

// AuditService exposes the audit trail written by the workflow engine.
type AuditService interface {
	ListAuditLogs(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

// NewAuditService returns a new instance of AuditService
func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) ListAuditLogs(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error) {
	return s.auditRepo.List(ctx, action, page, limit)
}
