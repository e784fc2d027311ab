package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompleteHiringDTO carries the data required to close a hiring: who was
// hired and when they actually start. Both are mandatory, a hiring cannot
// reach HIRED without them.
type CompleteHiringDTO struct {
	HiredName       string    `json:"hired_name" binding:"required"`
	HiredEmail      string    `json:"hired_email" binding:"required,email"`
	ActualStartDate time.Time `json:"actual_start_date" binding:"required"`
}

// HiringService drives the secondary state machine a hiring request enters
// after full approval: WAITING -> IN_PROGRESS -> HIRED. Reaching HIRED
// creates the provider record with the request's area, position and proposed
// salary, in the same transaction as the stage write.
type HiringService interface {
	StartProgress(ctx context.Context, requestID, actorID uuid.UUID) (*model.HiringRequest, error)
	CompleteHiring(ctx context.Context, requestID, actorID uuid.UUID, dto CompleteHiringDTO) (*model.HiringRequest, error)
}

type hiringService struct {
	requestRepo  repository.RequestRepository
	providerRepo repository.ProviderRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	notifier     Notifier
}

// NewHiringService returns a new instance of HiringService
func NewHiringService(
	requestRepo repository.RequestRepository,
	providerRepo repository.ProviderRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) HiringService {
	return &hiringService{
		requestRepo:  requestRepo,
		providerRepo: providerRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		notifier:     notifier,
	}
}

// StartProgress moves a fully approved hiring from WAITING to IN_PROGRESS.
func (s *hiringService) StartProgress(ctx context.Context, requestID, actorID uuid.UUID) (*model.HiringRequest, error) {
	var updated *model.HiringRequest

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.loadApprovedHiring(txCtx, requestID)
		if err != nil {
			return err
		}
		if req.HiringStage != model.HiringStageWaiting {
			return apperrors.NewValidation("hiring is %s, expected %s", req.HiringStage, model.HiringStageWaiting)
		}

		req.HiringStage = model.HiringStageInProgress
		if err := s.requestRepo.UpdateHiring(txCtx, req); err != nil {
			return fmt.Errorf("failed to update hiring stage: %w", err)
		}

		if err := s.auditStage(txCtx, req, actorID); err != nil {
			return err
		}

		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Publish("hiring_progressed", updated)
	}
	return updated, nil
}

// CompleteHiring moves an IN_PROGRESS hiring to HIRED and creates the new
// provider record.
func (s *hiringService) CompleteHiring(ctx context.Context, requestID, actorID uuid.UUID, dto CompleteHiringDTO) (*model.HiringRequest, error) {
	if dto.HiredName == "" {
		return nil, apperrors.NewValidation("hired name is required")
	}
	if dto.ActualStartDate.IsZero() {
		return nil, apperrors.NewValidation("actual start date is required")
	}

	var updated *model.HiringRequest

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.loadApprovedHiring(txCtx, requestID)
		if err != nil {
			return err
		}
		if req.HiringStage == model.HiringStageHired {
			return apperrors.NewAlreadyProcessed("hiring request", model.HiringStageHired)
		}
		if req.HiringStage != model.HiringStageInProgress {
			return apperrors.NewValidation("hiring is %s, expected %s", req.HiringStage, model.HiringStageInProgress)
		}

		startDate := dto.ActualStartDate
		provider := &model.Provider{
			Name:       dto.HiredName,
			Email:      dto.HiredEmail,
			AreaID:     req.AreaID,
			PositionID: req.PositionID,
			Salary:     req.ProposedSalary,
			Active:     true,
			StartDate:  &startDate,
		}
		if err := s.providerRepo.Create(txCtx, provider); err != nil {
			return fmt.Errorf("failed to create provider: %w", err)
		}

		req.HiringStage = model.HiringStageHired
		req.HiredName = dto.HiredName
		req.HiredEmail = dto.HiredEmail
		req.ActualStartDate = &startDate
		req.CreatedProviderID = &provider.ID
		if err := s.requestRepo.UpdateHiring(txCtx, req); err != nil {
			return fmt.Errorf("failed to update hiring stage: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"request_id": req.ID.String(),
			"name":       dto.HiredName,
			"start_date": startDate.Format("2006-01-02"),
		})
		if err := s.auditRepo.Create(txCtx, &model.AuditLog{
			UserID:     &actorID,
			Action:     model.ActionProviderHired,
			EntityID:   provider.ID.String(),
			EntityName: dto.HiredName,
			Details:    string(details),
		}); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Publish("hiring_completed", updated)
	}
	return updated, nil
}

func (s *hiringService) loadApprovedHiring(ctx context.Context, requestID uuid.UUID) (*model.HiringRequest, error) {
	req, err := s.requestRepo.GetHiring(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("hiring request", requestID.String())
		}
		return nil, fmt.Errorf("failed to load hiring request: %w", err)
	}
	if req.Status != model.StatusApproved {
		return nil, apperrors.NewValidation("hiring request is %s; only approved hirings can progress", req.Status)
	}
	return req, nil
}

func (s *hiringService) auditStage(ctx context.Context, req *model.HiringRequest, actorID uuid.UUID) error {
	details, _ := json.Marshal(map[string]interface{}{"stage": req.HiringStage})
	if err := s.auditRepo.Create(ctx, &model.AuditLog{
		UserID:   &actorID,
		Action:   model.ActionHiringProgress,
		EntityID: req.ID.String(),
		Details:  string(details),
	}); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
