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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRecessDTO struct {
	ProviderID string    `json:"provider_id" binding:"required"`
	StartDate  time.Time `json:"start_date" binding:"required"`
	EndDate    time.Time `json:"end_date" binding:"required"`
	Reason     string    `json:"reason"`
}

type CreateTerminationDTO struct {
	ProviderID    string     `json:"provider_id" binding:"required"`
	Reason        string     `json:"reason" binding:"required"`
	TerminationAt *time.Time `json:"termination_at"`
}

type CreateHiringDTO struct {
	AreaID         string          `json:"area_id" binding:"required"`
	PositionID     string          `json:"position_id"`
	ProposedSalary decimal.Decimal `json:"proposed_salary" binding:"required"`
	JobDescription string          `json:"job_description"`
}

type CreatePurchaseDTO struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Supplier    string          `json:"supplier"`
}

type CreateRemunerationDTO struct {
	ProviderID    string          `json:"provider_id" binding:"required"`
	NewSalary     decimal.Decimal `json:"new_salary" binding:"required"`
	Justification string          `json:"justification"`
}

// RequestDetail bundles a request with its approval steps for detail views.
type RequestDetail struct {
	RequestType model.RequestType    `json:"request_type"`
	Request     interface{}          `json:"request"`
	Steps       []model.ApprovalStep `json:"steps"`
}

// RequestService creates the five request kinds. Each creation inserts the
// request row and snapshots its approval steps in the same transaction, so a
// request never exists without its route.
type RequestService interface {
	CreateRecess(ctx context.Context, creatorID uuid.UUID, dto CreateRecessDTO) (*model.RecessRequest, error)
	CreateTermination(ctx context.Context, creatorID uuid.UUID, dto CreateTerminationDTO) (*model.TerminationRequest, error)
	CreateHiring(ctx context.Context, creatorID uuid.UUID, dto CreateHiringDTO) (*model.HiringRequest, error)
	CreatePurchase(ctx context.Context, creatorID uuid.UUID, dto CreatePurchaseDTO) (*model.PurchaseRequest, error)
	CreateRemuneration(ctx context.Context, creatorID uuid.UUID, dto CreateRemunerationDTO) (*model.RemunerationRequest, error)

	GetDetail(ctx context.Context, requestType model.RequestType, requestID uuid.UUID) (*RequestDetail, error)
	ListRecess(ctx context.Context, status string, page, limit int) ([]model.RecessRequest, int64, error)
	ListTermination(ctx context.Context, status string, page, limit int) ([]model.TerminationRequest, int64, error)
	ListHiring(ctx context.Context, status string, page, limit int) ([]model.HiringRequest, int64, error)
	ListPurchase(ctx context.Context, status string, page, limit int) ([]model.PurchaseRequest, int64, error)
	ListRemuneration(ctx context.Context, status string, page, limit int) ([]model.RemunerationRequest, int64, error)
}

type requestService struct {
	requestRepo  repository.RequestRepository
	providerRepo repository.ProviderRepository
	areaRepo     repository.AreaRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditRepository
	approvals    ApprovalService
	txManager    repository.TransactionManager
}

// NewRequestService returns a new instance of RequestService
func NewRequestService(
	requestRepo repository.RequestRepository,
	providerRepo repository.ProviderRepository,
	areaRepo repository.AreaRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	approvals ApprovalService,
	txManager repository.TransactionManager,
) RequestService {
	return &requestService{
		requestRepo:  requestRepo,
		providerRepo: providerRepo,
		areaRepo:     areaRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		approvals:    approvals,
		txManager:    txManager,
	}
}

func (s *requestService) CreateRecess(ctx context.Context, creatorID uuid.UUID, dto CreateRecessDTO) (*model.RecessRequest, error) {
	provider, err := s.loadActiveProvider(ctx, dto.ProviderID)
	if err != nil {
		return nil, err
	}
	if !dto.EndDate.After(dto.StartDate) {
		return nil, apperrors.NewValidation("recess end date must be after the start date")
	}

	req := &model.RecessRequest{
		ProviderID: provider.ID,
		StartDate:  dto.StartDate,
		EndDate:    dto.EndDate,
		Reason:     dto.Reason,
		Status:     model.StatusPending,
		CreatedBy:  &creatorID,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.CreateRecess(txCtx, req); err != nil {
			return fmt.Errorf("failed to create recess request: %w", err)
		}
		return s.afterCreate(txCtx, model.RequestTypeRecess, req.ID, creatorID, provider.AreaID)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *requestService) CreateTermination(ctx context.Context, creatorID uuid.UUID, dto CreateTerminationDTO) (*model.TerminationRequest, error) {
	provider, err := s.loadActiveProvider(ctx, dto.ProviderID)
	if err != nil {
		return nil, err
	}

	req := &model.TerminationRequest{
		ProviderID:    provider.ID,
		Reason:        dto.Reason,
		TerminationAt: dto.TerminationAt,
		Status:        model.StatusPending,
		CreatedBy:     &creatorID,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.CreateTermination(txCtx, req); err != nil {
			return fmt.Errorf("failed to create termination request: %w", err)
		}
		return s.afterCreate(txCtx, model.RequestTypeTermination, req.ID, creatorID, provider.AreaID)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *requestService) CreateHiring(ctx context.Context, creatorID uuid.UUID, dto CreateHiringDTO) (*model.HiringRequest, error) {
	areaID, err := uuid.Parse(dto.AreaID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid area id")
	}
	if _, err := s.areaRepo.GetByID(ctx, areaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("area", dto.AreaID)
		}
		return nil, fmt.Errorf("failed to load area: %w", err)
	}
	if dto.ProposedSalary.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidation("proposed salary must be positive")
	}

	var positionID *uuid.UUID
	if dto.PositionID != "" {
		parsed, err := uuid.Parse(dto.PositionID)
		if err != nil {
			return nil, apperrors.NewValidation("invalid position id")
		}
		positionID = &parsed
	}

	req := &model.HiringRequest{
		AreaID:         areaID,
		PositionID:     positionID,
		ProposedSalary: dto.ProposedSalary,
		JobDescription: dto.JobDescription,
		Status:         model.StatusPending,
		CreatedBy:      &creatorID,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.CreateHiring(txCtx, req); err != nil {
			return fmt.Errorf("failed to create hiring request: %w", err)
		}
		return s.afterCreate(txCtx, model.RequestTypeHiring, req.ID, creatorID, areaID)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// CreatePurchase uses the creator's own area as the request subject.
func (s *requestService) CreatePurchase(ctx context.Context, creatorID uuid.UUID, dto CreatePurchaseDTO) (*model.PurchaseRequest, error) {
	creator, err := s.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user", creatorID.String())
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if creator.AreaID == nil {
		return nil, apperrors.NewValidation("user has no area; purchase requests need the creator's area")
	}
	if dto.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidation("purchase amount must be positive")
	}

	req := &model.PurchaseRequest{
		Description: dto.Description,
		Amount:      dto.Amount,
		Supplier:    dto.Supplier,
		Status:      model.StatusPending,
		AreaID:      *creator.AreaID,
		CreatedBy:   &creatorID,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.CreatePurchase(txCtx, req); err != nil {
			return fmt.Errorf("failed to create purchase request: %w", err)
		}
		return s.afterCreate(txCtx, model.RequestTypePurchase, req.ID, creatorID, *creator.AreaID)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// CreateRemuneration snapshots the provider's current salary at creation, so
// the request documents the change it was approved for even if the salary
// moves before approval.
func (s *requestService) CreateRemuneration(ctx context.Context, creatorID uuid.UUID, dto CreateRemunerationDTO) (*model.RemunerationRequest, error) {
	provider, err := s.loadActiveProvider(ctx, dto.ProviderID)
	if err != nil {
		return nil, err
	}
	if dto.NewSalary.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidation("new salary must be positive")
	}

	req := &model.RemunerationRequest{
		ProviderID:    provider.ID,
		CurrentSalary: provider.Salary,
		NewSalary:     dto.NewSalary,
		Justification: dto.Justification,
		Status:        model.StatusPending,
		CreatedBy:     &creatorID,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requestRepo.CreateRemuneration(txCtx, req); err != nil {
			return fmt.Errorf("failed to create remuneration request: %w", err)
		}
		return s.afterCreate(txCtx, model.RequestTypeRemuneration, req.ID, creatorID, provider.AreaID)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *requestService) GetDetail(ctx context.Context, requestType model.RequestType, requestID uuid.UUID) (*RequestDetail, error) {
	var request interface{}
	var err error

	switch requestType {
	case model.RequestTypeRecess:
		request, err = s.requestRepo.GetRecess(ctx, requestID)
	case model.RequestTypeTermination:
		request, err = s.requestRepo.GetTermination(ctx, requestID)
	case model.RequestTypeHiring:
		request, err = s.requestRepo.GetHiring(ctx, requestID)
	case model.RequestTypePurchase:
		request, err = s.requestRepo.GetPurchase(ctx, requestID)
	case model.RequestTypeRemuneration:
		request, err = s.requestRepo.GetRemuneration(ctx, requestID)
	default:
		return nil, apperrors.NewValidation("unknown request type %q", requestType)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("request", requestID.String())
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}

	steps, err := s.approvals.GetApprovalSteps(ctx, requestType, requestID)
	if err != nil {
		return nil, err
	}

	return &RequestDetail{RequestType: requestType, Request: request, Steps: steps}, nil
}

func (s *requestService) ListRecess(ctx context.Context, status string, page, limit int) ([]model.RecessRequest, int64, error) {
	return s.requestRepo.ListRecess(ctx, status, page, limit)
}

func (s *requestService) ListTermination(ctx context.Context, status string, page, limit int) ([]model.TerminationRequest, int64, error) {
	return s.requestRepo.ListTermination(ctx, status, page, limit)
}

func (s *requestService) ListHiring(ctx context.Context, status string, page, limit int) ([]model.HiringRequest, int64, error) {
	return s.requestRepo.ListHiring(ctx, status, page, limit)
}

func (s *requestService) ListPurchase(ctx context.Context, status string, page, limit int) ([]model.PurchaseRequest, int64, error) {
	return s.requestRepo.ListPurchase(ctx, status, page, limit)
}

func (s *requestService) ListRemuneration(ctx context.Context, status string, page, limit int) ([]model.RemunerationRequest, int64, error) {
	return s.requestRepo.ListRemuneration(ctx, status, page, limit)
}

// afterCreate snapshots the approval route and writes the creation audit row
// inside the caller's transaction.
func (s *requestService) afterCreate(ctx context.Context, requestType model.RequestType, requestID, creatorID, subjectAreaID uuid.UUID) error {
	if _, err := s.approvals.CreateSteps(ctx, requestType, requestID, creatorID, subjectAreaID); err != nil {
		return err
	}

	details, _ := json.Marshal(map[string]interface{}{
		"request_type": requestType,
		"subject_area": subjectAreaID.String(),
	})
	if err := s.auditRepo.Create(ctx, &model.AuditLog{
		UserID:     &creatorID,
		Action:     model.ActionCreateRequest,
		EntityID:   requestID.String(),
		EntityName: string(requestType),
		Details:    string(details),
	}); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *requestService) loadActiveProvider(ctx context.Context, providerID string) (*model.Provider, error) {
	id, err := uuid.Parse(providerID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid provider id")
	}
	provider, err := s.providerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("provider", providerID)
		}
		return nil, fmt.Errorf("failed to load provider: %w", err)
	}
	if !provider.Active {
		return nil, apperrors.NewValidation("provider is inactive")
	}
	return provider, nil
}
