package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateProviderDTO struct {
	Name             string          `json:"name" binding:"required"`
	Email            string          `json:"email" binding:"required,email"`
	AreaID           string          `json:"area_id" binding:"required"`
	PositionID       string          `json:"position_id"`
	HierarchyLevelID string          `json:"hierarchy_level_id"`
	Salary           decimal.Decimal `json:"salary" binding:"required"`
}

type UpdateProviderDTO struct {
	Name             string `json:"name"`
	Email            string `json:"email" binding:"omitempty,email"`
	AreaID           string `json:"area_id"`
	PositionID       string `json:"position_id"`
	HierarchyLevelID string `json:"hierarchy_level_id"`
}

// ProviderService manages provider records. Salary and active-flag changes
// triggered by approvals do not go through here; those are side effects of
// the workflow engine and happen inside its transaction.
type ProviderService interface {
	CreateProvider(ctx context.Context, dto CreateProviderDTO) (*model.Provider, error)
	GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error)
	ListProviders(ctx context.Context, areaID *uuid.UUID, activeOnly bool, page, limit int) ([]model.Provider, int64, error)
	UpdateProvider(ctx context.Context, id uuid.UUID, dto UpdateProviderDTO) (*model.Provider, error)
}

type providerService struct {
	providerRepo repository.ProviderRepository
	areaRepo     repository.AreaRepository
}

// NewProviderService returns a new instance of ProviderService
func NewProviderService(providerRepo repository.ProviderRepository, areaRepo repository.AreaRepository) ProviderService {
	return &providerService{providerRepo: providerRepo, areaRepo: areaRepo}
}

func (s *providerService) CreateProvider(ctx context.Context, dto CreateProviderDTO) (*model.Provider, error) {
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
	if dto.Salary.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidation("salary must be positive")
	}

	provider := &model.Provider{
		Name:   dto.Name,
		Email:  dto.Email,
		AreaID: areaID,
		Salary: dto.Salary,
		Active: true,
	}
	if dto.PositionID != "" {
		positionID, err := uuid.Parse(dto.PositionID)
		if err != nil {
			return nil, apperrors.NewValidation("invalid position id")
		}
		provider.PositionID = &positionID
	}
	if dto.HierarchyLevelID != "" {
		levelID, err := uuid.Parse(dto.HierarchyLevelID)
		if err != nil {
			return nil, apperrors.NewValidation("invalid hierarchy level id")
		}
		provider.HierarchyLevelID = &levelID
	}

	if err := s.providerRepo.Create(ctx, provider); err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return provider, nil
}

func (s *providerService) GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	provider, err := s.providerRepo.GetByIDWithRelations(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("provider", id.String())
		}
		return nil, err
	}
	return provider, nil
}

func (s *providerService) ListProviders(ctx context.Context, areaID *uuid.UUID, activeOnly bool, page, limit int) ([]model.Provider, int64, error) {
	return s.providerRepo.List(ctx, areaID, activeOnly, page, limit)
}

func (s *providerService) UpdateProvider(ctx context.Context, id uuid.UUID, dto UpdateProviderDTO) (*model.Provider, error) {
	provider, err := s.providerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("provider", id.String())
		}
		return nil, err
	}

	if dto.Name != "" {
		provider.Name = dto.Name
	}
	if dto.Email != "" {
		provider.Email = dto.Email
	}
	if dto.AreaID != "" {
		// Moving a provider to a new area never reroutes steps already
		// created for its in-flight requests; their target areas are pinned.
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
		provider.AreaID = areaID
	}
	if dto.PositionID != "" {
		positionID, err := uuid.Parse(dto.PositionID)
		if err != nil {
			return nil, apperrors.NewValidation("invalid position id")
		}
		provider.PositionID = &positionID
	}
	if dto.HierarchyLevelID != "" {
		levelID, err := uuid.Parse(dto.HierarchyLevelID)
		if err != nil {
			return nil, apperrors.NewValidation("invalid hierarchy level id")
		}
		provider.HierarchyLevelID = &levelID
	}

	if err := s.providerRepo.Update(ctx, provider); err != nil {
		return nil, fmt.Errorf("failed to update provider: %w", err)
	}
	return provider, nil
}
