package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateAreaDTO struct {
	Name string `json:"name" binding:"required"`
}

// UpdateAreaDTO carries designation changes. Empty string leaves a
// designation untouched; the literal "none" clears it.
type UpdateAreaDTO struct {
	Name       string `json:"name"`
	DirectorID string `json:"director_id"`
	CLevelID   string `json:"c_level_id"`
	LeaderID   string `json:"leader_id"`
}

// AreaService manages organizational areas and their approver designations.
type AreaService interface {
	CreateArea(ctx context.Context, dto CreateAreaDTO) (*model.Area, error)
	GetArea(ctx context.Context, id uuid.UUID) (*model.Area, error)
	ListAreas(ctx context.Context, page, limit int) ([]model.Area, int64, error)
	UpdateArea(ctx context.Context, id uuid.UUID, dto UpdateAreaDTO) (*model.Area, error)
	DeleteArea(ctx context.Context, id uuid.UUID) error
}

type areaService struct {
	areaRepo repository.AreaRepository
	userRepo repository.UserRepository
}

// NewAreaService returns a new instance of AreaService
func NewAreaService(areaRepo repository.AreaRepository, userRepo repository.UserRepository) AreaService {
	return &areaService{areaRepo: areaRepo, userRepo: userRepo}
}

func (s *areaService) CreateArea(ctx context.Context, dto CreateAreaDTO) (*model.Area, error) {
	if _, err := s.areaRepo.GetByName(ctx, dto.Name); err == nil {
		return nil, apperrors.NewValidation("area %q already exists", dto.Name)
	}

	area := &model.Area{Name: dto.Name}
	if err := s.areaRepo.Create(ctx, area); err != nil {
		return nil, fmt.Errorf("failed to create area: %w", err)
	}
	return area, nil
}

func (s *areaService) GetArea(ctx context.Context, id uuid.UUID) (*model.Area, error) {
	area, err := s.areaRepo.GetByIDWithApprovers(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("area", id.String())
		}
		return nil, err
	}
	return area, nil
}

func (s *areaService) ListAreas(ctx context.Context, page, limit int) ([]model.Area, int64, error) {
	return s.areaRepo.List(ctx, page, limit)
}

func (s *areaService) UpdateArea(ctx context.Context, id uuid.UUID, dto UpdateAreaDTO) (*model.Area, error) {
	area, err := s.areaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("area", id.String())
		}
		return nil, err
	}

	if dto.Name != "" && dto.Name != area.Name {
		if _, err := s.areaRepo.GetByName(ctx, dto.Name); err == nil {
			return nil, apperrors.NewValidation("area %q already exists", dto.Name)
		}
		area.Name = dto.Name
	}

	if err := s.applyDesignation(ctx, dto.DirectorID, &area.DirectorID); err != nil {
		return nil, err
	}
	if err := s.applyDesignation(ctx, dto.CLevelID, &area.CLevelID); err != nil {
		return nil, err
	}
	if err := s.applyDesignation(ctx, dto.LeaderID, &area.LeaderID); err != nil {
		return nil, err
	}

	if err := s.areaRepo.Update(ctx, area); err != nil {
		return nil, fmt.Errorf("failed to update area: %w", err)
	}
	return area, nil
}

func (s *areaService) DeleteArea(ctx context.Context, id uuid.UUID) error {
	if _, err := s.areaRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("area", id.String())
		}
		return err
	}
	// Steps pinned to this area keep the dangling id; only an admin
	// override can act on them afterwards.
	return s.areaRepo.Delete(ctx, id)
}

func (s *areaService) applyDesignation(ctx context.Context, value string, target **uuid.UUID) error {
	switch value {
	case "":
		return nil
	case "none":
		*target = nil
		return nil
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return apperrors.NewValidation("invalid user id %q", value)
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("user", value)
		}
		return err
	}
	*target = &userID
	return nil
}
