package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperrors"

	"github.com/google/uuid"
)

type CreatePositionDTO struct {
	Name string `json:"name" binding:"required"`
}

type CreateLevelDTO struct {
	Name string `json:"name" binding:"required"`
	Rank int    `json:"rank"`
}

// PositionService manages positions and hierarchy levels.
type PositionService interface {
	CreatePosition(ctx context.Context, dto CreatePositionDTO) (*model.Position, error)
	ListPositions(ctx context.Context) ([]model.Position, error)
	DeletePosition(ctx context.Context, id uuid.UUID) error
	CreateLevel(ctx context.Context, dto CreateLevelDTO) (*model.HierarchyLevel, error)
	ListLevels(ctx context.Context) ([]model.HierarchyLevel, error)
	DeleteLevel(ctx context.Context, id uuid.UUID) error
}

type positionService struct {
	repo repository.PositionRepository
}

// NewPositionService returns a new instance of PositionService
func NewPositionService(repo repository.PositionRepository) PositionService {
	return &positionService{repo: repo}
}

func (s *positionService) CreatePosition(ctx context.Context, dto CreatePositionDTO) (*model.Position, error) {
	if dto.Name == "" {
		return nil, apperrors.NewValidation("position name is required")
	}
	position := &model.Position{Name: dto.Name}
	if err := s.repo.CreatePosition(ctx, position); err != nil {
		return nil, err
	}
	return position, nil
}

func (s *positionService) ListPositions(ctx context.Context) ([]model.Position, error) {
	return s.repo.ListPositions(ctx)
}

func (s *positionService) DeletePosition(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeletePosition(ctx, id)
}

func (s *positionService) CreateLevel(ctx context.Context, dto CreateLevelDTO) (*model.HierarchyLevel, error) {
	if dto.Name == "" {
		return nil, apperrors.NewValidation("hierarchy level name is required")
	}
	level := &model.HierarchyLevel{Name: dto.Name, Rank: dto.Rank}
	if err := s.repo.CreateLevel(ctx, level); err != nil {
		return nil, err
	}
	return level, nil
}

func (s *positionService) ListLevels(ctx context.Context) ([]model.HierarchyLevel, error) {
	return s.repo.ListLevels(ctx)
}

func (s *positionService) DeleteLevel(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteLevel(ctx, id)
}
