package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PositionRepository defines data access for positions and hierarchy levels
type PositionRepository interface {
	CreatePosition(ctx context.Context, position *model.Position) error
	GetPosition(ctx context.Context, id uuid.UUID) (*model.Position, error)
	ListPositions(ctx context.Context) ([]model.Position, error)
	DeletePosition(ctx context.Context, id uuid.UUID) error
	CreateLevel(ctx context.Context, level *model.HierarchyLevel) error
	ListLevels(ctx context.Context) ([]model.HierarchyLevel, error)
	DeleteLevel(ctx context.Context, id uuid.UUID) error
}

type positionRepository struct {
	db *gorm.DB
}

// NewPositionRepository returns a new instance of PositionRepository
func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) CreatePosition(ctx context.Context, position *model.Position) error {
	return GetDB(ctx, r.db).Create(position).Error
}

func (r *positionRepository) GetPosition(ctx context.Context, id uuid.UUID) (*model.Position, error) {
	var position model.Position
	if err := GetDB(ctx, r.db).First(&position, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *positionRepository) ListPositions(ctx context.Context) ([]model.Position, error) {
	var positions []model.Position
	if err := GetDB(ctx, r.db).Order("name ASC").Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *positionRepository) DeletePosition(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Position{}, "id = ?", id).Error
}

func (r *positionRepository) CreateLevel(ctx context.Context, level *model.HierarchyLevel) error {
	return GetDB(ctx, r.db).Create(level).Error
}

func (r *positionRepository) ListLevels(ctx context.Context) ([]model.HierarchyLevel, error) {
	var levels []model.HierarchyLevel
	if err := GetDB(ctx, r.db).Order("rank ASC").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *positionRepository) DeleteLevel(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.HierarchyLevel{}, "id = ?", id).Error
}
