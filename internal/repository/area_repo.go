package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AreaRepository defines the interface for data access of Area entities.
// Designation queries (areas directed by / c-level of a user) back the
// permission resolver.
type AreaRepository interface {
	Create(ctx context.Context, area *model.Area) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Area, error)
	GetByIDWithApprovers(ctx context.Context, id uuid.UUID) (*model.Area, error)
	GetByName(ctx context.Context, name string) (*model.Area, error)
	List(ctx context.Context, page, limit int) ([]model.Area, int64, error)
	Update(ctx context.Context, area *model.Area) error
	Delete(ctx context.Context, id uuid.UUID) error
	DirectedAreaIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CLevelAreaIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ExistingNames(ctx context.Context, names []string) (map[string]uuid.UUID, error)
}

type areaRepository struct {
	db *gorm.DB
}

// NewAreaRepository returns a new instance of AreaRepository
func NewAreaRepository(db *gorm.DB) AreaRepository {
	return &areaRepository{db: db}
}

func (r *areaRepository) Create(ctx context.Context, area *model.Area) error {
	return GetDB(ctx, r.db).Create(area).Error
}

func (r *areaRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Area, error) {
	var area model.Area
	if err := GetDB(ctx, r.db).First(&area, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &area, nil
}

func (r *areaRepository) GetByIDWithApprovers(ctx context.Context, id uuid.UUID) (*model.Area, error) {
	var area model.Area
	if err := GetDB(ctx, r.db).Preload("Director").Preload("CLevel").Preload("Leader").
		First(&area, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &area, nil
}

func (r *areaRepository) GetByName(ctx context.Context, name string) (*model.Area, error) {
	var area model.Area
	if err := GetDB(ctx, r.db).First(&area, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &area, nil
}

func (r *areaRepository) List(ctx context.Context, page, limit int) ([]model.Area, int64, error) {
	var areas []model.Area
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Area{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Director").Preload("CLevel").Preload("Leader").
		Order("name ASC").Offset(offset).Limit(limit).Find(&areas).Error; err != nil {
		return nil, 0, err
	}

	return areas, total, nil
}

func (r *areaRepository) Update(ctx context.Context, area *model.Area) error {
	return GetDB(ctx, r.db).Save(area).Error
}

func (r *areaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Area{}, "id = ?", id).Error
}

// DirectedAreaIDs returns the ids of every area whose director is userID.
func (r *areaRepository) DirectedAreaIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).Model(&model.Area{}).
		Where("director_id = ?", userID).
		Pluck("id", &ids).Error
	return ids, err
}

// CLevelAreaIDs returns the ids of every area whose c-level is userID.
func (r *areaRepository) CLevelAreaIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).Model(&model.Area{}).
		Where("c_level_id = ?", userID).
		Pluck("id", &ids).Error
	return ids, err
}

// ExistingNames maps each existing area name in names to its id. Names that
// do not exist are simply absent from the result.
func (r *areaRepository) ExistingNames(ctx context.Context, names []string) (map[string]uuid.UUID, error) {
	if len(names) == 0 {
		return map[string]uuid.UUID{}, nil
	}

	var areas []model.Area
	if err := GetDB(ctx, r.db).Where("name IN ?", names).Find(&areas).Error; err != nil {
		return nil, err
	}

	result := make(map[string]uuid.UUID, len(areas))
	for _, a := range areas {
		result[a.Name] = a.ID
	}
	return result, nil
}
