package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProviderRepository defines the interface for data access of Provider entities
type ProviderRepository interface {
	Create(ctx context.Context, provider *model.Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Provider, error)
	GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Provider, error)
	List(ctx context.Context, areaID *uuid.UUID, activeOnly bool, page, limit int) ([]model.Provider, int64, error)
	Update(ctx context.Context, provider *model.Provider) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetSalary(ctx context.Context, id uuid.UUID, salary decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type providerRepository struct {
	db *gorm.DB
}

// NewProviderRepository returns a new instance of ProviderRepository
func NewProviderRepository(db *gorm.DB) ProviderRepository {
	return &providerRepository{db: db}
}

func (r *providerRepository) Create(ctx context.Context, provider *model.Provider) error {
	return GetDB(ctx, r.db).Create(provider).Error
}

func (r *providerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	var provider model.Provider
	if err := GetDB(ctx, r.db).First(&provider, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *providerRepository) GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	var provider model.Provider
	if err := GetDB(ctx, r.db).Preload("Area").Preload("Position").Preload("HierarchyLevel").
		First(&provider, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *providerRepository) List(ctx context.Context, areaID *uuid.UUID, activeOnly bool, page, limit int) ([]model.Provider, int64, error) {
	var providers []model.Provider
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Provider{})
	if areaID != nil {
		query = query.Where("area_id = ?", *areaID)
	}
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Preload("Area").Preload("Position")
	if areaID != nil {
		fetch = fetch.Where("area_id = ?", *areaID)
	}
	if activeOnly {
		fetch = fetch.Where("active = ?", true)
	}
	if err := fetch.Order("name ASC").Offset(offset).Limit(limit).Find(&providers).Error; err != nil {
		return nil, 0, err
	}

	return providers, total, nil
}

func (r *providerRepository) Update(ctx context.Context, provider *model.Provider) error {
	return GetDB(ctx, r.db).Save(provider).Error
}

func (r *providerRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return GetDB(ctx, r.db).Model(&model.Provider{}).
		Where("id = ?", id).
		Update("active", active).Error
}

func (r *providerRepository) SetSalary(ctx context.Context, id uuid.UUID, salary decimal.Decimal) error {
	return GetDB(ctx, r.db).Model(&model.Provider{}).
		Where("id = ?", id).
		Update("salary", salary).Error
}

func (r *providerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Provider{}, "id = ?", id).Error
}
