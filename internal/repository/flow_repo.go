package repository

import (
	"context"

	"backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FlowRepository persists the single keyed flow configuration record.
type FlowRepository interface {
	Get(ctx context.Context) (*model.FlowConfig, error)
	Upsert(ctx context.Context, config *model.FlowConfig) error
}

type flowRepository struct {
	db *gorm.DB
}

// NewFlowRepository returns a new instance of FlowRepository
func NewFlowRepository(db *gorm.DB) FlowRepository {
	return &flowRepository{db: db}
}

// Get returns the configuration row, or gorm.ErrRecordNotFound when nothing
// has ever been saved (the caller falls back to the defaults).
func (r *flowRepository) Get(ctx context.Context) (*model.FlowConfig, error) {
	var config model.FlowConfig
	if err := GetDB(ctx, r.db).First(&config, "config_key = ?", model.FlowConfigKey).Error; err != nil {
		return nil, err
	}
	return &config, nil
}

// Upsert inserts or replaces the keyed configuration row.
func (r *flowRepository) Upsert(ctx context.Context, config *model.FlowConfig) error {
	config.ConfigKey = model.FlowConfigKey
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "config_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"definitions", "version", "updated_by", "updated_at",
		}),
	}).Create(config).Error
}
