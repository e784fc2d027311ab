package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Provider is a service provider (contractor/collaborator) managed by the
// platform. Termination approvals deactivate it, remuneration approvals
// rewrite its salary, and completed hirings create a new one.
type Provider struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string          `gorm:"type:varchar(255);not null" json:"name"`
	Email            string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	AreaID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"area_id"`
	Area             *Area           `gorm:"foreignKey:AreaID" json:"area,omitempty"`
	PositionID       *uuid.UUID      `gorm:"type:uuid" json:"position_id"`
	Position         *Position       `gorm:"foreignKey:PositionID" json:"position,omitempty"`
	HierarchyLevelID *uuid.UUID      `gorm:"type:uuid" json:"hierarchy_level_id"`
	HierarchyLevel   *HierarchyLevel `gorm:"foreignKey:HierarchyLevelID" json:"hierarchy_level,omitempty"`
	Salary           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"salary"`
	Active           bool            `gorm:"not null;default:true" json:"active"`
	StartDate        *time.Time      `json:"start_date"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *Provider) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
