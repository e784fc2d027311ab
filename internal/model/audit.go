package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog action constants
const (
	ActionCreateRequest     = "CREATE_REQUEST"
	ActionApproveStep       = "APPROVE_STEP"
	ActionRejectStep        = "REJECT_STEP"
	ActionRequestApproved   = "REQUEST_APPROVED"
	ActionRequestRejected   = "REQUEST_REJECTED"
	ActionReplaceFlows      = "REPLACE_FLOWS"
	ActionResetFlows        = "RESET_FLOWS"
	ActionHiringProgress    = "HIRING_PROGRESS"
	ActionProviderHired     = "PROVIDER_HIRED"
	ActionProviderChanged   = "PROVIDER_CHANGED"
	ActionProviderInactive  = "PROVIDER_INACTIVATED"
	ActionProviderNewSalary = "PROVIDER_SALARY_UPDATED"
)

// AuditLog records who did what to which entity. Rows are written inside the
// same transaction as the change they describe.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(64);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name"`
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
