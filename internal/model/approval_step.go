package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalStep is one ordered stage of a request's approval route. The pair
// (RequestType, RequestID) identifies the single owning request across the
// five request tables. TargetAreaID is resolved from the flow configuration
// once, when the step is created, and never re-resolved afterwards: editing
// the configuration or moving the subject to another area must not reroute a
// step already in flight.
//
// A nil TargetAreaID means the configured area name did not resolve at
// creation time. That step is not corrupt: no designated approver can ever
// match it, so only an admin override can act on it.
type ApprovalStep struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	RequestType   RequestType `gorm:"type:varchar(20);not null;index:idx_steps_request,priority:1" json:"request_type"`
	RequestID     uuid.UUID   `gorm:"type:uuid;not null;index:idx_steps_request,priority:2" json:"request_id"`
	StepNumber    int         `gorm:"not null" json:"step_number"` // 1-based, contiguous per request
	TargetAreaID  *uuid.UUID  `gorm:"type:uuid" json:"target_area_id"`
	TargetArea    *Area       `gorm:"foreignKey:TargetAreaID" json:"target_area,omitempty"`
	Status        string      `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ApproverID    *uuid.UUID  `gorm:"type:uuid" json:"approver_id"`
	Approver      *User       `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	ApprovedAt    *time.Time  `json:"approved_at"`
	Comment       string      `gorm:"type:text" json:"comment"`
	AdminOverride bool        `gorm:"not null;default:false" json:"admin_override"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (s *ApprovalStep) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
