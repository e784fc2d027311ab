package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RequestType identifies one of the five business request kinds. The set is
// closed; every approval step carries one of these together with the request
// id so a step always resolves to exactly one owning request.
type RequestType string

const (
	RequestTypeRecess       RequestType = "RECESS"
	RequestTypeTermination  RequestType = "TERMINATION"
	RequestTypeHiring       RequestType = "HIRING"
	RequestTypePurchase     RequestType = "PURCHASE"
	RequestTypeRemuneration RequestType = "REMUNERATION"
)

// AllRequestTypes lists every request kind in a stable order.
var AllRequestTypes = []RequestType{
	RequestTypeRecess,
	RequestTypeTermination,
	RequestTypeHiring,
	RequestTypePurchase,
	RequestTypeRemuneration,
}

// Valid reports whether t is one of the five known request types.
func (t RequestType) Valid() bool {
	switch t {
	case RequestTypeRecess, RequestTypeTermination, RequestTypeHiring,
		RequestTypePurchase, RequestTypeRemuneration:
		return true
	}
	return false
}

// Request/step status enum constants
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Hiring sub-state constants. A hiring request enters this secondary state
// machine only after the approval chain fully approves it.
const (
	HiringStageWaiting    = "WAITING"
	HiringStageInProgress = "IN_PROGRESS"
	HiringStageHired      = "HIRED"
)

// RecessRequest asks for a paid recess period for a provider.
type RecessRequest struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProviderID uuid.UUID  `gorm:"type:uuid;not null;index" json:"provider_id"`
	Provider   *Provider  `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	StartDate  time.Time  `gorm:"not null" json:"start_date"`
	EndDate    time.Time  `gorm:"not null" json:"end_date"`
	Reason     string     `gorm:"type:text" json:"reason"`
	Status     string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid;index" json:"created_by"`
	Creator    *User      `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (r *RecessRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TerminationRequest asks for a provider's contract to be ended. Full
// approval marks the provider inactive.
type TerminationRequest struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProviderID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"provider_id"`
	Provider      *Provider  `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Reason        string     `gorm:"type:text;not null" json:"reason"`
	TerminationAt *time.Time `json:"termination_at"`
	Status        string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid;index" json:"created_by"`
	Creator       *User      `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (r *TerminationRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// HiringRequest asks for a new provider in a given area/position. After full
// approval it advances through WAITING -> IN_PROGRESS -> HIRED; reaching
// HIRED creates the provider record.
type HiringRequest struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	AreaID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"area_id"`
	Area              *Area           `gorm:"foreignKey:AreaID" json:"area,omitempty"`
	PositionID        *uuid.UUID      `gorm:"type:uuid" json:"position_id"`
	Position          *Position       `gorm:"foreignKey:PositionID" json:"position,omitempty"`
	ProposedSalary    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"proposed_salary"`
	JobDescription    string          `gorm:"type:text" json:"job_description"`
	Status            string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	HiringStage       string          `gorm:"type:varchar(20)" json:"hiring_stage"` // empty until fully approved
	HiredName         string          `gorm:"type:varchar(255)" json:"hired_name"`
	HiredEmail        string          `gorm:"type:varchar(255)" json:"hired_email"`
	ActualStartDate   *time.Time      `json:"actual_start_date"`
	CreatedProviderID *uuid.UUID      `gorm:"type:uuid" json:"created_provider_id"`
	CreatedBy         *uuid.UUID      `gorm:"type:uuid;index" json:"created_by"`
	Creator           *User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (r *HiringRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// PurchaseRequest asks for a purchase on behalf of the creating user. The
// subject area is the creator's own area.
type PurchaseRequest struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Supplier    string          `gorm:"type:varchar(255)" json:"supplier"`
	Status      string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	AreaID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"area_id"` // creator's area, pinned at creation
	Area        *Area           `gorm:"foreignKey:AreaID" json:"area,omitempty"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid;index" json:"created_by"`
	Creator     *User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (r *PurchaseRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RemunerationRequest asks for a salary change for a provider. Full approval
// rewrites the provider's salary to NewSalary.
type RemunerationRequest struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProviderID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"provider_id"`
	Provider      *Provider       `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	CurrentSalary decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"current_salary"`
	NewSalary     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"new_salary"`
	Justification string          `gorm:"type:text" json:"justification"`
	Status        string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid;index" json:"created_by"`
	Creator       *User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (r *RemunerationRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
