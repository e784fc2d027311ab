package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestAreaToken is the reserved first-step identifier meaning "the area of
// the request's own subject". It is resolved when steps are created and may
// only ever occupy position 1 of a route.
const RequestAreaToken = "REQUEST_AREA"

// FlowConfigKey is the single configuration row key. The whole flow
// configuration lives in one keyed record with upsert semantics.
const FlowConfigKey = "approval_flows"

// FlowDefinition is the route for one request type: an ordered list of area
// step identifiers (the REQUEST_AREA token or a concrete area name).
type FlowDefinition struct {
	RequestType RequestType `json:"request_type"`
	Steps       []string    `json:"steps"`
	Enabled     bool        `json:"enabled"`
}

// FlowConfig is the persisted configuration record. Definitions holds the
// five FlowDefinitions serialized as JSON; Version bumps on every replace or
// reset.
type FlowConfig struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ConfigKey   string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"config_key"`
	Definitions string     `gorm:"type:jsonb;not null" json:"definitions"`
	Version     int        `gorm:"not null;default:1" json:"version"`
	UpdatedBy   *uuid.UUID `gorm:"type:uuid" json:"updated_by"`
	Updater     *User      `gorm:"foreignKey:UpdatedBy" json:"updater,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (f *FlowConfig) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// DefaultFlowDefinitions returns the hard-coded default routes. Used when no
// configuration row exists and by the reset operation. Always returns a fresh
// copy so callers can mutate drafts freely.
func DefaultFlowDefinitions() []FlowDefinition {
	return []FlowDefinition{
		{RequestType: RequestTypeRecess, Steps: []string{RequestAreaToken, "RH", "Diretoria"}, Enabled: true},
		{RequestType: RequestTypeTermination, Steps: []string{RequestAreaToken, "RH", "Diretoria"}, Enabled: true},
		{RequestType: RequestTypeHiring, Steps: []string{RequestAreaToken, "RH", "Financeiro", "Diretoria"}, Enabled: true},
		{RequestType: RequestTypePurchase, Steps: []string{RequestAreaToken, "Financeiro"}, Enabled: true},
		{RequestType: RequestTypeRemuneration, Steps: []string{RequestAreaToken, "RH", "Financeiro", "Diretoria"}, Enabled: true},
	}
}
