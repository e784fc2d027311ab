package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FlowsResponse is the configuration surface returned to admins.
type FlowsResponse struct {
	Flows     []model.FlowDefinition `json:"flows"`
	Version   int                    `json:"version"`
	UpdatedBy *uuid.UUID             `json:"updated_by,omitempty"`
	UpdatedAt *time.Time             `json:"updated_at,omitempty"`
}

// FlowService is the flow configuration store and editor. Reads fall back to
// the hard-coded defaults when nothing has ever been saved; writes validate
// every definition invariant before persisting and bump the version.
//
// Configuration edits are independent of in-flight requests: steps already
// created keep the target area pinned at creation time.
type FlowService interface {
	GetFlows(ctx context.Context) (*FlowsResponse, error)
	ReplaceFlows(ctx context.Context, actorID uuid.UUID, flows []model.FlowDefinition) (*FlowsResponse, error)
	ResetFlows(ctx context.Context, actorID uuid.UUID) (*FlowsResponse, error)
	FlowFor(ctx context.Context, requestType model.RequestType) (*model.FlowDefinition, error)
}

type flowService struct {
	flowRepo  repository.FlowRepository
	areaRepo  repository.AreaRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

// NewFlowService returns a new instance of FlowService
func NewFlowService(
	flowRepo repository.FlowRepository,
	areaRepo repository.AreaRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) FlowService {
	return &flowService{
		flowRepo:  flowRepo,
		areaRepo:  areaRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		txManager: txManager,
	}
}

func (s *flowService) GetFlows(ctx context.Context) (*FlowsResponse, error) {
	config, err := s.flowRepo.Get(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &FlowsResponse{Flows: model.DefaultFlowDefinitions(), Version: 0}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load flow configuration: %w", err)
	}

	flows, err := decodeDefinitions(config.Definitions)
	if err != nil {
		return nil, err
	}

	updatedAt := config.UpdatedAt
	return &FlowsResponse{
		Flows:     flows,
		Version:   config.Version,
		UpdatedBy: config.UpdatedBy,
		UpdatedAt: &updatedAt,
	}, nil
}

func (s *flowService) ReplaceFlows(ctx context.Context, actorID uuid.UUID, flows []model.FlowDefinition) (*FlowsResponse, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if err := s.validateFlows(ctx, flows); err != nil {
		return nil, err
	}
	return s.saveFlows(ctx, actorID, flows, model.ActionReplaceFlows)
}

func (s *flowService) ResetFlows(ctx context.Context, actorID uuid.UUID) (*FlowsResponse, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.saveFlows(ctx, actorID, model.DefaultFlowDefinitions(), model.ActionResetFlows)
}

// FlowFor returns the current definition for one request type.
func (s *flowService) FlowFor(ctx context.Context, requestType model.RequestType) (*model.FlowDefinition, error) {
	current, err := s.GetFlows(ctx)
	if err != nil {
		return nil, err
	}
	for i := range current.Flows {
		if current.Flows[i].RequestType == requestType {
			return &current.Flows[i], nil
		}
	}
	return nil, apperrors.NewNotFound("flow definition", string(requestType))
}

func (s *flowService) saveFlows(ctx context.Context, actorID uuid.UUID, flows []model.FlowDefinition, action string) (*FlowsResponse, error) {
	var saved *model.FlowConfig
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		version := 1
		existing, err := s.flowRepo.Get(txCtx)
		if err == nil {
			version = existing.Version + 1
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load flow configuration: %w", err)
		}

		encoded, err := json.Marshal(flows)
		if err != nil {
			return fmt.Errorf("failed to encode flow configuration: %w", err)
		}

		config := &model.FlowConfig{
			Definitions: string(encoded),
			Version:     version,
			UpdatedBy:   &actorID,
		}
		if err := s.flowRepo.Upsert(txCtx, config); err != nil {
			return fmt.Errorf("failed to persist flow configuration: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"version": version})
		audit := &model.AuditLog{
			UserID:   &actorID,
			Action:   action,
			EntityID: model.FlowConfigKey,
			Details:  string(details),
		}
		if err := s.auditRepo.Create(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		saved = config
		return nil
	})
	if err != nil {
		return nil, err
	}

	updatedAt := saved.UpdatedAt
	return &FlowsResponse{
		Flows:     flows,
		Version:   saved.Version,
		UpdatedBy: saved.UpdatedBy,
		UpdatedAt: &updatedAt,
	}, nil
}

func (s *flowService) requireAdmin(ctx context.Context, actorID uuid.UUID) error {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("user", actorID.String())
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	if !actor.IsAdmin {
		return apperrors.NewPermission("only administrators can change approval flows")
	}
	return nil
}

// validateFlows enforces every FlowDefinition invariant: exactly one
// definition per request type, at least two steps, REQUEST_AREA as the
// immutable first step and nowhere else, no immediate repeats, and every
// named step resolving to an existing area.
func (s *flowService) validateFlows(ctx context.Context, flows []model.FlowDefinition) error {
	if len(flows) != len(model.AllRequestTypes) {
		return apperrors.NewValidation("expected %d flow definitions, got %d", len(model.AllRequestTypes), len(flows))
	}

	seen := make(map[model.RequestType]bool, len(flows))
	var names []string
	for _, flow := range flows {
		if !flow.RequestType.Valid() {
			return apperrors.NewValidation("unknown request type %q", flow.RequestType)
		}
		if seen[flow.RequestType] {
			return apperrors.NewValidation("duplicate flow definition for %s", flow.RequestType)
		}
		seen[flow.RequestType] = true

		if err := validateRoute(flow.RequestType, flow.Steps); err != nil {
			return err
		}
		for _, step := range flow.Steps[1:] {
			names = append(names, step)
		}
	}

	existing, err := s.areaRepo.ExistingNames(ctx, names)
	if err != nil {
		return fmt.Errorf("failed to resolve area names: %w", err)
	}
	for _, name := range names {
		if _, ok := existing[name]; !ok {
			return apperrors.NewValidation("step area %q does not exist", name)
		}
	}

	return nil
}

// validateRoute checks the structural invariants of a single route.
func validateRoute(requestType model.RequestType, steps []string) error {
	if len(steps) < 2 {
		return apperrors.NewValidation("%s route must have at least 2 steps", requestType)
	}
	if steps[0] != model.RequestAreaToken {
		return apperrors.NewValidation("%s route must start with %s", requestType, model.RequestAreaToken)
	}
	for i := 1; i < len(steps); i++ {
		if steps[i] == model.RequestAreaToken {
			return apperrors.NewValidation("%s may only be the first step of %s", model.RequestAreaToken, requestType)
		}
		if steps[i] == steps[i-1] {
			return apperrors.NewValidation("%s route has consecutive duplicate step %q", requestType, steps[i])
		}
	}
	return nil
}

// --- Draft editing ---
//
// The admin UI edits a route as an in-memory draft and submits the whole
// configuration through ReplaceFlows; nothing partial is ever persisted.
// These helpers enforce the edit rules locally so the UI can reject bad
// moves before submitting.

// MoveFlowStep moves the step at from to position to. The first step never
// moves and nothing may land in front of it.
func MoveFlowStep(steps []string, from, to int) ([]string, error) {
	if from <= 0 || from >= len(steps) {
		return nil, apperrors.NewValidation("cannot move step %d", from)
	}
	if to <= 0 || to >= len(steps) {
		return nil, apperrors.NewValidation("cannot move a step to position %d", to)
	}

	draft := make([]string, 0, len(steps))
	draft = append(draft, steps[:from]...)
	draft = append(draft, steps[from+1:]...)
	draft = append(draft[:to], append([]string{steps[from]}, draft[to:]...)...)

	if err := checkNoImmediateRepeats(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// AddFlowStep inserts identifier at the given position (1-based onwards; the
// REQUEST_AREA slot is off limits).
func AddFlowStep(steps []string, index int, identifier string) ([]string, error) {
	if identifier == model.RequestAreaToken {
		return nil, apperrors.NewValidation("%s may only be the first step", model.RequestAreaToken)
	}
	if index <= 0 || index > len(steps) {
		return nil, apperrors.NewValidation("cannot insert a step at position %d", index)
	}

	draft := make([]string, 0, len(steps)+1)
	draft = append(draft, steps[:index]...)
	draft = append(draft, identifier)
	draft = append(draft, steps[index:]...)

	if err := checkNoImmediateRepeats(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// RemoveFlowStep removes the step at index. The first step is protected and
// the route may not drop below two steps.
func RemoveFlowStep(steps []string, index int) ([]string, error) {
	if index == 0 {
		return nil, apperrors.NewValidation("the first step cannot be removed")
	}
	if index < 0 || index >= len(steps) {
		return nil, apperrors.NewValidation("no step at position %d", index)
	}
	if len(steps)-1 < 2 {
		return nil, apperrors.NewValidation("a route must keep at least 2 steps")
	}

	draft := make([]string, 0, len(steps)-1)
	draft = append(draft, steps[:index]...)
	draft = append(draft, steps[index+1:]...)

	if err := checkNoImmediateRepeats(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func checkNoImmediateRepeats(steps []string) error {
	for i := 1; i < len(steps); i++ {
		if steps[i] == steps[i-1] {
			return apperrors.NewValidation("edit would create consecutive duplicate step %q", steps[i])
		}
	}
	return nil
}

func decodeDefinitions(raw string) ([]model.FlowDefinition, error) {
	var flows []model.FlowDefinition
	if err := json.Unmarshal([]byte(raw), &flows); err != nil {
		return nil, fmt.Errorf("failed to decode flow configuration: %w", err)
	}
	return flows, nil
}
