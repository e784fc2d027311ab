package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier pushes approval lifecycle events to connected clients. The
// websocket hub satisfies it; a nil notifier disables notifications.
type Notifier interface {
	Publish(event string, payload interface{})
}

// StepDecisionResult reports the outcome of an approve/reject call.
type StepDecisionResult struct {
	Step            model.ApprovalStep `json:"step"`
	RequestStatus   string             `json:"request_status"`
	IsFullyApproved bool               `json:"is_fully_approved"`
	NextStepNumber  *int               `json:"next_step_number,omitempty"`
}

// ApprovalService is the workflow engine: it snapshots a configured route
// into concrete steps when a request is created, and processes approve/reject
// actions against single steps.
//
// Every approve/reject runs as one transaction: the permission check, the
// conditional step transition, the request's terminal status write and the
// type-specific side effect either all happen or none do.
type ApprovalService interface {
	CreateSteps(ctx context.Context, requestType model.RequestType, requestID, creatorID, subjectAreaID uuid.UUID) ([]model.ApprovalStep, error)
	ApproveStep(ctx context.Context, stepID, approverID uuid.UUID, comment string) (*StepDecisionResult, error)
	RejectStep(ctx context.Context, stepID, approverID uuid.UUID, comment string) (*StepDecisionResult, error)
	GetApprovalSteps(ctx context.Context, requestType model.RequestType, requestID uuid.UUID) ([]model.ApprovalStep, error)
	GetCurrentPendingStep(ctx context.Context, requestType model.RequestType, requestID uuid.UUID) (*model.ApprovalStep, error)
	ListPendingForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.ApprovalStep, int64, error)
	CheckStepPermission(ctx context.Context, stepID, userID uuid.UUID) (PermissionResult, error)
}

// sideEffectFn applies the irreversible consequence of a fully approved
// request. It runs inside the finalizing transaction.
type sideEffectFn func(ctx context.Context, requestID uuid.UUID, approverID uuid.UUID) error

type approvalService struct {
	stepRepo     repository.StepRepository
	requestRepo  repository.RequestRepository
	providerRepo repository.ProviderRepository
	areaRepo     repository.AreaRepository
	auditRepo    repository.AuditRepository
	flowService  FlowService
	permissions  PermissionService
	txManager    repository.TransactionManager
	notifier     Notifier

	sideEffects map[model.RequestType]sideEffectFn
}

// NewApprovalService returns a new instance of ApprovalService. The
// side-effect dispatch table is built once here; adding a request type
// without registering its effect fails fast at finalization.
func NewApprovalService(
	stepRepo repository.StepRepository,
	requestRepo repository.RequestRepository,
	providerRepo repository.ProviderRepository,
	areaRepo repository.AreaRepository,
	auditRepo repository.AuditRepository,
	flowService FlowService,
	permissions PermissionService,
	txManager repository.TransactionManager,
	notifier Notifier,
) ApprovalService {
	s := &approvalService{
		stepRepo:     stepRepo,
		requestRepo:  requestRepo,
		providerRepo: providerRepo,
		areaRepo:     areaRepo,
		auditRepo:    auditRepo,
		flowService:  flowService,
		permissions:  permissions,
		txManager:    txManager,
		notifier:     notifier,
	}
	s.sideEffects = map[model.RequestType]sideEffectFn{
		model.RequestTypeRecess:       s.noSideEffect,
		model.RequestTypePurchase:     s.noSideEffect,
		model.RequestTypeTermination:  s.terminationSideEffect,
		model.RequestTypeRemuneration: s.remunerationSideEffect,
		model.RequestTypeHiring:       s.hiringSideEffect,
	}
	return s
}

// CreateSteps snapshots the current route for requestType into persisted
// steps. The target area of each step is resolved here, once: the
// REQUEST_AREA token becomes the subject's area, names are looked up by name,
// and a name that does not resolve pins a nil area; such a step is
// only actionable by an admin override. Later flow edits or
// subject moves never reroute these steps.
func (s *approvalService) CreateSteps(ctx context.Context, requestType model.RequestType, requestID, creatorID, subjectAreaID uuid.UUID) ([]model.ApprovalStep, error) {
	if !requestType.Valid() {
		return nil, apperrors.NewValidation("unknown request type %q", requestType)
	}

	flow, err := s.flowService.FlowFor(ctx, requestType)
	if err != nil {
		return nil, err
	}
	if !flow.Enabled {
		return nil, apperrors.NewValidation("approvals for %s are disabled", requestType)
	}

	var names []string
	for _, identifier := range flow.Steps {
		if identifier != model.RequestAreaToken {
			names = append(names, identifier)
		}
	}
	areaIDs, err := s.areaRepo.ExistingNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve step areas: %w", err)
	}

	steps := make([]model.ApprovalStep, 0, len(flow.Steps))
	for i, identifier := range flow.Steps {
		step := model.ApprovalStep{
			RequestType: requestType,
			RequestID:   requestID,
			StepNumber:  i + 1,
			Status:      model.StatusPending,
		}
		if identifier == model.RequestAreaToken {
			areaID := subjectAreaID
			step.TargetAreaID = &areaID
		} else if areaID, ok := areaIDs[identifier]; ok {
			id := areaID
			step.TargetAreaID = &id
		}
		// Unresolved identifier: TargetAreaID stays nil, admin-only step.
		steps = append(steps, step)
	}

	if err := s.stepRepo.CreateBatch(ctx, steps); err != nil {
		return nil, fmt.Errorf("failed to create approval steps: %w", err)
	}
	return steps, nil
}

func (s *approvalService) ApproveStep(ctx context.Context, stepID, approverID uuid.UUID, comment string) (*StepDecisionResult, error) {
	result, err := s.processStep(ctx, stepID, approverID, comment, model.StatusApproved)
	if err != nil {
		return nil, err
	}
	s.publish("step_approved", result)
	return result, nil
}

func (s *approvalService) RejectStep(ctx context.Context, stepID, approverID uuid.UUID, comment string) (*StepDecisionResult, error) {
	if len(strings.TrimSpace(comment)) < 3 {
		return nil, apperrors.NewValidation("a rejection requires a justification of at least 3 characters")
	}

	result, err := s.processStep(ctx, stepID, approverID, comment, model.StatusRejected)
	if err != nil {
		return nil, err
	}
	s.publish("step_rejected", result)
	return result, nil
}

// processStep runs the shared transition sequence: load, idempotency and
// ordering guards, permission check, conditional transition, then either
// advance the chain (approval) or veto the whole request (rejection).
func (s *approvalService) processStep(ctx context.Context, stepID, approverID uuid.UUID, comment, newStatus string) (*StepDecisionResult, error) {
	var result *StepDecisionResult

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		step, err := s.stepRepo.GetByID(txCtx, stepID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("approval step", stepID.String())
			}
			return fmt.Errorf("failed to load approval step: %w", err)
		}

		if step.Status != model.StatusPending {
			return apperrors.NewAlreadyProcessed("approval step", step.Status)
		}

		requestStatus, err := s.requestRepo.GetStatus(txCtx, step.RequestType, step.RequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("request", step.RequestID.String())
			}
			return fmt.Errorf("failed to load request: %w", err)
		}
		if requestStatus != model.StatusPending {
			// The request was finalized through another step. This step stays
			// PENDING forever; the attempt is rejected, not absorbed.
			return apperrors.NewAlreadyProcessed("request", requestStatus)
		}

		// Approvals are strictly ordered: only the lowest-numbered pending
		// step may be approved, so non-PENDING steps always form a contiguous
		// prefix. A rejection is a veto and may target any pending step.
		if newStatus == model.StatusApproved {
			first, err := s.stepRepo.FirstPending(txCtx, step.RequestType, step.RequestID)
			if err != nil {
				return fmt.Errorf("failed to resolve current pending step: %w", err)
			}
			if first.StepNumber != step.StepNumber {
				return apperrors.NewValidation("step %d cannot be approved while step %d is still pending", step.StepNumber, first.StepNumber)
			}
		}

		perm, err := s.permissions.CheckPermission(txCtx, approverID, step.TargetAreaID)
		if err != nil {
			return err
		}
		if !perm.CanApprove {
			return apperrors.NewPermission("user is not a designated approver for this step's area")
		}

		now := time.Now()
		transitioned, err := s.stepRepo.TransitionIfPending(txCtx, step.ID, repository.StepTransition{
			Status:        newStatus,
			ApproverID:    approverID,
			ApprovedAt:    now,
			Comment:       comment,
			AdminOverride: perm.IsAdminOverride,
		})
		if err != nil {
			return fmt.Errorf("failed to transition approval step: %w", err)
		}
		if !transitioned {
			// Lost a race: someone processed the step between load and write.
			return apperrors.NewAlreadyProcessed("approval step", "")
		}

		step.Status = newStatus
		step.ApproverID = &approverID
		step.ApprovedAt = &now
		step.Comment = comment
		step.AdminOverride = perm.IsAdminOverride

		if newStatus == model.StatusRejected {
			result, err = s.finalizeRejection(txCtx, step, approverID)
		} else {
			result, err = s.advanceOrFinalize(txCtx, step, approverID)
		}
		if err != nil {
			return err
		}

		return s.auditDecision(txCtx, step, approverID, perm.IsAdminOverride)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// advanceOrFinalize looks for the next pending step after an approval. When
// none remains the request is finalized APPROVED and its side effect fires
// inside the same transaction, exactly once.
func (s *approvalService) advanceOrFinalize(ctx context.Context, step *model.ApprovalStep, approverID uuid.UUID) (*StepDecisionResult, error) {
	next, err := s.stepRepo.NextPendingAfter(ctx, step.RequestType, step.RequestID, step.StepNumber)
	if err == nil {
		nextNumber := next.StepNumber
		return &StepDecisionResult{
			Step:           *step,
			RequestStatus:  model.StatusPending,
			NextStepNumber: &nextNumber,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find next pending step: %w", err)
	}

	finalized, err := s.requestRepo.SetStatusIfPending(ctx, step.RequestType, step.RequestID, model.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize request: %w", err)
	}
	if !finalized {
		return nil, apperrors.NewAlreadyProcessed("request", "")
	}

	effect, ok := s.sideEffects[step.RequestType]
	if !ok {
		return nil, fmt.Errorf("no side effect registered for request type %s", step.RequestType)
	}
	if err := effect(ctx, step.RequestID, approverID); err != nil {
		return nil, err
	}

	if err := s.auditRequestFinal(ctx, step, approverID, model.StatusApproved); err != nil {
		return nil, err
	}

	return &StepDecisionResult{
		Step:            *step,
		RequestStatus:   model.StatusApproved,
		IsFullyApproved: true,
	}, nil
}

// finalizeRejection vetoes the whole request. Steps after (or before) the
// rejected one are left untouched; the request's terminal status is what
// stops them from ever being processed.
func (s *approvalService) finalizeRejection(ctx context.Context, step *model.ApprovalStep, approverID uuid.UUID) (*StepDecisionResult, error) {
	finalized, err := s.requestRepo.SetStatusIfPending(ctx, step.RequestType, step.RequestID, model.StatusRejected)
	if err != nil {
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}
	if !finalized {
		return nil, apperrors.NewAlreadyProcessed("request", "")
	}

	if err := s.auditRequestFinal(ctx, step, approverID, model.StatusRejected); err != nil {
		return nil, err
	}

	return &StepDecisionResult{
		Step:          *step,
		RequestStatus: model.StatusRejected,
	}, nil
}

func (s *approvalService) GetApprovalSteps(ctx context.Context, requestType model.RequestType, requestID uuid.UUID) ([]model.ApprovalStep, error) {
	if !requestType.Valid() {
		return nil, apperrors.NewValidation("unknown request type %q", requestType)
	}
	return s.stepRepo.ListByRequest(ctx, requestType, requestID)
}

func (s *approvalService) GetCurrentPendingStep(ctx context.Context, requestType model.RequestType, requestID uuid.UUID) (*model.ApprovalStep, error) {
	if !requestType.Valid() {
		return nil, apperrors.NewValidation("unknown request type %q", requestType)
	}
	step, err := s.stepRepo.FirstPending(ctx, requestType, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("pending approval step", requestID.String())
		}
		return nil, err
	}
	return step, nil
}

// CheckStepPermission answers "could this user act on this step" without
// acting. The UI uses it to render or hide the decision buttons.
func (s *approvalService) CheckStepPermission(ctx context.Context, stepID, userID uuid.UUID) (PermissionResult, error) {
	step, err := s.stepRepo.GetByID(ctx, stepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PermissionResult{}, apperrors.NewNotFound("approval step", stepID.String())
		}
		return PermissionResult{}, fmt.Errorf("failed to load approval step: %w", err)
	}
	return s.permissions.CheckPermission(ctx, userID, step.TargetAreaID)
}

// ListPendingForUser returns the pending steps the user could act on as a
// designated approver (director or c-level areas).
func (s *approvalService) ListPendingForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.ApprovalStep, int64, error) {
	directed, err := s.areaRepo.DirectedAreaIDs(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve directed areas: %w", err)
	}
	cLevel, err := s.areaRepo.CLevelAreaIDs(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve c-level areas: %w", err)
	}

	areaIDs := directed
	seen := make(map[uuid.UUID]bool, len(directed))
	for _, id := range directed {
		seen[id] = true
	}
	for _, id := range cLevel {
		if !seen[id] {
			areaIDs = append(areaIDs, id)
		}
	}

	return s.stepRepo.ListPendingByAreas(ctx, areaIDs, page, limit)
}

// --- Side effects ---

func (s *approvalService) noSideEffect(ctx context.Context, requestID uuid.UUID, approverID uuid.UUID) error {
	return nil
}

// terminationSideEffect marks the subject provider inactive.
func (s *approvalService) terminationSideEffect(ctx context.Context, requestID uuid.UUID, approverID uuid.UUID) error {
	req, err := s.requestRepo.GetTermination(ctx, requestID)
	if err != nil {
		return fmt.Errorf("termination request not found: %w", err)
	}

	if err := s.providerRepo.SetActive(ctx, req.ProviderID, false); err != nil {
		return fmt.Errorf("failed to deactivate provider: %w", err)
	}

	details, _ := json.Marshal(map[string]interface{}{"request_id": requestID.String()})
	return s.auditRepo.Create(ctx, &model.AuditLog{
		UserID:   &approverID,
		Action:   model.ActionProviderInactive,
		EntityID: req.ProviderID.String(),
		Details:  string(details),
	})
}

// remunerationSideEffect rewrites the subject provider's salary to the
// requested new salary.
func (s *approvalService) remunerationSideEffect(ctx context.Context, requestID uuid.UUID, approverID uuid.UUID) error {
	req, err := s.requestRepo.GetRemuneration(ctx, requestID)
	if err != nil {
		return fmt.Errorf("remuneration request not found: %w", err)
	}

	if err := s.providerRepo.SetSalary(ctx, req.ProviderID, req.NewSalary); err != nil {
		return fmt.Errorf("failed to update provider salary: %w", err)
	}

	details, _ := json.Marshal(map[string]interface{}{
		"request_id": requestID.String(),
		"new_salary": req.NewSalary.StringFixed(2),
	})
	return s.auditRepo.Create(ctx, &model.AuditLog{
		UserID:   &approverID,
		Action:   model.ActionProviderNewSalary,
		EntityID: req.ProviderID.String(),
		Details:  string(details),
	})
}

// hiringSideEffect enters the hiring request into its secondary state
// machine. The provider itself is only created later, when the hiring
// reaches HIRED.
func (s *approvalService) hiringSideEffect(ctx context.Context, requestID uuid.UUID, approverID uuid.UUID) error {
	req, err := s.requestRepo.GetHiring(ctx, requestID)
	if err != nil {
		return fmt.Errorf("hiring request not found: %w", err)
	}

	req.HiringStage = model.HiringStageWaiting
	if err := s.requestRepo.UpdateHiring(ctx, req); err != nil {
		return fmt.Errorf("failed to start hiring progress: %w", err)
	}

	details, _ := json.Marshal(map[string]interface{}{"stage": model.HiringStageWaiting})
	return s.auditRepo.Create(ctx, &model.AuditLog{
		UserID:   &approverID,
		Action:   model.ActionHiringProgress,
		EntityID: requestID.String(),
		Details:  string(details),
	})
}

// --- Audit & notifications ---

func (s *approvalService) auditDecision(ctx context.Context, step *model.ApprovalStep, approverID uuid.UUID, adminOverride bool) error {
	action := model.ActionApproveStep
	if step.Status == model.StatusRejected {
		action = model.ActionRejectStep
	}

	details, _ := json.Marshal(map[string]interface{}{
		"request_type":   step.RequestType,
		"request_id":     step.RequestID.String(),
		"step_number":    step.StepNumber,
		"admin_override": adminOverride,
	})
	return s.auditRepo.Create(ctx, &model.AuditLog{
		UserID:     &approverID,
		Action:     action,
		EntityID:   step.ID.String(),
		EntityName: string(step.RequestType),
		Details:    string(details),
	})
}

func (s *approvalService) auditRequestFinal(ctx context.Context, step *model.ApprovalStep, approverID uuid.UUID, status string) error {
	action := model.ActionRequestApproved
	if status == model.StatusRejected {
		action = model.ActionRequestRejected
	}

	details, _ := json.Marshal(map[string]interface{}{
		"request_type": step.RequestType,
		"final_step":   step.StepNumber,
	})
	return s.auditRepo.Create(ctx, &model.AuditLog{
		UserID:     &approverID,
		Action:     action,
		EntityID:   step.RequestID.String(),
		EntityName: string(step.RequestType),
		Details:    string(details),
	})
}

func (s *approvalService) publish(event string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.Publish(event, payload)
	}
}
