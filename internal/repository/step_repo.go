package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StepTransition carries the fields written when a pending step is approved
// or rejected.
type StepTransition struct {
	Status        string
	ApproverID    uuid.UUID
	ApprovedAt    time.Time
	Comment       string
	AdminOverride bool
}

// StepRepository defines data access for approval steps. TransitionIfPending
// is the race-free core of the engine: the status write is conditional on the
// step still being PENDING, so the loser of a concurrent race changes zero
// rows instead of double-applying.
type StepRepository interface {
	CreateBatch(ctx context.Context, steps []model.ApprovalStep) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ApprovalStep, error)
	GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ApprovalStep, error)
	ListByRequest(ctx context.Context, requestType model.RequestType, requestID uuid.UUID) ([]model.ApprovalStep, error)
	FirstPending(ctx context.Context, requestType model.RequestType, requestID uuid.UUID) (*model.ApprovalStep, error)
	NextPendingAfter(ctx context.Context, requestType model.RequestType, requestID uuid.UUID, stepNumber int) (*model.ApprovalStep, error)
	TransitionIfPending(ctx context.Context, id uuid.UUID, transition StepTransition) (bool, error)
	ListPendingByAreas(ctx context.Context, areaIDs []uuid.UUID, page, limit int) ([]model.ApprovalStep, int64, error)
}

type stepRepository struct {
	db *gorm.DB
}

// NewStepRepository returns a new instance of StepRepository
func NewStepRepository(db *gorm.DB) StepRepository {
	return &stepRepository{db: db}
}

func (r *stepRepository) CreateBatch(ctx context.Context, steps []model.ApprovalStep) error {
	if len(steps) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&steps).Error
}

func (r *stepRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ApprovalStep, error) {
	var step model.ApprovalStep
	if err := GetDB(ctx, r.db).First(&step, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *stepRepository) GetByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ApprovalStep, error) {
	var step model.ApprovalStep
	if err := GetDB(ctx, r.db).Preload("TargetArea").Preload("Approver").
		First(&step, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *stepRepository) ListByRequest(ctx context.Context, requestType model.RequestType, requestID uuid.UUID) ([]model.ApprovalStep, error) {
	var steps []model.ApprovalStep
	err := GetDB(ctx, r.db).Preload("TargetArea").Preload("Approver").
		Where("request_type = ? AND request_id = ?", requestType, requestID).
		Order("step_number ASC").
		Find(&steps).Error
	return steps, err
}

func (r *stepRepository) FirstPending(ctx context.Context, requestType model.RequestType, requestID uuid.UUID) (*model.ApprovalStep, error) {
	var step model.ApprovalStep
	err := GetDB(ctx, r.db).Preload("TargetArea").
		Where("request_type = ? AND request_id = ? AND status = ?", requestType, requestID, model.StatusPending).
		Order("step_number ASC").
		First(&step).Error
	if err != nil {
		return nil, err
	}
	return &step, nil
}

// NextPendingAfter returns the pending step with the smallest step number
// greater than stepNumber, or gorm.ErrRecordNotFound when the chain is done.
func (r *stepRepository) NextPendingAfter(ctx context.Context, requestType model.RequestType, requestID uuid.UUID, stepNumber int) (*model.ApprovalStep, error) {
	var step model.ApprovalStep
	err := GetDB(ctx, r.db).
		Where("request_type = ? AND request_id = ? AND status = ? AND step_number > ?",
			requestType, requestID, model.StatusPending, stepNumber).
		Order("step_number ASC").
		First(&step).Error
	if err != nil {
		return nil, err
	}
	return &step, nil
}

// TransitionIfPending applies the transition only if the step is still
// PENDING. Returns false when another caller already processed the step.
func (r *stepRepository) TransitionIfPending(ctx context.Context, id uuid.UUID, transition StepTransition) (bool, error) {
	result := GetDB(ctx, r.db).Model(&model.ApprovalStep{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]interface{}{
			"status":         transition.Status,
			"approver_id":    transition.ApproverID,
			"approved_at":    transition.ApprovedAt,
			"comment":        transition.Comment,
			"admin_override": transition.AdminOverride,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListPendingByAreas returns pending steps targeting any of the given areas,
// used for "my pending approvals" views.
func (r *stepRepository) ListPendingByAreas(ctx context.Context, areaIDs []uuid.UUID, page, limit int) ([]model.ApprovalStep, int64, error) {
	var steps []model.ApprovalStep
	var total int64

	if len(areaIDs) == 0 {
		return steps, 0, nil
	}

	db := GetDB(ctx, r.db)
	query := db.Model(&model.ApprovalStep{}).
		Where("target_area_id IN ? AND status = ?", areaIDs, model.StatusPending)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Preload("TargetArea").
		Where("target_area_id IN ? AND status = ?", areaIDs, model.StatusPending).
		Order("created_at ASC").Offset(offset).Limit(limit).
		Find(&steps).Error
	if err != nil {
		return nil, 0, err
	}

	return steps, total, nil
}
