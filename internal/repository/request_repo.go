package repository

import (
	"context"
	"fmt"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestRepository is the polymorphic access layer over the five request
// tables. The engine addresses a request as (type, id); the switch on type
// lives here, once, instead of leaking "which table" branching everywhere.
type RequestRepository interface {
	CreateRecess(ctx context.Context, req *model.RecessRequest) error
	CreateTermination(ctx context.Context, req *model.TerminationRequest) error
	CreateHiring(ctx context.Context, req *model.HiringRequest) error
	CreatePurchase(ctx context.Context, req *model.PurchaseRequest) error
	CreateRemuneration(ctx context.Context, req *model.RemunerationRequest) error

	GetRecess(ctx context.Context, id uuid.UUID) (*model.RecessRequest, error)
	GetTermination(ctx context.Context, id uuid.UUID) (*model.TerminationRequest, error)
	GetHiring(ctx context.Context, id uuid.UUID) (*model.HiringRequest, error)
	GetPurchase(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error)
	GetRemuneration(ctx context.Context, id uuid.UUID) (*model.RemunerationRequest, error)

	GetStatus(ctx context.Context, requestType model.RequestType, id uuid.UUID) (string, error)
	SetStatusIfPending(ctx context.Context, requestType model.RequestType, id uuid.UUID, status string) (bool, error)
	UpdateHiring(ctx context.Context, req *model.HiringRequest) error

	ListRecess(ctx context.Context, status string, page, limit int) ([]model.RecessRequest, int64, error)
	ListTermination(ctx context.Context, status string, page, limit int) ([]model.TerminationRequest, int64, error)
	ListHiring(ctx context.Context, status string, page, limit int) ([]model.HiringRequest, int64, error)
	ListPurchase(ctx context.Context, status string, page, limit int) ([]model.PurchaseRequest, int64, error)
	ListRemuneration(ctx context.Context, status string, page, limit int) ([]model.RemunerationRequest, int64, error)
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository returns a new instance of RequestRepository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// tableModel maps a request type to an empty model value for generic queries.
func tableModel(t model.RequestType) (interface{}, error) {
	switch t {
	case model.RequestTypeRecess:
		return &model.RecessRequest{}, nil
	case model.RequestTypeTermination:
		return &model.TerminationRequest{}, nil
	case model.RequestTypeHiring:
		return &model.HiringRequest{}, nil
	case model.RequestTypePurchase:
		return &model.PurchaseRequest{}, nil
	case model.RequestTypeRemuneration:
		return &model.RemunerationRequest{}, nil
	default:
		return nil, fmt.Errorf("unknown request type: %s", t)
	}
}

func (r *requestRepository) CreateRecess(ctx context.Context, req *model.RecessRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) CreateTermination(ctx context.Context, req *model.TerminationRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) CreateHiring(ctx context.Context, req *model.HiringRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) CreatePurchase(ctx context.Context, req *model.PurchaseRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) CreateRemuneration(ctx context.Context, req *model.RemunerationRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) GetRecess(ctx context.Context, id uuid.UUID) (*model.RecessRequest, error) {
	var req model.RecessRequest
	if err := GetDB(ctx, r.db).Preload("Provider").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) GetTermination(ctx context.Context, id uuid.UUID) (*model.TerminationRequest, error) {
	var req model.TerminationRequest
	if err := GetDB(ctx, r.db).Preload("Provider").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) GetHiring(ctx context.Context, id uuid.UUID) (*model.HiringRequest, error) {
	var req model.HiringRequest
	if err := GetDB(ctx, r.db).Preload("Area").Preload("Position").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) GetPurchase(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	if err := GetDB(ctx, r.db).Preload("Area").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) GetRemuneration(ctx context.Context, id uuid.UUID) (*model.RemunerationRequest, error) {
	var req model.RemunerationRequest
	if err := GetDB(ctx, r.db).Preload("Provider").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) GetStatus(ctx context.Context, requestType model.RequestType, id uuid.UUID) (string, error) {
	m, err := tableModel(requestType)
	if err != nil {
		return "", err
	}

	var statuses []string
	err = GetDB(ctx, r.db).Model(m).
		Where("id = ?", id).
		Limit(1).
		Pluck("status", &statuses).Error
	if err != nil {
		return "", err
	}
	if len(statuses) == 0 {
		return "", gorm.ErrRecordNotFound
	}
	return statuses[0], nil
}

// SetStatusIfPending writes the terminal status only when the request is
// still PENDING, so a request is finalized at most once.
func (r *requestRepository) SetStatusIfPending(ctx context.Context, requestType model.RequestType, id uuid.UUID, status string) (bool, error) {
	m, err := tableModel(requestType)
	if err != nil {
		return false, err
	}

	result := GetDB(ctx, r.db).Model(m).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Update("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *requestRepository) UpdateHiring(ctx context.Context, req *model.HiringRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}

// countAndPage applies the shared status filter, count and pagination to a
// list query over one request table.
func (r *requestRepository) countAndPage(ctx context.Context, m interface{}, status string, page, limit int, dest interface{}, preloads ...string) (int64, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(m)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}

	fetch := db
	for _, preload := range preloads {
		fetch = fetch.Preload(preload)
	}
	if status != "" {
		fetch = fetch.Where("status = ?", status)
	}
	offset := (page - 1) * limit
	if err := fetch.Order("created_at DESC").Offset(offset).Limit(limit).Find(dest).Error; err != nil {
		return 0, err
	}

	return total, nil
}

func (r *requestRepository) ListRecess(ctx context.Context, status string, page, limit int) ([]model.RecessRequest, int64, error) {
	var requests []model.RecessRequest
	total, err := r.countAndPage(ctx, &model.RecessRequest{}, status, page, limit, &requests, "Provider")
	return requests, total, err
}

func (r *requestRepository) ListTermination(ctx context.Context, status string, page, limit int) ([]model.TerminationRequest, int64, error) {
	var requests []model.TerminationRequest
	total, err := r.countAndPage(ctx, &model.TerminationRequest{}, status, page, limit, &requests, "Provider")
	return requests, total, err
}

func (r *requestRepository) ListHiring(ctx context.Context, status string, page, limit int) ([]model.HiringRequest, int64, error) {
	var requests []model.HiringRequest
	total, err := r.countAndPage(ctx, &model.HiringRequest{}, status, page, limit, &requests, "Area", "Position")
	return requests, total, err
}

func (r *requestRepository) ListPurchase(ctx context.Context, status string, page, limit int) ([]model.PurchaseRequest, int64, error) {
	var requests []model.PurchaseRequest
	total, err := r.countAndPage(ctx, &model.PurchaseRequest{}, status, page, limit, &requests, "Area")
	return requests, total, err
}

func (r *requestRepository) ListRemuneration(ctx context.Context, status string, page, limit int) ([]model.RemunerationRequest, int64, error) {
	var requests []model.RemunerationRequest
	total, err := r.countAndPage(ctx, &model.RemunerationRequest{}, status, page, limit, &requests, "Provider")
	return requests, total, err
}
