package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PermissionResult says whether a user may act on a step and in which
// capacity. The admin-override flag is surfaced separately so the UI and the
// audit trail can distinguish it from a designated approval.
type PermissionResult struct {
	CanApprove           bool `json:"can_approve"`
	IsDesignatedApprover bool `json:"is_designated_approver"`
	IsAdminOverride      bool `json:"is_admin_override"`
}

// PermissionService resolves who may act on an approval step.
type PermissionService interface {
	CheckPermission(ctx context.Context, userID uuid.UUID, targetAreaID *uuid.UUID) (PermissionResult, error)
	GetPotentialApprovers(ctx context.Context, areaID uuid.UUID) ([]model.User, error)
}

type permissionService struct {
	userRepo repository.UserRepository
	areaRepo repository.AreaRepository
}

// NewPermissionService returns a new instance of PermissionService
func NewPermissionService(userRepo repository.UserRepository, areaRepo repository.AreaRepository) PermissionService {
	return &permissionService{userRepo: userRepo, areaRepo: areaRepo}
}

// CheckPermission resolves the user's designated areas (director or c-level)
// and matches them against the step's target area. A nil target area (an
// identifier that never resolved, or an area deleted after the step pinned
// its id) can only be satisfied by an admin override.
func (s *permissionService) CheckPermission(ctx context.Context, userID uuid.UUID, targetAreaID *uuid.UUID) (PermissionResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PermissionResult{}, apperrors.NewNotFound("user", userID.String())
		}
		return PermissionResult{}, fmt.Errorf("failed to load user: %w", err)
	}

	if targetAreaID != nil {
		directed, err := s.areaRepo.DirectedAreaIDs(ctx, userID)
		if err != nil {
			return PermissionResult{}, fmt.Errorf("failed to resolve directed areas: %w", err)
		}
		cLevel, err := s.areaRepo.CLevelAreaIDs(ctx, userID)
		if err != nil {
			return PermissionResult{}, fmt.Errorf("failed to resolve c-level areas: %w", err)
		}

		for _, id := range append(directed, cLevel...) {
			if id == *targetAreaID {
				return PermissionResult{CanApprove: true, IsDesignatedApprover: true}, nil
			}
		}
	}

	if user.IsAdmin {
		return PermissionResult{CanApprove: true, IsAdminOverride: true}, nil
	}

	return PermissionResult{}, nil
}

// GetPotentialApprovers returns the area's director and c-level, deduplicated
// when the same person holds both roles. Informational only, it grants
// nothing.
func (s *permissionService) GetPotentialApprovers(ctx context.Context, areaID uuid.UUID) ([]model.User, error) {
	area, err := s.areaRepo.GetByIDWithApprovers(ctx, areaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("area", areaID.String())
		}
		return nil, fmt.Errorf("failed to load area: %w", err)
	}

	approvers := make([]model.User, 0, 2)
	if area.Director != nil {
		approvers = append(approvers, *area.Director)
	}
	if area.CLevel != nil && (area.Director == nil || area.CLevel.ID != area.Director.ID) {
		approvers = append(approvers, *area.CLevel)
	}
	return approvers, nil
}
