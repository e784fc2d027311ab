package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createHiringRequest(t *testing.T, w *approvalWorld) *model.HiringRequest {
	t.Helper()
	req, err := e.requests.CreateHiring(context.Background(), w.engDirector.ID, CreateHiringDTO{
		AreaID:         w.engineering.ID.String(),
		ProposedSalary: decimal.NewFromInt(7000),
		JobDescription: "backend engineer",
	})
	require.NoError(t, err)
	return req
}

func (e *testEnv) approveHiringFully(t *testing.T, w *approvalWorld, requestID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	steps := e.stepsOf(t, model.RequestTypeHiring, requestID)
	require.Len(t, steps, 4)

	approvers := []uuid.UUID{w.engDirector.ID, w.rhDirector.ID, w.finDirector.ID, w.boardCLevel.ID}
	for i, approverID := range approvers {
		_, err := e.approvals.ApproveStep(ctx, steps[i].ID, approverID, "")
		require.NoError(t, err)
	}
}

func TestHiringEntersWaitingOnFullApproval(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createHiringRequest(t, world)
	assert.Empty(t, req.HiringStage, "no stage before full approval")

	env.approveHiringFully(t, world, req.ID)

	reloaded, err := env.requestRepo.GetHiring(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, reloaded.Status)
	assert.Equal(t, model.HiringStageWaiting, reloaded.HiringStage)
}

func TestHiringProgressRequiresApproval(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createHiringRequest(t, world)

	_, err := env.hiring.StartProgress(ctx, req.ID, world.rhDirector.ID)
	assert.True(t, apperrors.IsValidation(err), "pending hirings cannot progress")
}

func TestHiringStageTransitions(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createHiringRequest(t, world)
	env.approveHiringFully(t, world, req.ID)

	// WAITING cannot jump straight to HIRED.
	_, err := env.hiring.CompleteHiring(ctx, req.ID, world.rhDirector.ID, CompleteHiringDTO{
		HiredName:       "Ana Lima",
		HiredEmail:      "ana.lima@example.com",
		ActualStartDate: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.True(t, apperrors.IsValidation(err))

	updated, err := env.hiring.StartProgress(ctx, req.ID, world.rhDirector.ID)
	require.NoError(t, err)
	assert.Equal(t, model.HiringStageInProgress, updated.HiringStage)

	// StartProgress is not repeatable.
	_, err = env.hiring.StartProgress(ctx, req.ID, world.rhDirector.ID)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCompleteHiringCreatesProvider(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createHiringRequest(t, world)
	env.approveHiringFully(t, world, req.ID)

	_, err := env.hiring.StartProgress(ctx, req.ID, world.rhDirector.ID)
	require.NoError(t, err)

	startDate := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	updated, err := env.hiring.CompleteHiring(ctx, req.ID, world.rhDirector.ID, CompleteHiringDTO{
		HiredName:       "Ana Lima",
		HiredEmail:      "ana.lima@example.com",
		ActualStartDate: startDate,
	})
	require.NoError(t, err)
	assert.Equal(t, model.HiringStageHired, updated.HiringStage)
	assert.Equal(t, "Ana Lima", updated.HiredName)
	require.NotNil(t, updated.CreatedProviderID)

	provider, err := env.providerRepo.GetByID(ctx, *updated.CreatedProviderID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", provider.Name)
	assert.Equal(t, world.engineering.ID, provider.AreaID)
	assert.True(t, provider.Salary.Equal(decimal.NewFromInt(7000)))
	assert.True(t, provider.Active)
	require.NotNil(t, provider.StartDate)
	assert.True(t, provider.StartDate.Equal(startDate))

	// Completing twice is rejected and creates no second provider.
	_, err = env.hiring.CompleteHiring(ctx, req.ID, world.rhDirector.ID, CompleteHiringDTO{
		HiredName:       "Ana Lima",
		HiredEmail:      "ana.lima@example.com",
		ActualStartDate: startDate,
	})
	assert.True(t, apperrors.IsAlreadyProcessed(err))
}

func TestCompleteHiringRequiresNameAndDate(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createHiringRequest(t, world)
	env.approveHiringFully(t, world, req.ID)
	_, err := env.hiring.StartProgress(ctx, req.ID, world.rhDirector.ID)
	require.NoError(t, err)

	_, err = env.hiring.CompleteHiring(ctx, req.ID, world.rhDirector.ID, CompleteHiringDTO{
		HiredEmail:      "ana.lima@example.com",
		ActualStartDate: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.True(t, apperrors.IsValidation(err), "name is mandatory")

	_, err = env.hiring.CompleteHiring(ctx, req.ID, world.rhDirector.ID, CompleteHiringDTO{
		HiredName:  "Ana Lima",
		HiredEmail: "ana.lima@example.com",
	})
	assert.True(t, apperrors.IsValidation(err), "start date is mandatory")
}
