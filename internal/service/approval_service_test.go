package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"backend/internal/model"
	"backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createRecessRequest(t *testing.T, w *approvalWorld) *model.RecessRequest {
	t.Helper()
	req, err := e.requests.CreateRecess(context.Background(), w.engDirector.ID, CreateRecessDTO{
		ProviderID: w.provider.ID.String(),
		StartDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		Reason:     "annual recess",
	})
	require.NoError(t, err)
	return req
}

func (e *testEnv) stepsOf(t *testing.T, requestType model.RequestType, requestID uuid.UUID) []model.ApprovalStep {
	t.Helper()
	steps, err := e.approvals.GetApprovalSteps(context.Background(), requestType, requestID)
	require.NoError(t, err)
	return steps
}

func TestCreateStepsSnapshotsRoute(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)

	req := env.createRecessRequest(t, world)

	steps := env.stepsOf(t, model.RequestTypeRecess, req.ID)
	require.Len(t, steps, 3)

	// REQUEST_AREA resolves to the provider's area; the rest by name.
	require.NotNil(t, steps[0].TargetAreaID)
	assert.Equal(t, world.engineering.ID, *steps[0].TargetAreaID)
	require.NotNil(t, steps[1].TargetAreaID)
	assert.Equal(t, world.rh.ID, *steps[1].TargetAreaID)
	require.NotNil(t, steps[2].TargetAreaID)
	assert.Equal(t, world.diretoria.ID, *steps[2].TargetAreaID)

	for i, step := range steps {
		assert.Equal(t, i+1, step.StepNumber)
		assert.Equal(t, model.StatusPending, step.Status)
		assert.Nil(t, step.ApproverID)
	}
}

func TestStepsPinnedAcrossFlowEdits(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	before := env.createRecessRequest(t, world)

	// Shorten the recess route after the first request is already in flight.
	draft := model.DefaultFlowDefinitions()
	for i := range draft {
		if draft[i].RequestType == model.RequestTypeRecess {
			draft[i].Steps = []string{"REQUEST_AREA", "Diretoria"}
		}
	}
	_, err := env.flows.ReplaceFlows(ctx, world.admin.ID, draft)
	require.NoError(t, err)

	// The in-flight request keeps its three original steps.
	assert.Len(t, env.stepsOf(t, model.RequestTypeRecess, before.ID), 3)

	// A new request snapshots the edited route.
	after := env.createRecessRequest(t, world)
	assert.Len(t, env.stepsOf(t, model.RequestTypeRecess, after.ID), 2)
}

func TestUnresolvedAreaPinsNilTarget(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	// The area exists when the flow is saved, then disappears before the
	// request is created.
	temp := env.createArea(t, "Temporary", nil, nil)
	draft := model.DefaultFlowDefinitions()
	for i := range draft {
		if draft[i].RequestType == model.RequestTypeRecess {
			draft[i].Steps = []string{"REQUEST_AREA", "Temporary", "Diretoria"}
		}
	}
	_, err := env.flows.ReplaceFlows(ctx, world.admin.ID, draft)
	require.NoError(t, err)
	require.NoError(t, env.db.Delete(&model.Area{}, "id = ?", temp.ID).Error)

	req := env.createRecessRequest(t, world)
	steps := env.stepsOf(t, model.RequestTypeRecess, req.ID)
	require.Len(t, steps, 3)
	assert.Nil(t, steps[1].TargetAreaID)

	_, err = env.approvals.ApproveStep(ctx, steps[0].ID, world.engDirector.ID, "")
	require.NoError(t, err)

	// A designated approver can never satisfy the nil-area step.
	_, err = env.approvals.ApproveStep(ctx, steps[1].ID, world.rhDirector.ID, "")
	assert.True(t, apperrors.IsPermission(err))

	// An admin override can.
	result, err := env.approvals.ApproveStep(ctx, steps[1].ID, world.admin.ID, "")
	require.NoError(t, err)
	assert.True(t, result.Step.AdminOverride)
}

func TestApproveOutOfOrderIsRejected(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createRecessRequest(t, world)
	steps := env.stepsOf(t, model.RequestTypeRecess, req.ID)
	require.Len(t, steps, 3)

	// Approving the last step of a fresh request must not short-circuit the
	// chain, even for its designated approver.
	_, err := env.approvals.ApproveStep(ctx, steps[2].ID, world.boardCLevel.ID, "")
	assert.True(t, apperrors.IsValidation(err))

	_, err = env.approvals.ApproveStep(ctx, steps[1].ID, world.rhDirector.ID, "")
	assert.True(t, apperrors.IsValidation(err))

	// Nothing moved: request still pending, every step still pending.
	reloaded, err := env.requestRepo.GetRecess(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, reloaded.Status)
	for _, step := range env.stepsOf(t, model.RequestTypeRecess, req.ID) {
		assert.Equal(t, model.StatusPending, step.Status)
	}

	// The lowest pending step is still approvable.
	_, err = env.approvals.ApproveStep(ctx, steps[0].ID, world.engDirector.ID, "")
	require.NoError(t, err)
}

func TestApproveChainAdvancesAndFinalizes(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createRecessRequest(t, world)
	steps := env.stepsOf(t, model.RequestTypeRecess, req.ID)

	result, err := env.approvals.ApproveStep(ctx, steps[0].ID, world.engDirector.ID, "ok")
	require.NoError(t, err)
	assert.False(t, result.IsFullyApproved)
	require.NotNil(t, result.NextStepNumber)
	assert.Equal(t, 2, *result.NextStepNumber)
	assert.Equal(t, model.StatusPending, result.RequestStatus)

	result, err = env.approvals.ApproveStep(ctx, steps[1].ID, world.rhDirector.ID, "")
	require.NoError(t, err)
	require.NotNil(t, result.NextStepNumber)
	assert.Equal(t, 3, *result.NextStepNumber)

	// Decided steps form a contiguous prefix while the request is pending.
	current := env.stepsOf(t, model.RequestTypeRecess, req.ID)
	assert.Equal(t, model.StatusApproved, current[0].Status)
	assert.Equal(t, model.StatusApproved, current[1].Status)
	assert.Equal(t, model.StatusPending, current[2].Status)

	result, err = env.approvals.ApproveStep(ctx, steps[2].ID, world.boardCLevel.ID, "")
	require.NoError(t, err)
	assert.True(t, result.IsFullyApproved)
	assert.Nil(t, result.NextStepNumber)
	assert.Equal(t, model.StatusApproved, result.RequestStatus)

	reloaded, err := env.requestRepo.GetRecess(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, reloaded.Status)
}

func TestApproveStepTwiceIsRejected(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createRecessRequest(t, world)
	steps := env.stepsOf(t, model.RequestTypeRecess, req.ID)

	_, err := env.approvals.ApproveStep(ctx, steps[0].ID, world.engDirector.ID, "")
	require.NoError(t, err)

	_, err = env.approvals.ApproveStep(ctx, steps[0].ID, world.engDirector.ID, "")
	assert.True(t, apperrors.IsAlreadyProcessed(err))

	_, err = env.approvals.ApproveStep(ctx, steps[0].ID, world.admin.ID, "")
	assert.True(t, apperrors.IsAlreadyProcessed(err), "replays are rejected even for admins")
}

func TestConcurrentApprovalsApplyOnce(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createRecessRequest(t, world)
	steps := env.stepsOf(t, model.RequestTypeRecess, req.ID)

	// Two callers race on the same step; the conditional transition lets
	// exactly one through.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.approvals.ApproveStep(ctx, steps[0].ID, world.engDirector.ID, "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, duplicates int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.True(t, apperrors.IsAlreadyProcessed(err))
		duplicates++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, duplicates)

	current := env.stepsOf(t, model.RequestTypeRecess, req.ID)
	assert.Equal(t, model.StatusApproved, current[0].Status)
	assert.Equal(t, model.StatusPending, current[1].Status)

	reloaded, err := env.requestRepo.GetRecess(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, reloaded.Status)
}

func TestApproveStepPermissionDenied(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createRecessRequest(t, world)
	steps := env.stepsOf(t, model.RequestTypeRecess, req.ID)

	// RH's director is designated for step 2, not step 1.
	_, err := env.approvals.ApproveStep(ctx, steps[0].ID, world.rhDirector.ID, "")
	assert.True(t, apperrors.IsPermission(err))

	// The step is untouched by the failed attempt.
	current := env.stepsOf(t, model.RequestTypeRecess, req.ID)
	assert.Equal(t, model.StatusPending, current[0].Status)
}

func TestApproveStepUnknownID(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)

	_, err := env.approvals.ApproveStep(context.Background(), uuid.New(), world.admin.ID, "")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAdminOverrideIsRecorded(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createRecessRequest(t, world)
	steps := env.stepsOf(t, model.RequestTypeRecess, req.ID)

	result, err := env.approvals.ApproveStep(ctx, steps[0].ID, world.admin.ID, "override")
	require.NoError(t, err)
	assert.True(t, result.Step.AdminOverride)

	current := env.stepsOf(t, model.RequestTypeRecess, req.ID)
	assert.True(t, current[0].AdminOverride)
	require.NotNil(t, current[0].ApproverID)
	assert.Equal(t, world.admin.ID, *current[0].ApproverID)
}

func TestRejectVetoesWholeRequest(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createRecessRequest(t, world)
	steps := env.stepsOf(t, model.RequestTypeRecess, req.ID)

	_, err := env.approvals.ApproveStep(ctx, steps[0].ID, world.engDirector.ID, "")
	require.NoError(t, err)

	result, err := env.approvals.RejectStep(ctx, steps[1].ID, world.rhDirector.ID, "insufficient notice")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, result.RequestStatus)

	reloaded, err := env.requestRepo.GetRecess(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, reloaded.Status)

	// The untouched third step stays PENDING forever, but can never be acted
	// on because the request is terminal.
	current := env.stepsOf(t, model.RequestTypeRecess, req.ID)
	assert.Equal(t, model.StatusPending, current[2].Status)

	_, err = env.approvals.ApproveStep(ctx, steps[2].ID, world.boardCLevel.ID, "")
	assert.True(t, apperrors.IsAlreadyProcessed(err))

	after := env.stepsOf(t, model.RequestTypeRecess, req.ID)
	assert.Equal(t, model.StatusPending, after[2].Status)
}

func TestRejectAnyPendingStep(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createRecessRequest(t, world)
	steps := env.stepsOf(t, model.RequestTypeRecess, req.ID)

	// A veto does not wait its turn: the last step's approver can reject
	// while the first two are still pending.
	result, err := env.approvals.RejectStep(ctx, steps[2].ID, world.boardCLevel.ID, "not this quarter")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, result.RequestStatus)

	current := env.stepsOf(t, model.RequestTypeRecess, req.ID)
	assert.Equal(t, model.StatusPending, current[0].Status)
	assert.Equal(t, model.StatusPending, current[1].Status)
	assert.Equal(t, model.StatusRejected, current[2].Status)
}

func TestRejectCommentLength(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createRecessRequest(t, world)
	steps := env.stepsOf(t, model.RequestTypeRecess, req.ID)

	_, err := env.approvals.RejectStep(ctx, steps[0].ID, world.engDirector.ID, "no")
	assert.True(t, apperrors.IsValidation(err), "2-character comment is too short")

	_, err = env.approvals.RejectStep(ctx, steps[0].ID, world.engDirector.ID, "  ab  ")
	assert.True(t, apperrors.IsValidation(err), "whitespace does not count")

	_, err = env.approvals.RejectStep(ctx, steps[0].ID, world.engDirector.ID, "no!")
	require.NoError(t, err, "3-character comment is enough")
}

func TestRemunerationEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req, err := env.requests.CreateRemuneration(ctx, world.engDirector.ID, CreateRemunerationDTO{
		ProviderID:    world.provider.ID.String(),
		NewSalary:     decimal.NewFromInt(6000),
		Justification: "market adjustment",
	})
	require.NoError(t, err)
	assert.True(t, req.CurrentSalary.Equal(decimal.NewFromInt(5000)))

	steps := env.stepsOf(t, model.RequestTypeRemuneration, req.ID)
	require.Len(t, steps, 4)

	approvers := []uuid.UUID{world.engDirector.ID, world.rhDirector.ID, world.finDirector.ID}
	for i, approverID := range approvers {
		_, err := env.approvals.ApproveStep(ctx, steps[i].ID, approverID, "")
		require.NoError(t, err)
	}

	// After three of four approvals nothing has changed yet.
	provider, err := env.providerRepo.GetByID(ctx, world.provider.ID)
	require.NoError(t, err)
	assert.True(t, provider.Salary.Equal(decimal.NewFromInt(5000)))

	result, err := env.approvals.ApproveStep(ctx, steps[3].ID, world.boardCLevel.ID, "")
	require.NoError(t, err)
	assert.True(t, result.IsFullyApproved)

	provider, err = env.providerRepo.GetByID(ctx, world.provider.ID)
	require.NoError(t, err)
	assert.True(t, provider.Salary.Equal(decimal.NewFromInt(6000)))
}

func TestTerminationDeactivatesProvider(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req, err := env.requests.CreateTermination(ctx, world.engDirector.ID, CreateTerminationDTO{
		ProviderID: world.provider.ID.String(),
		Reason:     "contract ended",
	})
	require.NoError(t, err)

	steps := env.stepsOf(t, model.RequestTypeTermination, req.ID)
	require.Len(t, steps, 3)

	approvers := []uuid.UUID{world.engDirector.ID, world.rhDirector.ID, world.boardCLevel.ID}
	for i, approverID := range approvers {
		_, err := env.approvals.ApproveStep(ctx, steps[i].ID, approverID, "")
		require.NoError(t, err)
	}

	provider, err := env.providerRepo.GetByID(ctx, world.provider.ID)
	require.NoError(t, err)
	assert.False(t, provider.Active)
}

func TestDisabledFlowBlocksCreation(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	draft := model.DefaultFlowDefinitions()
	for i := range draft {
		if draft[i].RequestType == model.RequestTypeRecess {
			draft[i].Enabled = false
		}
	}
	_, err := env.flows.ReplaceFlows(ctx, world.admin.ID, draft)
	require.NoError(t, err)

	_, err = env.requests.CreateRecess(ctx, world.engDirector.ID, CreateRecessDTO{
		ProviderID: world.provider.ID.String(),
		StartDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
	})
	assert.True(t, apperrors.IsValidation(err))

	// The whole creation rolled back with the step snapshot.
	var count int64
	require.NoError(t, env.db.Model(&model.RecessRequest{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetCurrentPendingStep(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createRecessRequest(t, world)
	steps := env.stepsOf(t, model.RequestTypeRecess, req.ID)

	current, err := env.approvals.GetCurrentPendingStep(ctx, model.RequestTypeRecess, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, current.StepNumber)

	_, err = env.approvals.ApproveStep(ctx, steps[0].ID, world.engDirector.ID, "")
	require.NoError(t, err)

	current, err = env.approvals.GetCurrentPendingStep(ctx, model.RequestTypeRecess, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, current.StepNumber)
}

func TestListPendingForUser(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createRecessRequest(t, world)

	// The Engineering director sees the first step, RH's sees nothing yet.
	steps, total, err := env.approvals.ListPendingForUser(ctx, world.engDirector.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, steps, 1)
	assert.Equal(t, req.ID, steps[0].RequestID)

	_, total, err = env.approvals.ListPendingForUser(ctx, world.outsider.ID, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
}
