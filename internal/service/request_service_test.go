package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePurchaseUsesCreatorArea(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	buyer := env.createUser(t, "buyer", false)
	buyer.AreaID = &world.engineering.ID
	require.NoError(t, env.db.Save(buyer).Error)

	req, err := env.requests.CreatePurchase(ctx, buyer.ID, CreatePurchaseDTO{
		Description: "laptops",
		Amount:      decimal.NewFromInt(12000),
		Supplier:    "ACME",
	})
	require.NoError(t, err)
	assert.Equal(t, world.engineering.ID, req.AreaID)

	// Default purchase route is [REQUEST_AREA, Financeiro].
	steps := env.stepsOf(t, model.RequestTypePurchase, req.ID)
	require.Len(t, steps, 2)
	require.NotNil(t, steps[0].TargetAreaID)
	assert.Equal(t, world.engineering.ID, *steps[0].TargetAreaID)
	require.NotNil(t, steps[1].TargetAreaID)
	assert.Equal(t, world.financeiro.ID, *steps[1].TargetAreaID)
}

func TestCreatePurchaseWithoutAreaFails(t *testing.T) {
	env := newTestEnv(t)
	env.seedApprovalWorld(t)
	ctx := context.Background()

	noArea := env.createUser(t, "no-area", false)
	_, err := env.requests.CreatePurchase(ctx, noArea.ID, CreatePurchaseDTO{
		Description: "chairs",
		Amount:      decimal.NewFromInt(500),
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateRecessValidatesDates(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	_, err := env.requests.CreateRecess(ctx, world.engDirector.ID, CreateRecessDTO{
		ProviderID: world.provider.ID.String(),
		StartDate:  time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateRequestForInactiveProvider(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	require.NoError(t, env.db.Model(&model.Provider{}).
		Where("id = ?", world.provider.ID).
		Update("active", false).Error)

	_, err := env.requests.CreateRecess(ctx, world.engDirector.ID, CreateRecessDTO{
		ProviderID: world.provider.ID.String(),
		StartDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
	})
	assert.True(t, apperrors.IsValidation(err))

	_, err = env.requests.CreateTermination(ctx, world.engDirector.ID, CreateTerminationDTO{
		ProviderID: world.provider.ID.String(),
		Reason:     "already gone",
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetDetailBundlesSteps(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	req := env.createRecessRequest(t, world)

	detail, err := env.requests.GetDetail(ctx, model.RequestTypeRecess, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestTypeRecess, detail.RequestType)
	assert.Len(t, detail.Steps, 3)

	loaded, ok := detail.Request.(*model.RecessRequest)
	require.True(t, ok)
	assert.Equal(t, req.ID, loaded.ID)
}

func TestListRequestsByStatus(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	first := env.createRecessRequest(t, world)
	env.createRecessRequest(t, world)

	// Reject the first one so the two land in different status buckets.
	steps := env.stepsOf(t, model.RequestTypeRecess, first.ID)
	_, err := env.approvals.RejectStep(ctx, steps[0].ID, world.engDirector.ID, "overlapping period")
	require.NoError(t, err)

	pending, total, err := env.requests.ListRecess(ctx, model.StatusPending, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, pending, 1)

	rejected, total, err := env.requests.ListRecess(ctx, model.StatusRejected, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rejected, 1)
	assert.Equal(t, first.ID, rejected[0].ID)

	all, total, err := env.requests.ListRecess(ctx, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)
}
