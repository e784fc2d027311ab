package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFlowsReturnsDefaultsWhenUnconfigured(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	flows, err := env.flows.GetFlows(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, flows.Version)
	assert.Len(t, flows.Flows, 5)

	byType := make(map[model.RequestType][]string)
	for _, def := range flows.Flows {
		byType[def.RequestType] = def.Steps
		assert.True(t, def.Enabled)
	}
	assert.Equal(t, []string{"REQUEST_AREA", "RH", "Diretoria"}, byType[model.RequestTypeRecess])
	assert.Equal(t, []string{"REQUEST_AREA", "RH", "Diretoria"}, byType[model.RequestTypeTermination])
	assert.Equal(t, []string{"REQUEST_AREA", "RH", "Financeiro", "Diretoria"}, byType[model.RequestTypeHiring])
	assert.Equal(t, []string{"REQUEST_AREA", "Financeiro"}, byType[model.RequestTypePurchase])
	assert.Equal(t, []string{"REQUEST_AREA", "RH", "Financeiro", "Diretoria"}, byType[model.RequestTypeRemuneration])
}

func TestReplaceFlowsPersistsAndBumpsVersion(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	draft := model.DefaultFlowDefinitions()
	for i := range draft {
		if draft[i].RequestType == model.RequestTypePurchase {
			draft[i].Steps = []string{"REQUEST_AREA", "Financeiro", "Diretoria"}
		}
	}

	saved, err := env.flows.ReplaceFlows(ctx, world.admin.ID, draft)
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version)

	reloaded, err := env.flows.GetFlows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Version)

	purchase, err := env.flows.FlowFor(ctx, model.RequestTypePurchase)
	require.NoError(t, err)
	assert.Equal(t, []string{"REQUEST_AREA", "Financeiro", "Diretoria"}, purchase.Steps)

	// Saving again bumps the version a second time.
	saved, err = env.flows.ReplaceFlows(ctx, world.admin.ID, draft)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Version)
}

func TestReplaceFlowsRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	_, err := env.flows.ReplaceFlows(ctx, world.rhDirector.ID, model.DefaultFlowDefinitions())
	assert.True(t, apperrors.IsPermission(err))
}

func TestReplaceFlowsValidation(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	mutate := func(fn func(flows []model.FlowDefinition)) []model.FlowDefinition {
		flows := model.DefaultFlowDefinitions()
		fn(flows)
		return flows
	}

	tests := []struct {
		name  string
		flows []model.FlowDefinition
	}{
		{
			name:  "missing definition",
			flows: model.DefaultFlowDefinitions()[:4],
		},
		{
			name: "duplicate definition",
			flows: mutate(func(flows []model.FlowDefinition) {
				flows[1].RequestType = model.RequestTypeRecess
			}),
		},
		{
			name: "first step not REQUEST_AREA",
			flows: mutate(func(flows []model.FlowDefinition) {
				flows[0].Steps = []string{"RH", "Diretoria"}
			}),
		},
		{
			name: "route shorter than two steps",
			flows: mutate(func(flows []model.FlowDefinition) {
				flows[0].Steps = []string{"REQUEST_AREA"}
			}),
		},
		{
			name: "REQUEST_AREA beyond first position",
			flows: mutate(func(flows []model.FlowDefinition) {
				flows[0].Steps = []string{"REQUEST_AREA", "RH", "REQUEST_AREA"}
			}),
		},
		{
			name: "consecutive duplicate steps",
			flows: mutate(func(flows []model.FlowDefinition) {
				flows[0].Steps = []string{"REQUEST_AREA", "RH", "RH"}
			}),
		},
		{
			name: "unknown area name",
			flows: mutate(func(flows []model.FlowDefinition) {
				flows[0].Steps = []string{"REQUEST_AREA", "Jurídico"}
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.flows.ReplaceFlows(ctx, world.admin.ID, tt.flows)
			assert.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestResetFlowsRestoresDefaults(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	draft := model.DefaultFlowDefinitions()
	for i := range draft {
		if draft[i].RequestType == model.RequestTypeRecess {
			draft[i].Steps = []string{"REQUEST_AREA", "Diretoria"}
		}
	}
	_, err := env.flows.ReplaceFlows(ctx, world.admin.ID, draft)
	require.NoError(t, err)

	reset, err := env.flows.ResetFlows(ctx, world.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reset.Version)

	recess, err := env.flows.FlowFor(ctx, model.RequestTypeRecess)
	require.NoError(t, err)
	assert.Equal(t, []string{"REQUEST_AREA", "RH", "Diretoria"}, recess.Steps)
}

func TestMoveFlowStep(t *testing.T) {
	steps := []string{"REQUEST_AREA", "RH", "Financeiro", "Diretoria"}

	moved, err := MoveFlowStep(steps, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"REQUEST_AREA", "Diretoria", "RH", "Financeiro"}, moved)

	_, err = MoveFlowStep(steps, 0, 2)
	assert.True(t, apperrors.IsValidation(err), "first step must not move")

	_, err = MoveFlowStep(steps, 2, 0)
	assert.True(t, apperrors.IsValidation(err), "nothing may land in front of the first step")
}

func TestAddFlowStep(t *testing.T) {
	steps := []string{"REQUEST_AREA", "RH"}

	added, err := AddFlowStep(steps, 2, "Diretoria")
	require.NoError(t, err)
	assert.Equal(t, []string{"REQUEST_AREA", "RH", "Diretoria"}, added)

	_, err = AddFlowStep(steps, 2, "RH")
	assert.True(t, apperrors.IsValidation(err), "immediate repeat must be rejected")

	_, err = AddFlowStep(steps, 1, "REQUEST_AREA")
	assert.True(t, apperrors.IsValidation(err), "the token may only occupy position 1")

	_, err = AddFlowStep(steps, 0, "Diretoria")
	assert.True(t, apperrors.IsValidation(err), "nothing may be inserted before the first step")
}

func TestRemoveFlowStep(t *testing.T) {
	steps := []string{"REQUEST_AREA", "RH", "Diretoria"}

	removed, err := RemoveFlowStep(steps, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"REQUEST_AREA", "Diretoria"}, removed)

	_, err = RemoveFlowStep(steps, 0)
	assert.True(t, apperrors.IsValidation(err), "the first step cannot be removed")

	_, err = RemoveFlowStep([]string{"REQUEST_AREA", "RH"}, 1)
	assert.True(t, apperrors.IsValidation(err), "a route keeps at least two steps")

	_, err = RemoveFlowStep([]string{"REQUEST_AREA", "RH", "Financeiro", "RH"}, 2)
	assert.True(t, apperrors.IsValidation(err), "removal must not create an immediate repeat")
}
