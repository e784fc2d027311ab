package service

import (
	"context"
	"testing"

	"backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPermissionDesignatedApprover(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	// Director of Engineering can act on Engineering steps.
	result, err := env.permissions.CheckPermission(ctx, world.engDirector.ID, &world.engineering.ID)
	require.NoError(t, err)
	assert.True(t, result.CanApprove)
	assert.True(t, result.IsDesignatedApprover)
	assert.False(t, result.IsAdminOverride)

	// But not on RH steps.
	result, err = env.permissions.CheckPermission(ctx, world.engDirector.ID, &world.rh.ID)
	require.NoError(t, err)
	assert.False(t, result.CanApprove)

	// C-Level designation grants the same right as Director.
	result, err = env.permissions.CheckPermission(ctx, world.boardCLevel.ID, &world.diretoria.ID)
	require.NoError(t, err)
	assert.True(t, result.CanApprove)
	assert.True(t, result.IsDesignatedApprover)
}

func TestCheckPermissionAdminOverride(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	// Admin may act anywhere, flagged as override.
	result, err := env.permissions.CheckPermission(ctx, world.admin.ID, &world.rh.ID)
	require.NoError(t, err)
	assert.True(t, result.CanApprove)
	assert.False(t, result.IsDesignatedApprover)
	assert.True(t, result.IsAdminOverride)

	// An admin who is also the designated approver is reported as designated,
	// not as an override.
	adminDirector := env.createUser(t, "admin-director", true)
	area := env.createArea(t, "Operations", &adminDirector.ID, nil)
	result, err = env.permissions.CheckPermission(ctx, adminDirector.ID, &area.ID)
	require.NoError(t, err)
	assert.True(t, result.CanApprove)
	assert.True(t, result.IsDesignatedApprover)
	assert.False(t, result.IsAdminOverride)
}

func TestCheckPermissionNilAreaIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	result, err := env.permissions.CheckPermission(ctx, world.engDirector.ID, nil)
	require.NoError(t, err)
	assert.False(t, result.CanApprove)

	result, err = env.permissions.CheckPermission(ctx, world.admin.ID, nil)
	require.NoError(t, err)
	assert.True(t, result.CanApprove)
	assert.True(t, result.IsAdminOverride)
}

func TestCheckPermissionOutsider(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	result, err := env.permissions.CheckPermission(ctx, world.outsider.ID, &world.engineering.ID)
	require.NoError(t, err)
	assert.False(t, result.CanApprove)
	assert.False(t, result.IsDesignatedApprover)
	assert.False(t, result.IsAdminOverride)
}

func TestCheckPermissionUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	world := env.seedApprovalWorld(t)
	ctx := context.Background()

	_, err := env.permissions.CheckPermission(ctx, uuid.New(), &world.engineering.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetPotentialApprovers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	director := env.createUser(t, "director", false)
	cLevel := env.createUser(t, "c-level", false)
	area := env.createArea(t, "Sales", &director.ID, &cLevel.ID)

	approvers, err := env.permissions.GetPotentialApprovers(ctx, area.ID)
	require.NoError(t, err)
	require.Len(t, approvers, 2)
	assert.Equal(t, director.ID, approvers[0].ID)
	assert.Equal(t, cLevel.ID, approvers[1].ID)

	// Same person in both roles appears once.
	both := env.createUser(t, "both-roles", false)
	dual := env.createArea(t, "Legal", &both.ID, &both.ID)
	approvers, err = env.permissions.GetPotentialApprovers(ctx, dual.ID)
	require.NoError(t, err)
	require.Len(t, approvers, 1)
	assert.Equal(t, both.ID, approvers[0].ID)

	// Area without designations has no potential approvers.
	empty := env.createArea(t, "Facilities", nil, nil)
	approvers, err = env.permissions.GetPotentialApprovers(ctx, empty.ID)
	require.NoError(t, err)
	assert.Empty(t, approvers)
}
