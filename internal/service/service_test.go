package service

import (
	"testing"

	"backend/internal/database"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full service graph against an in-memory sqlite database.
type testEnv struct {
	db *gorm.DB

	userRepo     repository.UserRepository
	areaRepo     repository.AreaRepository
	providerRepo repository.ProviderRepository
	requestRepo  repository.RequestRepository
	stepRepo     repository.StepRepository

	flows       FlowService
	permissions PermissionService
	approvals   ApprovalService
	requests    RequestService
	hiring      HiringService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps the in-memory database visible to every
	// goroutine of a test.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	areaRepo := repository.NewAreaRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	stepRepo := repository.NewStepRepository(db)
	flowRepo := repository.NewFlowRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	flows := NewFlowService(flowRepo, areaRepo, userRepo, auditRepo, txManager)
	permissions := NewPermissionService(userRepo, areaRepo)
	approvals := NewApprovalService(stepRepo, requestRepo, providerRepo, areaRepo, auditRepo, flows, permissions, txManager, nil)
	requests := NewRequestService(requestRepo, providerRepo, areaRepo, userRepo, auditRepo, approvals, txManager)
	hiring := NewHiringService(requestRepo, providerRepo, auditRepo, txManager, nil)

	return &testEnv{
		db:           db,
		userRepo:     userRepo,
		areaRepo:     areaRepo,
		providerRepo: providerRepo,
		requestRepo:  requestRepo,
		stepRepo:     stepRepo,
		flows:        flows,
		permissions:  permissions,
		approvals:    approvals,
		requests:     requests,
		hiring:       hiring,
	}
}

func (e *testEnv) createUser(t *testing.T, name string, isAdmin bool) *model.User {
	t.Helper()
	user := &model.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "hashed",
		IsAdmin:  isAdmin,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createArea(t *testing.T, name string, directorID, cLevelID *uuid.UUID) *model.Area {
	t.Helper()
	area := &model.Area{Name: name, DirectorID: directorID, CLevelID: cLevelID}
	require.NoError(t, e.db.Create(area).Error)
	return area
}

func (e *testEnv) createProvider(t *testing.T, areaID uuid.UUID, salary int64) *model.Provider {
	t.Helper()
	provider := &model.Provider{
		Name:   "Provider " + uuid.NewString()[:8],
		Email:  uuid.NewString()[:8] + "@example.com",
		AreaID: areaID,
		Salary: decimal.NewFromInt(salary),
		Active: true,
	}
	require.NoError(t, e.db.Create(provider).Error)
	return provider
}

// approvalWorld is the standard fixture: the default route areas plus one
// engineering area holding the subject provider.
type approvalWorld struct {
	admin       *model.User
	engDirector *model.User
	rhDirector  *model.User
	finDirector *model.User
	boardCLevel *model.User
	outsider    *model.User

	engineering *model.Area
	rh          *model.Area
	financeiro  *model.Area
	diretoria   *model.Area

	provider *model.Provider
}

func (e *testEnv) seedApprovalWorld(t *testing.T) *approvalWorld {
	t.Helper()

	w := &approvalWorld{
		admin:       e.createUser(t, "admin", true),
		engDirector: e.createUser(t, "eng-director", false),
		rhDirector:  e.createUser(t, "rh-director", false),
		finDirector: e.createUser(t, "fin-director", false),
		boardCLevel: e.createUser(t, "board-clevel", false),
		outsider:    e.createUser(t, "outsider", false),
	}

	w.engineering = e.createArea(t, "Engineering", &w.engDirector.ID, nil)
	w.rh = e.createArea(t, "RH", &w.rhDirector.ID, nil)
	w.financeiro = e.createArea(t, "Financeiro", &w.finDirector.ID, nil)
	w.diretoria = e.createArea(t, "Diretoria", nil, &w.boardCLevel.ID)

	w.provider = e.createProvider(t, w.engineering.ID, 5000)
	return w
}
