package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/todolistapi/backend/internal/api"
	"github.com/todolistapi/backend/internal/config"
	"github.com/todolistapi/backend/internal/database/models"
	"github.com/todolistapi/backend/internal/database/repository"
	"github.com/todolistapi/backend/internal/database/service"
	"github.com/todolistapi/backend/internal/handler"
	"github.com/todolistapi/backend/internal/middleware"
	"github.com/todolistapi/backend/internal/security"
)

// TestConfig returns a config suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		HTTPPort:               "8080",
		JWTSecret:              "test-secret-key-for-testing-purposes",
		JWTIssuer:              "todolist-api-test",
		JWTAudience:            "todolist-clients-test",
		AccessTokenExpiryMins:  30,
		RefreshTokenExpiryDays: 30,
		RateLimitRequests:      1000,
		RateLimitWindowSecs:    1,
	}
}

// TestLogger returns a silent logger for testing
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetupTestDB creates a new in-memory SQLite database with the core schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Foreign keys are off by default in SQLite; cascades need them on
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.RefreshToken{}, &models.ToDoItem{})
	require.NoError(t, err)

	return db
}

// ==================== MOCK USER REPOSITORY ====================

// MockUserRepository implements repository.UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ==================== MOCK REFRESH TOKEN REPOSITORY ====================

// MockRefreshTokenRepository implements repository.RefreshTokenRepository for testing
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) RevokeToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) Rotate(ctx context.Context, oldToken string, next *models.RefreshToken) error {
	args := m.Called(ctx, oldToken, next)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) RevokeAllUserTokens(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpiredTokens(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ==================== MOCK TO-DO ITEM REPOSITORY ====================

// MockToDoItemRepository implements repository.ToDoItemRepository for testing
type MockToDoItemRepository struct {
	mock.Mock
}

func (m *MockToDoItemRepository) Create(ctx context.Context, item *models.ToDoItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockToDoItemRepository) FindByID(ctx context.Context, id uint) (*models.ToDoItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ToDoItem), args.Error(1)
}

func (m *MockToDoItemRepository) List(ctx context.Context, query repository.ItemQuery) ([]models.ToDoItem, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.ToDoItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockToDoItemRepository) Update(ctx context.Context, item *models.ToDoItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockToDoItemRepository) Delete(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// ==================== ROUTER SETUP HELPERS ====================

// SetupRouter wires the full HTTP stack on top of the given database. The
// rate limit is high enough to stay out of the way of functional tests.
func SetupRouter(t *testing.T, db *gorm.DB) (*gin.Engine, security.TokenIssuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := TestConfig()
	logger := TestLogger()

	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	itemRepo := repository.NewToDoItemRepository(db)

	hasher := security.NewPasswordHasher()
	issuer := security.NewTokenIssuer(cfg)

	authService := service.NewAuthService(userRepo, refreshTokenRepo, hasher, issuer, cfg, logger)
	itemService := service.NewToDoItemService(itemRepo, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	itemHandler := handler.NewToDoItemHandler(itemService, logger)
	authMiddleware := middleware.NewAuthMiddleware(issuer, logger)

	limiter := middleware.NewMemoryRateLimiter(cfg.RateLimitRequests, time.Minute, nil)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(limiter, logger)

	return api.SetupRouter(authHandler, itemHandler, authMiddleware, rateLimitMiddleware), issuer
}
