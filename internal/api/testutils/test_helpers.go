package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rongwang/stonks/internal/api"
	"github.com/rongwang/stonks/internal/config"
	"github.com/rongwang/stonks/internal/idgen"
	"github.com/rongwang/stonks/internal/models"
	"github.com/rongwang/stonks/internal/repository"
	"github.com/rongwang/stonks/internal/service"
	"github.com/rongwang/stonks/internal/utils"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key"

// TestContext holds all dependencies for tests
type TestContext struct {
	Router      *gin.Engine
	Store       *repository.Store
	Service     service.Service
	JWTSecret   []byte
	DB          *sqlx.DB
	TestUserID  models.ID
	TestUserJWT string
}

// NewTestConfig returns a configuration pointing at a fresh SQLite file
// under the test's temp dir.
func NewTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		Database: config.DatabaseConfig{
			Driver: string(repository.DialectSQLite),
			Path:   filepath.Join(t.TempDir(), "stonks.db"),
		},
		Auth: config.AuthConfig{JWTSecret: testJWTSecret},
		Ledger: config.LedgerConfig{
			MaxTxAttempts:  10,
			AttemptTimeout: 5 * time.Second,
		},
		Log: config.LogConfig{Level: "debug"},
	}
}

// SetupStore migrates a fresh SQLite database and opens a store over it.
func SetupStore(t *testing.T) *repository.Store {
	t.Helper()
	cfg := NewTestConfig(t)

	require.NoError(t, config.RunMigrations(cfg), "Failed to migrate test database")
	db, err := config.SetupDatabase(cfg)
	require.NoError(t, err, "Failed to set up test database")

	store := repository.NewStore(db, cfg.Database.Dialect(), repository.Options{
		MaxAttempts:    cfg.Ledger.MaxTxAttempts,
		AttemptTimeout: cfg.Ledger.AttemptTimeout,
	}, utils.NewNopLogger())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// SetupTestContext creates a new test context with initialized dependencies
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()

	store := SetupStore(t)
	logger := utils.NewNopLogger()
	svc := service.NewDefaultService(store, idgen.New(nil), logger)
	handler := api.NewHandler(svc, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(api.RequestIDMiddleware(logger))
	router.Use(api.SecretMiddleware([]byte(testJWTSecret)))
	handler.SetupRoutes(router)

	userID := idgen.New(nil).NewID()

	return &TestContext{
		Router:      router,
		Store:       store,
		Service:     svc,
		JWTSecret:   []byte(testJWTSecret),
		DB:          store.GetDB(),
		TestUserID:  userID,
		TestUserJWT: TokenFor(t, []byte(testJWTSecret), userID),
	}
}

// CleanupTestContext cleans up test resources
func CleanupTestContext(t *TestContext) {
	if t.Store != nil {
		_ = t.Store.Close()
	}
}

// TokenFor signs a token for userID.
func TokenFor(t *testing.T, secret []byte, userID models.ID) string {
	t.Helper()
	token, err := api.IssueToken(secret, userID, 24*time.Hour)
	require.NoError(t, err, "Failed to generate JWT token")
	return token
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}

// DecodeJSON unmarshals a response body into v.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}
