package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"autoprice/internal/app"
	"autoprice/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	_, file, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(file), "..", "..")

	return &config.Config{
		Extraction: config.ExtractionConfig{MaxRetries: 3},
		Predictor: config.PredictorConfig{
			Kind:         "linear",
			ArtifactPath: filepath.Join(root, "models", "price_linear_v0.json"),
		},
		RateLimit: config.RateLimitConfig{PerDay: 30},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		DB: config.DBConfig{
			Driver: "sqlite",
			Path:   filepath.Join(t.TempDir(), "history.db"),
		},
	}
}

func TestNewRegistry_Providers(t *testing.T) {
	reg := app.NewRegistry(context.Background())
	assert.Equal(t, []string{"claude", "gemini", "openai"}, reg.Names())
}

func TestBuild_WithoutHistory(t *testing.T) {
	a, err := app.Build(context.Background(), testConfig(t), zap.NewNop(), app.Options{})
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.DB)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", http.NoBody))
	assert.JSONEq(t, `{"status":"healthy","model_loaded":true,"llm_configured":false}`, w.Body.String())

	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/predictions", http.NoBody))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBuild_WithSQLiteHistory(t *testing.T) {
	cfg := testConfig(t)
	cfg.History = config.HistoryConfig{Enabled: true, AutoMigrate: true}

	a, err := app.Build(context.Background(), cfg, zap.NewNop(), app.Options{})
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.DB)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/predictions", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[],"meta":{"total":0,"offset":0,"limit":20}}`, w.Body.String())

	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBuild_BadArtifact(t *testing.T) {
	cfg := testConfig(t)
	cfg.Predictor.ArtifactPath = filepath.Join(t.TempDir(), "missing.json")

	_, err := app.Build(context.Background(), cfg, zap.NewNop(), app.Options{})
	assert.ErrorContains(t, err, "loading price model")
}
