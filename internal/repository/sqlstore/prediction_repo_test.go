package sqlstore_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoprice/internal/config"
	"autoprice/internal/domain"
	"autoprice/internal/port"
	"autoprice/internal/repository/sqlstore"
)

func setupRepo(t *testing.T) (port.PredictionRepository, *sqlx.DB) {
	t.Helper()
	cfg := &config.DBConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "history.db")}

	require.NoError(t, sqlstore.Migrate(cfg))
	// Applying twice is a no-op.
	require.NoError(t, sqlstore.Migrate(cfg))

	db, err := sqlstore.NewDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlstore.NewPredictionRepo(db), db
}

func newPrediction(n int) *domain.Prediction {
	return &domain.Prediction{
		ID:          uuid.MustParse(fmt.Sprintf("00000000-0000-7000-8000-%012d", n)),
		Description: fmt.Sprintf("car %d", n),
		Features:    json.RawMessage(`{"year":2018,"manufacturer":"Honda"}`),
		Warnings:    []string{"Using default driver reviews count"},
		Price:       12300,
		PriceMin:    11100,
		PriceMax:    13600,
		Confidence:  0.9,
		Narrative:   "Hello!",
		ModelUsed:   "price_linear_v0",
		Attempts:    2,
	}
}

func TestPredictionRepo_CreateAndGet(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	p := newPrediction(1)

	require.NoError(t, repo.Create(ctx, p))
	assert.False(t, p.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "car 1", got.Description)
	assert.JSONEq(t, `{"year":2018,"manufacturer":"Honda"}`, string(got.Features))
	assert.Equal(t, []string{"Using default driver reviews count"}, got.Warnings)
	assert.Equal(t, 12300.0, got.Price)
	assert.Equal(t, 11100.0, got.PriceMin)
	assert.Equal(t, 13600.0, got.PriceMax)
	assert.Equal(t, 0.9, got.Confidence)
	assert.Equal(t, "Hello!", got.Narrative)
	assert.Equal(t, "price_linear_v0", got.ModelUsed)
	assert.Equal(t, 2, got.Attempts)
	assert.WithinDuration(t, p.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestPredictionRepo_NilWarningsStoredAsEmpty(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	p := newPrediction(1)
	p.Warnings = nil

	require.NoError(t, repo.Create(ctx, p))
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Warnings)
}

func TestPredictionRepo_GetByIDNotFound(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPredictionRepo_List(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Create(ctx, newPrediction(i)))
	}

	page, total, err := repo.List(ctx, 1, 2)

	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "car 4", page[0].Description)
	assert.Equal(t, "car 3", page[1].Description)
}

func TestPredictionRepo_ListAfterWalksInIDOrder(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	for _, n := range []int{3, 1, 2} {
		require.NoError(t, repo.Create(ctx, newPrediction(n)))
	}

	first, err := repo.ListAfter(ctx, uuid.Nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "car 1", first[0].Description)
	assert.Equal(t, "car 2", first[1].Description)

	rest, err := repo.ListAfter(ctx, first[1].ID, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "car 3", rest[0].Description)

	none, err := repo.ListAfter(ctx, rest[0].ID, 2)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPredictionRepo_UpdatePrice(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	p := newPrediction(1)
	require.NoError(t, repo.Create(ctx, p))

	p.Price, p.PriceMin, p.PriceMax = 22900, 20600, 25100
	p.ModelUsed = "price_linear_v1"
	require.NoError(t, repo.UpdatePrice(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 22900.0, got.Price)
	assert.Equal(t, 20600.0, got.PriceMin)
	assert.Equal(t, 25100.0, got.PriceMax)
	assert.Equal(t, "price_linear_v1", got.ModelUsed)
	assert.Equal(t, "car 1", got.Description)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	assert.ErrorIs(t, repo.UpdatePrice(ctx, newPrediction(99)), domain.ErrNotFound)
}

func TestPredictionRepo_Ping(t *testing.T) {
	repo, db := setupRepo(t)

	require.NoError(t, repo.Ping(context.Background()))
	require.NoError(t, db.Close())
	assert.Error(t, repo.Ping(context.Background()))
}

func TestNewDB_UnsupportedDriver(t *testing.T) {
	_, err := sqlstore.NewDB(&config.DBConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")

	_, err = sqlstore.Migrations("oracle")
	assert.Error(t, err)
}

func TestMigrations_EmbeddedForEachDriver(t *testing.T) {
	for _, driver := range []string{"postgres", "sqlite"} {
		files, err := sqlstore.Migrations(driver)
		require.NoError(t, err)

		data, err := fs.ReadFile(files, "000001_create_predictions.up.sql")
		require.NoError(t, err)
		assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS predictions")
	}
}
