package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"autoprice/internal/domain"
	"autoprice/internal/port"
)

const predictionColumns = `id, description, features, warnings, price, price_min, price_max,
	confidence, narrative, model_used, extraction_attempts, created_at, updated_at`

// predictionRow stores JSON columns as text so the same scan works on both dialects.
type predictionRow struct {
	ID          string    `db:"id"`
	Description string    `db:"description"`
	Features    string    `db:"features"`
	Warnings    string    `db:"warnings"`
	Price       float64   `db:"price"`
	PriceMin    float64   `db:"price_min"`
	PriceMax    float64   `db:"price_max"`
	Confidence  float64   `db:"confidence"`
	Narrative   string    `db:"narrative"`
	ModelUsed   string    `db:"model_used"`
	Attempts    int       `db:"extraction_attempts"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *predictionRow) toDomain() (*domain.Prediction, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing id %q: %w", r.ID, err)
	}
	var warnings []string
	if err := json.Unmarshal([]byte(r.Warnings), &warnings); err != nil {
		return nil, fmt.Errorf("decoding warnings of %s: %w", r.ID, err)
	}
	if warnings == nil {
		warnings = []string{}
	}
	return &domain.Prediction{
		ID:          id,
		Description: r.Description,
		Features:    json.RawMessage(r.Features),
		Warnings:    warnings,
		Price:       r.Price,
		PriceMin:    r.PriceMin,
		PriceMax:    r.PriceMax,
		Confidence:  r.Confidence,
		Narrative:   r.Narrative,
		ModelUsed:   r.ModelUsed,
		Attempts:    r.Attempts,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}, nil
}

type predictionRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewPredictionRepo creates a new SQL-backed PredictionRepository.
func NewPredictionRepo(db *sqlx.DB) port.PredictionRepository {
	return &predictionRepo{db: db, now: time.Now}
}

func (r *predictionRepo) Create(ctx context.Context, p *domain.Prediction) error {
	warnings := p.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("predictionRepo.Create marshal warnings: %w", err)
	}

	now := r.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err = r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO predictions (`+predictionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID.String(), p.Description, string(p.Features), string(warningsJSON),
		p.Price, p.PriceMin, p.PriceMax, p.Confidence,
		p.Narrative, p.ModelUsed, p.Attempts, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("predictionRepo.Create: %w", err)
	}
	return nil
}

func (r *predictionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Prediction, error) {
	var row predictionRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(
		`SELECT `+predictionColumns+` FROM predictions WHERE id = ?`), id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("predictionRepo.GetByID: %w", err)
	}
	return row.toDomain()
}

func (r *predictionRepo) List(ctx context.Context, offset, limit int) ([]domain.Prediction, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM predictions`); err != nil {
		return nil, 0, fmt.Errorf("predictionRepo.List count: %w", err)
	}

	var rows []predictionRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(
		`SELECT `+predictionColumns+` FROM predictions
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("predictionRepo.List: %w", err)
	}
	preds, err := toDomainSlice(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("predictionRepo.List: %w", err)
	}
	return preds, total, nil
}

func (r *predictionRepo) ListAfter(ctx context.Context, after uuid.UUID, limit int) ([]domain.Prediction, error) {
	var rows []predictionRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(
		`SELECT `+predictionColumns+` FROM predictions
		 WHERE id > ?
		 ORDER BY id
		 LIMIT ?`), after.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("predictionRepo.ListAfter: %w", err)
	}
	preds, err := toDomainSlice(rows)
	if err != nil {
		return nil, fmt.Errorf("predictionRepo.ListAfter: %w", err)
	}
	return preds, nil
}

func (r *predictionRepo) UpdatePrice(ctx context.Context, p *domain.Prediction) error {
	p.UpdatedAt = r.now().UTC()
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE predictions
		 SET price = ?, price_min = ?, price_max = ?, confidence = ?, model_used = ?, updated_at = ?
		 WHERE id = ?`),
		p.Price, p.PriceMin, p.PriceMax, p.Confidence, p.ModelUsed, p.UpdatedAt, p.ID.String())
	if err != nil {
		return fmt.Errorf("predictionRepo.UpdatePrice: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("predictionRepo.UpdatePrice rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *predictionRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func toDomainSlice(rows []predictionRow) ([]domain.Prediction, error) {
	preds := make([]domain.Prediction, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		preds = append(preds, *p)
	}
	return preds, nil
}
