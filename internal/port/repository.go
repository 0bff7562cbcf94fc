package port

import (
	"context"

	"github.com/google/uuid"

	"autoprice/internal/domain"
)

// PredictionRepository defines the contract for estimate history persistence.
type PredictionRepository interface {
	Create(ctx context.Context, p *domain.Prediction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Prediction, error)
	List(ctx context.Context, offset, limit int) ([]domain.Prediction, int, error)
	ListAfter(ctx context.Context, after uuid.UUID, limit int) ([]domain.Prediction, error)
	UpdatePrice(ctx context.Context, p *domain.Prediction) error
	Ping(ctx context.Context) error
}
