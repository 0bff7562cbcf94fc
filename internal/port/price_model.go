package port

import "context"

// PriceModel is a trained regressor that maps an ordered feature vector to a price.
// names and values are parallel and follow the feature schema order.
type PriceModel interface {
	Predict(ctx context.Context, names []string, values []any) (float64, error)
	Name() string
}
