package predictor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"autoprice/internal/config"
	"autoprice/internal/port"
	"autoprice/internal/schema"
)

// LoadArtifact reads a model artifact from a local path or an s3://bucket/key URL.
func LoadArtifact(ctx context.Context, path string, store port.ObjectStorage) ([]byte, error) {
	if rest, ok := strings.CutPrefix(path, "s3://"); ok {
		bucket, key, found := strings.Cut(rest, "/")
		if !found || bucket == "" || key == "" {
			return nil, fmt.Errorf("invalid artifact url %q: expected s3://bucket/key", path)
		}
		if store == nil {
			return nil, fmt.Errorf("artifact %q requires object storage", path)
		}
		data, err := store.Download(ctx, bucket, key)
		if err != nil {
			return nil, fmt.Errorf("downloading artifact %s: %w", path, err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	return data, nil
}

// New builds the configured price model. Failures here are fatal at startup.
func New(ctx context.Context, cfg config.PredictorConfig, s *schema.Schema, store port.ObjectStorage) (port.PriceModel, error) {
	switch cfg.Kind {
	case "linear":
		data, err := LoadArtifact(ctx, cfg.ArtifactPath, store)
		if err != nil {
			return nil, err
		}
		return LoadLinear(data, s.Names())
	case "remote":
		return NewRemoteModel(cfg.Endpoint, time.Duration(cfg.TimeoutSecs)*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown predictor kind: %s", cfg.Kind)
	}
}
