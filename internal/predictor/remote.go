package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteModel implements port.PriceModel by calling a model server over HTTP.
type RemoteModel struct {
	endpoint string
	client   *http.Client
}

type remoteRequest struct {
	Columns []string `json:"columns"`
	Values  []any    `json:"values"`
}

type remoteResponse struct {
	Price *float64 `json:"price"`
}

// NewRemoteModel creates a client for a model server endpoint.
func NewRemoteModel(endpoint string, timeout time.Duration) *RemoteModel {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &RemoteModel{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (m *RemoteModel) Name() string {
	return "remote:" + m.endpoint
}

func (m *RemoteModel) Predict(ctx context.Context, names []string, values []any) (float64, error) {
	data, err := json.Marshal(remoteRequest{Columns: names, Values: values})
	if err != nil {
		return 0, fmt.Errorf("marshal json body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("calling model server: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return 0, fmt.Errorf("model server error (status %d): %s", res.StatusCode, string(body))
	}

	var out remoteResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decoding model server response: %w", err)
	}
	if out.Price == nil {
		return 0, fmt.Errorf("model server response has no price")
	}
	return *out.Price, nil
}
