package s3_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoprice/internal/config"
	"autoprice/internal/port"
	"autoprice/internal/storage/s3"
)

// fakeS3 serves a single object with path-style addressing.
func fakeS3(t *testing.T, bucket, key string, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/"+bucket+"/"+key {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		w.Header().Set("Content-Range", fmt.Sprintf("bytes 0-%d/%d", len(body)-1, len(body)))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newStore(t *testing.T, endpoint string) port.ObjectStorage {
	t.Helper()
	store, err := s3.NewArtifactStore(context.Background(), &config.S3Config{
		Region:    "us-east-1",
		Endpoint:  endpoint,
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)
	return store
}

func TestArtifactStore_Download(t *testing.T) {
	artifact := []byte(`{"name":"price_linear_v0","features":[]}`)
	srv := fakeS3(t, "models", "prod/price_linear_v0.json", artifact)

	data, err := newStore(t, srv.URL).Download(context.Background(), "models", "prod/price_linear_v0.json")

	require.NoError(t, err)
	assert.Equal(t, artifact, data)
}

func TestArtifactStore_DownloadMissingKey(t *testing.T) {
	srv := fakeS3(t, "models", "prod/price_linear_v0.json", []byte("{}"))

	_, err := newStore(t, srv.URL).Download(context.Background(), "models", "prod/other.json")

	assert.ErrorContains(t, err, "s3 download")
}
