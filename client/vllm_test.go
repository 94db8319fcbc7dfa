package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer mimics the subset of the vLLM OpenAI-compatible API the
// client touches.
func fakeServer(t *testing.T, modelListHits *int64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(modelListHits, 1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"id": "meta-llama/Llama-3.1-8B-Instruct", "object": "model"},
				{"id": "secondary-model", "object": "model"},
			},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req["model"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  req["model"],
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": "hello from the model"},
					"finish_reason": "stop",
				},
			},
		})
	})

	return httptest.NewServer(mux)
}

func TestGenerate(t *testing.T) {
	var hits int64
	srv := fakeServer(t, &hits)
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Timeout: 5 * time.Second})

	text, err := c.Generate(context.Background(), "Say hello.", 10)
	require.NoError(t, err)
	assert.Equal(t, "hello from the model", text)
}

func TestDefaultModelResolvedOnce(t *testing.T) {
	var hits int64
	srv := fakeServer(t, &hits)
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})

	_, err := c.Generate(context.Background(), "one", 5)
	require.NoError(t, err)
	_, err = c.Generate(context.Background(), "two", 5)
	require.NoError(t, err)

	assert.Equal(t, int64(1), atomic.LoadInt64(&hits), "model list must be fetched once and cached")
	assert.Equal(t, "meta-llama/Llama-3.1-8B-Instruct", c.Model())
}

func TestConfiguredModelSkipsResolution(t *testing.T) {
	var hits int64
	srv := fakeServer(t, &hits)
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Model: "pinned-model"})

	_, err := c.Generate(context.Background(), "one", 5)
	require.NoError(t, err)

	assert.Equal(t, int64(0), atomic.LoadInt64(&hits))
	assert.Equal(t, "pinned-model", c.Model())
}

func TestModels(t *testing.T) {
	var hits int64
	srv := fakeServer(t, &hits)
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})

	models, err := c.Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"meta-llama/Llama-3.1-8B-Instruct", "secondary-model"}, models)
}

func TestHealthCheck(t *testing.T) {
	var hits int64
	srv := fakeServer(t, &hits)
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	assert.NoError(t, c.HealthCheck(context.Background()))
}

func TestHealthCheckFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	err := c.HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestGenerateEmptyModelList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), "p", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no models")
}

func TestGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Model: "m"})
	_, err := c.Generate(context.Background(), "p", 5)
	assert.Error(t, err)
}

func TestEndpointTrimsTrailingSlash(t *testing.T) {
	c := New(Config{BaseURL: "http://localhost:8000/"})
	assert.Equal(t, "http://localhost:8000", c.Endpoint())
}
