package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/echo":
			var in map[string]any
			_ = json.NewDecoder(r.Body).Decode(&in)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"auth":   r.Header.Get("Authorization"),
				"trace":  r.Header.Get("X-Trace"),
				"ctype":  r.Header.Get("Content-Type"),
				"method": r.Method,
				"in":     in,
			})
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "forbidden", http.StatusForbidden)
		}
	}))
	defer ts.Close()

	c, err := NewWithBaseURL(ts.URL+"/", 0)
	require.NoError(t, err)
	c.DefaultHeaders = map[string]string{"Authorization": "Bearer a", "X-Trace": "default", "": "skip"}

	var out map[string]any
	err = c.DoJSON(context.Background(), http.MethodPost, "echo", map[string]string{"X-Trace": "req"}, map[string]any{"v": 1}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Bearer a", out["auth"])
	assert.Equal(t, "req", out["trace"], "per-request headers win")
	assert.Equal(t, "application/json", out["ctype"])
	assert.Equal(t, map[string]any{"v": 1.0}, out["in"])

	require.NoError(t, c.DoJSON(context.Background(), http.MethodGet, ts.URL+"/empty", nil, nil, &out))

	err = c.DoJSON(context.Background(), http.MethodGet, "/nope", nil, nil, nil)
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "forbidden", he.Body)
	assert.Equal(t, http.StatusForbidden, StatusCode(fmt.Errorf("wrapped: %w", err)))
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), ErrForbidden)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "http 403: forbidden", err.Error())
	assert.Zero(t, StatusCode(nil))
}

func TestDoJSON_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	c, err := NewWithBaseURL(ts.URL, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = c.DoJSON(ctx, http.MethodGet, "/slow", nil, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, StatusCode(err))
}

func TestDoJSON_Errors(t *testing.T) {
	var nilClient *Client
	assert.ErrorIs(t, nilClient.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil), ErrNilClient)

	c := New(0)
	assert.Equal(t, DefaultTimeout, c.HTTP.Timeout)
	assert.ErrorContains(t, c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil), "requires BaseURL")
	assert.ErrorContains(t, c.DoJSON(context.Background(), http.MethodGet, " ", nil, nil, nil), "empty url")

	_, err := NewWithBaseURL("not a url", 0)
	assert.Error(t, err)
}
