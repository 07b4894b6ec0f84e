package transform

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteTransformSuccess(t *testing.T) {
	input := []byte("raw-image-bytes")
	output := []byte("stylized-image-bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/candy", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			Inputs string `json:"inputs"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		decoded, err := base64.StdEncoding.DecodeString(req.Inputs)
		require.NoError(t, err)
		assert.Equal(t, input, decoded)

		_, _ = w.Write(output)
	}))
	defer srv.Close()

	g := NewRemoteGateway(RemoteOptions{
		BaseURL: srv.URL,
		Token:   "secret-token",
		Timeout: 5 * time.Second,
	})

	got, err := g.Transform(context.Background(), input, "candy")
	require.NoError(t, err)
	assert.Equal(t, output, got)
}

func TestRemoteTransformErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "model is loading"})
	}))
	defer srv.Close()

	g := NewRemoteGateway(RemoteOptions{BaseURL: srv.URL, Timeout: 5 * time.Second})

	_, err := g.Transform(context.Background(), []byte("img"), "udnie")
	require.Error(t, err)

	var terr *Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "udnie", terr.Style)
	assert.Equal(t, "model is loading", terr.Reason)
	assert.Equal(t, "TRANSFORM_ERROR", terr.Code())
}

func TestRemoteTransformNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewRemoteGateway(RemoteOptions{BaseURL: srv.URL, Timeout: 5 * time.Second})

	_, err := g.Transform(context.Background(), []byte("img"), "mosaic")
	require.Error(t, err)

	var terr *Error
	require.True(t, errors.As(err, &terr))
	assert.Contains(t, terr.Reason, "502")
}

func TestRemoteTransformSingleAttempt(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewRemoteGateway(RemoteOptions{BaseURL: srv.URL, Timeout: 5 * time.Second})

	_, err := g.Transform(context.Background(), []byte("img"), "candy")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRemoteTransformEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := NewRemoteGateway(RemoteOptions{BaseURL: srv.URL, Timeout: 5 * time.Second})

	_, err := g.Transform(context.Background(), []byte("img"), "candy")
	require.Error(t, err)
}

func TestRemoteTransformContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	g := NewRemoteGateway(RemoteOptions{BaseURL: srv.URL, Timeout: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := g.Transform(ctx, []byte("img"), "candy")
	require.Error(t, err)
}
