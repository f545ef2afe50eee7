// internal/common/http/client_test.go
package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "jobboard-portal/internal/common/errors"
	"jobboard-portal/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		BaseURL: server.URL + "/",
		Timeout: 2 * time.Second,
	}, logger.NewTestLogger(t))
	return client, server
}

func writeEnvelope(w http.ResponseWriter, status int, env map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestClient_Do_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/jobs", r.URL.Path)
		assert.Equal(t, "nurse", r.URL.Query().Get("search"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    []map[string]interface{}{{"id": 1, "title": "Nurse"}},
		})
	})

	ctx := WithToken(context.Background(), "tok-1")
	env, err := client.Do(ctx, Request{
		Method: http.MethodGet,
		Route:  "/jobs",
		Path:   "/jobs",
		Query:  url.Values{"search": []string{"nurse"}},
	})
	require.NoError(t, err)
	require.True(t, env.Success)
	assert.True(t, env.HasData())

	var jobs []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, env.Decode(&jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "Nurse", jobs[0].Title)
}

func TestClient_Do_SendsJSONBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"accepted"}`, string(raw))

		writeEnvelope(w, http.StatusOK, map[string]interface{}{"success": true})
	})

	env, err := client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Route:  "/jobs/user-applied/{id}",
		Path:   "/jobs/user-applied/7",
		Body:   map[string]string{"status": "accepted"},
	})
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.False(t, env.HasData())
}

func TestClient_Do_RejectedEnvelopeIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Job is no longer active",
		})
	})

	env, err := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/jobs/3/apply"})
	require.NoError(t, err)
	assert.False(t, env.Success)
	assert.Equal(t, "Job is no longer active", env.Message)
}

func TestClient_Do_UnauthorizedEnvelopeIsReturned(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"message": "Unauthorized",
		})
	})

	env, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/profile"})
	require.NoError(t, err)
	assert.Equal(t, "Unauthorized", env.Message)
}

// ==========================
// Transport Failure Tests
// ==========================

func TestClient_Do_UndecodableBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	env, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/jobs"})
	require.Error(t, err)
	assert.Nil(t, env)
	assert.Equal(t, perrors.ErrCodeTransportFailure, perrors.CodeOf(err))
}

func TestClient_Do_ServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewClient(Config{BaseURL: baseURL, Timeout: time.Second}, logger.NewNoOpLogger())
	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/jobs"})
	require.Error(t, err)
	assert.True(t, perrors.IsCode(err, perrors.ErrCodeTransportFailure))
}

func TestClient_Do_Timeout(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
		writeEnvelope(w, http.StatusOK, map[string]interface{}{"success": true})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Do(ctx, Request{Method: http.MethodGet, Path: "/jobs"})
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeTransportFailure, perrors.CodeOf(err))
}

func TestClient_Do_RateLimiterHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]interface{}{"success": true})
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:           server.URL,
		RequestsPerSecond: 0.001,
		Burst:             1,
	}, logger.NewNoOpLogger())

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/jobs"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Do(ctx, Request{Method: http.MethodGet, Path: "/jobs"})
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeTransportFailure, perrors.CodeOf(err))
}

func TestEnvelope_HasData(t *testing.T) {
	tests := []struct {
		name string
		data string
		want bool
	}{
		{"empty", "", false},
		{"null", "null", false},
		{"padded null", "  null ", false},
		{"object", `{"id":1}`, true},
		{"empty list", `[]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := &Envelope{Success: true, Data: json.RawMessage(tt.data)}
			assert.Equal(t, tt.want, env.HasData())
		})
	}

	var nilEnv *Envelope
	assert.False(t, nilEnv.HasData())
}

func TestTokenFrom_Empty(t *testing.T) {
	assert.Equal(t, "", TokenFrom(context.Background()))
	assert.Equal(t, "abc", TokenFrom(WithToken(context.Background(), "abc")))
}
