package gatekeeper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"CharacterChat/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(ts *httptest.Server) *Client {
	return New(config.GatekeeperConfig{BaseURL: ts.URL, APIKey: "app-key"})
}

func TestIdentify(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"user_1","username":"ivan"}`))
	}))
	defer ts.Close()

	id, err := newTestClient(ts).Identify(context.Background(), "user-token")

	require.NoError(t, err)
	assert.Equal(t, "user_1", id)
}

func TestIdentifyEmptyToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("запрос не должен отправляться")
	}))
	defer ts.Close()

	_, err := newTestClient(ts).Identify(context.Background(), "  ")
	assert.Error(t, err)
}

func TestIdentifyNoUserID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts).Identify(context.Background(), "user-token")
	assert.Error(t, err)
}

func TestCheckAccess(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "allowed", body: `{"has_access":true}`, want: true},
		{name: "denied", body: `{"has_access":false}`, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/experiences/exp_123/users/user_1/access", r.URL.Path)
				assert.Equal(t, "Bearer app-key", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			ok, err := newTestClient(ts).CheckAccess(context.Background(), "exp_123", "user_1")

			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCheckAccessErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer ts.Close()

	_, err := newTestClient(ts).CheckAccess(context.Background(), "exp_123", "user_1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=503")
	assert.Contains(t, err.Error(), "maintenance")
}

func TestUserNameFallsBackToUsername(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/user_1", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"user_1","username":"ivan"}`))
	}))
	defer ts.Close()

	p, err := newTestClient(ts).User(context.Background(), "user_1")

	require.NoError(t, err)
	assert.Equal(t, "ivan", p.Name)
}
