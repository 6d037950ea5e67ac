package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRESTClient(t *testing.T, handler http.HandlerFunc) *FirebaseAuthClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &FirebaseAuthClient{
		apiKey:      "test-key",
		httpClient:  srv.Client(),
		identityURL: srv.URL,
		tokenURL:    srv.URL,
	}
}

func TestSignIn(t *testing.T) {
	client := newRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "maker@example.com", body["email"])
		assert.Equal(t, true, body["returnSecureToken"])

		json.NewEncoder(w).Encode(map[string]string{
			"idToken":      "id-1",
			"refreshToken": "refresh-1",
			"localId":      "uid-1",
		})
	})

	uid, idToken, refreshToken, err := client.SignIn(context.Background(), "maker@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	assert.Equal(t, "id-1", idToken)
	assert.Equal(t, "refresh-1", refreshToken)
}

func TestSignInRejected(t *testing.T) {
	client := newRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"INVALID_PASSWORD"}}`))
	})

	_, _, _, err := client.SignIn(context.Background(), "maker@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	assert.Contains(t, err.Error(), "INVALID_PASSWORD")
}

func TestRefresh(t *testing.T) {
	client := newRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-1", r.PostForm.Get("refresh_token"))

		json.NewEncoder(w).Encode(map[string]string{
			"id_token":      "id-2",
			"refresh_token": "refresh-2",
			"user_id":       "uid-1",
		})
	})

	uid, idToken, refreshToken, err := client.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	assert.Equal(t, "id-2", idToken)
	assert.Equal(t, "refresh-2", refreshToken)
}

func TestRefreshServerError(t *testing.T) {
	client := newRESTClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, _, _, err := client.Refresh(context.Background(), "refresh-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
}
