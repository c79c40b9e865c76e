package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inisoye/halver-sub001/internal/store"
)

const userDetailsBody = `{
	"uuid": "9f9c47fd-8b92-4a4d-9f5e-0d7a3c1f2b11",
	"firstName": "Ade",
	"lastName": "Ojo",
	"fullName": "Ade Ojo",
	"email": "ade@example.com",
	"username": "adeojo",
	"phone": "+2348012345678",
	"profileImageURL": "",
	"defaultCard": "",
	"dateJoined": "2024-01-15T10:00:00Z",
	"lastLogin": null
}`

func TestAuthorizationHeaderAttached(t *testing.T) {
	var seen string
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, userDetailsBody)
	})
	client, _, _, _ := newTestClient(t, backend)
	signIn(t, client, "sekrit")

	_, err := client.GetUserDetails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Token sekrit", seen)
}

func TestTokenlessEndpointOmitsAuthorization(t *testing.T) {
	var seen string
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, `{"key":"tok"}`)
	})
	client, _, _, _ := newTestClient(t, backend)
	// Even with a token attached, pre-auth endpoints must not send it.
	signIn(t, client, "old-token")

	err := client.Login(context.Background(), LoginPayload{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestNewClientAdoptsPersistedToken(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	st, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	// A fresh store starts signed out.
	client, _, _ := newTestClientOver(t, backend, st)
	assert.False(t, client.TokenSet())

	// A client built over a store holding a token is authenticated from
	// the start.
	require.NoError(t, st.SetToken("persisted"))
	clientWithToken, _, _ := newTestClientOver(t, backend, st)
	assert.True(t, clientWithToken.TokenSet())
}

func TestAPIErrorCarriesStatusAndBody(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"detail":"boom"}`)
	})
	client, _, _, _ := newTestClient(t, backend)
	signIn(t, client, "tok")

	_, err := client.GetBill(context.Background(), "abc")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.JSONEq(t, `{"detail":"boom"}`, string(apiErr.Body))
}

func TestIdempotencyKeyOnMutationsOnly(t *testing.T) {
	keys := make(map[string]string)
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		keys[r.Method] = r.Header.Get("Idempotency-Key")
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, `[]`)
		default:
			writeJSON(w, http.StatusOK, `{}`)
		}
	})
	client, _, _, _ := newTestClient(t, backend)
	signIn(t, client, "tok")

	_, err := client.GetBanks(context.Background())
	require.NoError(t, err)
	require.NoError(t, client.SetDefaultCard(context.Background(), "card-1"))

	assert.Empty(t, keys[http.MethodGet])
	_, parseErr := uuid.Parse(keys[http.MethodPatch])
	assert.NoError(t, parseErr, "mutations carry a UUID idempotency key")
}
