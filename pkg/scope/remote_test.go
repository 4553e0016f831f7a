package scope

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"doc-assistant-gw/pkg/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStoreRoundTrip(t *testing.T) {
	var saved []string
	cleared := false

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/selection/u1", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		switch r.Method {
		case "GET":
			if saved == nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(selectionPayload{DocumentIds: saved})
		case "POST":
			var payload selectionPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			saved = payload.DocumentIds
		case "DELETE":
			saved = nil
			cleared = true
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL)
	creds := Credentials{Owner: "u1", Token: "tok"}
	ctx := context.Background()

	_, found, err := store.Load(ctx, creds)
	require.NoError(t, err)
	assert.False(t, found, "nothing persisted yet")

	require.NoError(t, store.Save(ctx, creds, []string{"d1", "d2"}))

	ids, found, err := store.Load(ctx, creds)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"d1", "d2"}, ids)

	require.NoError(t, store.Clear(ctx, creds))
	assert.True(t, cleared)
}

func TestHTTPStoreServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL)
	creds := Credentials{Owner: "u1", Token: "tok"}

	_, _, err := store.Load(context.Background(), creds)
	assert.Error(t, err)
	assert.Error(t, store.Save(context.Background(), creds, []string{"d1"}))
	assert.Error(t, store.Clear(context.Background(), creds))
}

func TestHTTPStoreMissingCredential(t *testing.T) {
	store := NewHTTPStore("http://unused")
	_, _, err := store.Load(context.Background(), Credentials{Owner: "u1"})
	assert.ErrorIs(t, err, auth.ErrRequired)
}
