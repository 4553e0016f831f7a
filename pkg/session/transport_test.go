package session

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportOpen(t *testing.T) {
	var gotBody Request
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"type\":\"start\"}\ndata: {\"type\":\"complete\",\"conversation_id\":\"c1\"}\n"))
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL)
	body, err := transport.Open(context.Background(), Request{
		Message:             "hello",
		UserId:              "u1",
		SearchMode:          ModeRephrase,
		SelectedDocumentIds: []string{"d1", "d2"},
		Token:               "secret",
	})
	require.NoError(t, err)
	defer body.Close()

	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "complete")

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "hello", gotBody.Message)
	assert.Equal(t, ModeRephrase, gotBody.SearchMode)
	assert.Equal(t, []string{"d1", "d2"}, gotBody.SelectedDocumentIds)
}

func TestHTTPTransportNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL)
	_, err := transport.Open(context.Background(), Request{Message: "q", UserId: "u1", Token: "tok"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPTransportMissingCredential(t *testing.T) {
	transport := NewHTTPTransport("http://unused")
	_, err := transport.Open(context.Background(), Request{Message: "q", UserId: "u1"})
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestHTTPTransportConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	transport := NewHTTPTransport(srv.URL)
	_, err := transport.Open(context.Background(), Request{Message: "q", UserId: "u1", Token: "tok"})
	assert.Error(t, err)
}
