package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Request is the wire payload sent to the question-answering backend.
type Request struct {
	Message             string       `json:"message"`
	ConversationId      string       `json:"conversation_id,omitempty"`
	UserId              string       `json:"user_id"`
	SearchMode          SearchMode   `json:"search_mode"`
	SelectedDocumentIds []string     `json:"selected_document_ids,omitempty"`
	ModelConfig         *ModelConfig `json:"model_config,omitempty"`

	// Bearer credential, not serialized
	Token string `json:"-"`
}

type ModelConfig struct {
	Model string `json:"model"`
}

// Transport opens a long-lived answer stream for a query. The returned body
// carries newline-delimited frames and is owned by the caller.
type Transport interface {
	Open(ctx context.Context, req Request) (io.ReadCloser, error)
}

// HTTPTransport talks to the question-answering backend over chunked HTTP.
type HTTPTransport struct {
	BaseURL string
	Client  *http.Client
}

var _ Transport = &HTTPTransport{}

func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{
		BaseURL: baseURL,
		// No client timeout: the response body streams for the lifetime of
		// the session. Cancellation goes through the request context.
		Client: &http.Client{},
	}
}

func (t *HTTPTransport) Open(ctx context.Context, req Request) (io.ReadCloser, error) {
	if req.Token == "" {
		return nil, ErrAuthRequired
	}

	payloadBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	url := t.BaseURL + "/api/chat/query"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+req.Token)

	resp, err := t.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("open answer stream: %w", err)
	}

	// Non-2xx before streaming begins is an immediate failure
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("query backend: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	return resp.Body, nil
}
