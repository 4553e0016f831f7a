package scope

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"doc-assistant-gw/pkg/auth"
)

// HTTPStore persists selections against the remote document-scope service.
type HTTPStore struct {
	BaseURL string
	Client  *http.Client
}

var _ RemoteStore = &HTTPStore{}

func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type selectionPayload struct {
	DocumentIds []string `json:"document_ids"`
}

func (s *HTTPStore) Load(ctx context.Context, creds Credentials) ([]string, bool, error) {
	resp, err := s.do(ctx, creds, "GET", nil)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("scope store: status %d", resp.StatusCode)
	}

	var payload selectionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("decode selection: %w", err)
	}
	return payload.DocumentIds, true, nil
}

func (s *HTTPStore) Save(ctx context.Context, creds Credentials, documentIds []string) error {
	body, err := json.Marshal(selectionPayload{DocumentIds: documentIds})
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}

	resp, err := s.do(ctx, creds, "POST", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("scope store: status %d", resp.StatusCode)
	}
	return nil
}

func (s *HTTPStore) Clear(ctx context.Context, creds Credentials) error {
	resp, err := s.do(ctx, creds, "DELETE", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Nothing persisted yet counts as cleared
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("scope store: status %d", resp.StatusCode)
	}
	return nil
}

func (s *HTTPStore) do(ctx context.Context, creds Credentials, method string, body io.Reader) (*http.Response, error) {
	if creds.Token == "" {
		return nil, auth.ErrRequired
	}

	url := fmt.Sprintf("%s/api/selection/%s", s.BaseURL, creds.Owner)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scope store request failed: %w", err)
	}
	return resp, nil
}
