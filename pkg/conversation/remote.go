package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"doc-assistant-gw/pkg/auth"
	"doc-assistant-gw/pkg/protocol"

	"github.com/google/uuid"
)

// HTTPFetcher loads conversation history from the answering backend. One
// fetcher per user, carrying that user's bearer token.
type HTTPFetcher struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

var _ HistoryFetcher = &HTTPFetcher{}

func NewHTTPFetcher(baseURL, token string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type historyMessage struct {
	Id        string            `json:"id"`
	Role      string            `json:"role"`
	Text      string            `json:"text"`
	Sources   []protocol.Source `json:"sources,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type historyPayload struct {
	Messages []historyMessage `json:"messages"`
}

func (f *HTTPFetcher) FetchHistory(ctx context.Context, conversationId string) ([]Message, error) {
	if f.Token == "" {
		return nil, auth.ErrRequired
	}

	url := fmt.Sprintf("%s/api/conversations/%s", f.BaseURL, conversationId)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.Token)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history backend: status %d", resp.StatusCode)
	}

	var payload historyPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	messages := make([]Message, 0, len(payload.Messages))
	for _, m := range payload.Messages {
		id, err := uuid.Parse(m.Id)
		if err != nil {
			// Backend ids we cannot parse still deserve a stable local id.
			id = uuid.New()
		}
		messages = append(messages, Message{
			Id:        id,
			Role:      Role(m.Role),
			Text:      m.Text,
			Sources:   m.Sources,
			CreatedAt: m.CreatedAt,
		})
	}
	return messages, nil
}
