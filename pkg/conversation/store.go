package conversation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"doc-assistant-gw/pkg/protocol"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one finalized conversation entry. Immutable once appended; the
// in-progress assistant draft lives inside the session machine until
// completion.
type Message struct {
	Id        uuid.UUID
	Role      Role
	Text      string
	Sources   []protocol.Source
	CreatedAt time.Time
}

// CatalogEntry describes a past conversation available for resumption.
type CatalogEntry struct {
	Id        string
	Title     string
	CreatedAt time.Time
}

// HistoryFetcher loads the full message history of an existing conversation
// from the backend. External collaborator, injected.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, conversationId string) ([]Message, error)
}

// Store tracks conversation identity and ordered message history across
// sessions, plus a catalog of past conversations. Message history is
// append-only during normal operation; it is mutated only by completion,
// new-conversation reset, or explicit deletion.
type Store struct {
	mu             sync.RWMutex
	conversationId string
	messages       []Message

	catalog *cache.Cache
	fetcher HistoryFetcher
}

const titleMaxLen = 50

func NewStore(fetcher HistoryFetcher) *Store {
	return &Store{
		catalog: cache.New(cache.NoExpiration, 10*time.Minute),
		fetcher: fetcher,
	}
}

// ConversationId returns the backend-assigned id, or "" before the first
// completed exchange.
func (s *Store) ConversationId() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversationId
}

// SetConversationId records the id assigned by the backend on the first
// response. The id is immutable for the conversation: later calls with a
// different id are ignored.
func (s *Store) SetConversationId(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conversationId != "" {
		return
	}
	s.conversationId = id
	s.catalog.Set(id, CatalogEntry{
		Id:        id,
		Title:     deriveTitle(s.messages),
		CreatedAt: time.Now(),
	}, cache.NoExpiration)
}

// AppendMessage appends a finalized message to the current conversation.
func (s *Store) AppendMessage(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of the current history.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// StartNew clears the current conversation id and messages. The persisted
// catalog entry of the previous conversation is kept.
func (s *Store) StartNew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationId = ""
	s.messages = nil
}

// Select loads the full history of an existing conversation and makes it
// current.
func (s *Store) Select(ctx context.Context, id string) error {
	if _, found := s.catalog.Get(id); !found {
		return fmt.Errorf("conversation %s not found", id)
	}

	history, err := s.fetcher.FetchHistory(ctx, id)
	if err != nil {
		return fmt.Errorf("load conversation history: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationId = id
	s.messages = history
	return nil
}

// Delete removes a conversation from the catalog. If it is the current one,
// the current history is cleared as well.
func (s *Store) Delete(id string) {
	s.catalog.Delete(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conversationId == id {
		s.conversationId = ""
		s.messages = nil
	}
}

// Catalog lists past conversations, newest first.
func (s *Store) Catalog() []CatalogEntry {
	items := s.catalog.Items()
	entries := make([]CatalogEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, item.Object.(CatalogEntry))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}

// OriginatingQuery returns the user query that produced the given assistant
// message: the text of the nearest user message preceding it.
func (s *Store) OriginatingQuery(messageId uuid.UUID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := -1
	for i, msg := range s.messages {
		if msg.Id == messageId {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", false
	}

	for i := idx - 1; i >= 0; i-- {
		if s.messages[i].Role == RoleUser {
			return s.messages[i].Text, true
		}
	}
	return "", false
}

func deriveTitle(messages []Message) string {
	for _, msg := range messages {
		if msg.Role != RoleUser {
			continue
		}
		title := msg.Text
		if len(title) > titleMaxLen {
			title = title[:titleMaxLen]
		}
		return title
	}
	return "Unnamed conversation"
}
