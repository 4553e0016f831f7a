package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeFetcher struct {
	history []Message
	err     error
	calls   int
}

func (f *fakeFetcher) FetchHistory(ctx context.Context, conversationId string) ([]Message, error) {
	f.calls++
	return f.history, f.err
}

func userMessage(text string) Message {
	return Message{Id: uuid.New(), Role: RoleUser, Text: text, CreatedAt: time.Now()}
}

func assistantMessage(text string) Message {
	return Message{Id: uuid.New(), Role: RoleAssistant, Text: text, CreatedAt: time.Now()}
}

func TestConversationIdImmutable(t *testing.T) {
	s := NewStore(&fakeFetcher{})

	s.AppendMessage(userMessage("what is the refund policy?"))
	s.SetConversationId("conv-1")
	s.SetConversationId("conv-2")

	if got := s.ConversationId(); got != "conv-1" {
		t.Errorf("ConversationId = %q, want conv-1", got)
	}
}

func TestStartNewKeepsCatalog(t *testing.T) {
	s := NewStore(&fakeFetcher{})

	s.AppendMessage(userMessage("hello"))
	s.SetConversationId("conv-1")
	s.StartNew()

	if got := s.ConversationId(); got != "" {
		t.Errorf("ConversationId after StartNew = %q, want empty", got)
	}
	if got := len(s.Messages()); got != 0 {
		t.Errorf("message count after StartNew = %d, want 0", got)
	}
	if got := len(s.Catalog()); got != 1 {
		t.Errorf("catalog count after StartNew = %d, want 1", got)
	}
}

func TestSelectLoadsHistory(t *testing.T) {
	fetcher := &fakeFetcher{history: []Message{userMessage("q"), assistantMessage("a")}}
	s := NewStore(fetcher)

	s.AppendMessage(userMessage("hello"))
	s.SetConversationId("conv-1")
	s.StartNew()

	if err := s.Select(context.Background(), "conv-1"); err != nil {
		t.Fatalf("Select error: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1", fetcher.calls)
	}
	if got := s.ConversationId(); got != "conv-1" {
		t.Errorf("ConversationId = %q, want conv-1", got)
	}
	if got := len(s.Messages()); got != 2 {
		t.Errorf("message count = %d, want 2", got)
	}
}

func TestSelectUnknownConversation(t *testing.T) {
	s := NewStore(&fakeFetcher{})
	if err := s.Select(context.Background(), "missing"); err == nil {
		t.Error("Select of unknown conversation should error")
	}
}

func TestSelectFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("backend down")}
	s := NewStore(fetcher)

	s.AppendMessage(userMessage("hello"))
	s.SetConversationId("conv-1")

	if err := s.Select(context.Background(), "conv-1"); err == nil {
		t.Error("Select should surface fetch failure")
	}
}

func TestDeleteCurrentConversation(t *testing.T) {
	s := NewStore(&fakeFetcher{})

	s.AppendMessage(userMessage("hello"))
	s.SetConversationId("conv-1")
	s.Delete("conv-1")

	if got := len(s.Catalog()); got != 0 {
		t.Errorf("catalog count = %d, want 0", got)
	}
	if got := s.ConversationId(); got != "" {
		t.Errorf("ConversationId = %q, want empty", got)
	}
	if got := len(s.Messages()); got != 0 {
		t.Errorf("message count = %d, want 0", got)
	}
}

func TestOriginatingQuery(t *testing.T) {
	s := NewStore(&fakeFetcher{})

	first := userMessage("first question")
	firstReply := assistantMessage("first answer")
	second := userMessage("second question")
	secondReply := assistantMessage("second answer")

	s.AppendMessage(first)
	s.AppendMessage(firstReply)
	s.AppendMessage(second)
	s.AppendMessage(secondReply)

	tests := []struct {
		name      string
		messageId uuid.UUID
		wantQuery string
		wantFound bool
	}{
		{"first reply", firstReply.Id, "first question", true},
		{"second reply", secondReply.Id, "second question", true},
		{"unknown message", uuid.New(), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := s.OriginatingQuery(tt.messageId)
			if found != tt.wantFound || got != tt.wantQuery {
				t.Errorf("OriginatingQuery = (%q, %v), want (%q, %v)", got, found, tt.wantQuery, tt.wantFound)
			}
		})
	}
}

func TestCatalogTitleFromFirstUserMessage(t *testing.T) {
	s := NewStore(&fakeFetcher{})

	s.AppendMessage(userMessage("summarize the onboarding document for me please, in detail"))
	s.SetConversationId("conv-1")

	entries := s.Catalog()
	if len(entries) != 1 {
		t.Fatalf("catalog count = %d, want 1", len(entries))
	}
	if len(entries[0].Title) > 50 {
		t.Errorf("title length = %d, want <= 50", len(entries[0].Title))
	}
	if entries[0].Title == "" {
		t.Error("title should not be empty")
	}
}
