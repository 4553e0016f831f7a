package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"doc-assistant-gw/internal/pkg/logger"
	"doc-assistant-gw/pkg/conversation"
	"doc-assistant-gw/pkg/protocol"
	"doc-assistant-gw/pkg/regen"
	"doc-assistant-gw/pkg/scope"
	"doc-assistant-gw/pkg/session"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Simulation client: stands up a canned answer backend on a loopback port
// and drives the full session pipeline against it, printing the stream as a
// UI would render it.

const simulatedAnswer = "Document retention policies require approval by the compliance team before archival. "

func main() {
	color.Cyan("🚀 Document Assistant Stream Simulation\n")

	addr, shutdown := startMockBackend()
	defer shutdown()
	color.Green("Mock answer backend listening on %s", addr)

	log := logger.NewNopLogger()
	sc := session.Context{UserId: uuid.NewString(), Token: "simulated-token"}

	// Scope with a tiny limit so the rejection path is visible
	scopeMgr := scope.NewManager(scope.Credentials{Owner: sc.UserId, Token: sc.Token}, &memScopeStore{}, 3, log)
	color.Yellow("\n[SCOPE] Selecting documents (limit 3)")
	for _, id := range []string{"doc-1", "doc-2", "doc-3", "doc-4"} {
		selected, err := scopeMgr.Toggle(id)
		if err != nil {
			color.Red("  %s rejected: %v", id, err)
			continue
		}
		fmt.Printf("  %s selected=%v\n", id, selected)
	}
	fmt.Printf("  selection: %v\n", scopeMgr.Selection())

	store := conversation.NewStore(nopFetcher{})
	listener := newConsoleListener()
	machine := session.NewMachine(session.NewHTTPTransport("http://"+addr), store, listener, log)

	color.Yellow("\n[QUERY] What is the retention policy?")
	err := machine.Submit(context.Background(), sc, session.Query{
		Text:  "What is the retention policy?",
		Scope: scopeMgr.Selection(),
		Mode:  session.ModeStandard,
	})
	if err != nil {
		color.Red("Submit failed: %v", err)
		os.Exit(1)
	}
	listener.wait()

	color.Yellow("\n[HISTORY]")
	for _, msg := range store.Messages() {
		fmt.Printf("  %-9s %s\n", msg.Role, msg.Text)
	}

	// Rate the answer down and watch the regeneration re-stream
	reply := store.Messages()[len(store.Messages())-1]
	color.Yellow("\n[FEEDBACK] not_relevant on the reply, expecting a rephrase run")
	controller := regen.NewController(machine, store, scopeMgr, nil, log)
	regenerated, err := controller.HandleFeedback(context.Background(), sc, regen.Feedback{
		MessageId: reply.Id,
		Positive:  false,
		Reason:    regen.ReasonNotRelevant,
	})
	if err != nil {
		color.Red("Feedback failed: %v", err)
		os.Exit(1)
	}
	if regenerated {
		listener.wait()
	}

	color.Green("\n✅ Simulation finished: %d messages, conversation %s", len(store.Messages()), store.ConversationId())
	scopeMgr.Wait()
}

// consoleListener renders machine callbacks like the web client would.
type consoleListener struct {
	done chan struct{}
}

func newConsoleListener() *consoleListener {
	return &consoleListener{done: make(chan struct{}, 4)}
}

func (l *consoleListener) wait() {
	select {
	case <-l.done:
	case <-time.After(10 * time.Second):
		color.Red("timed out waiting for stream to finish")
		os.Exit(1)
	}
}

func (l *consoleListener) OnTyping() {
	fmt.Print("  assistant is typing: ")
}

func (l *consoleListener) OnToken(delta string) {
	fmt.Print(delta)
}

func (l *consoleListener) OnSources(sources []protocol.Source) {
	fmt.Printf("\n  sources: ")
	for _, s := range sources {
		fmt.Printf("[%s %d%%] ", s.Title, s.Confidence)
	}
	fmt.Println()
}

func (l *consoleListener) OnComplete(reply conversation.Message, conversationId string) {
	color.Green("  complete (conversation %s, %d chars)", conversationId, len(reply.Text))
	l.done <- struct{}{}
}

func (l *consoleListener) OnError(err error) {
	color.Red("  stream error: %v", err)
	l.done <- struct{}{}
}

type nopFetcher struct{}

func (nopFetcher) FetchHistory(ctx context.Context, id string) ([]conversation.Message, error) {
	return nil, nil
}

// memScopeStore keeps the persisted selection in memory, standing in for
// the remote selection service.
type memScopeStore struct {
	ids   []string
	found bool
}

func (s *memScopeStore) Load(ctx context.Context, creds scope.Credentials) ([]string, bool, error) {
	return s.ids, s.found, nil
}

func (s *memScopeStore) Save(ctx context.Context, creds scope.Credentials, documentIds []string) error {
	s.ids = documentIds
	s.found = true
	return nil
}

func (s *memScopeStore) Clear(ctx context.Context, creds scope.Credentials) error {
	s.ids = nil
	s.found = false
	return nil
}

func startMockBackend() (string, func()) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		color.Red("Failed to listen: %v", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat/query", func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")

		write := func(frame string) {
			fmt.Fprintf(w, "data: %s\n", frame)
			flusher.Flush()
			time.Sleep(30 * time.Millisecond)
		}

		write(`{"type": "start"}`)
		for _, word := range splitWords(simulatedAnswer) {
			write(fmt.Sprintf(`{"type": "token", "data": %q}`, word))
		}
		write(`{"type": "sources", "data": [{"title": "retention-policy.pdf", "type": "pdf", "confidence": 93}]}`)
		write(`{"type": "complete", "conversation_id": "conv-sim-1"}`)
	})

	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)

	return ln.Addr().String(), func() { srv.Close() }
}

func splitWords(s string) []string {
	var words []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			words = append(words, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		words = append(words, s[start:])
	}
	return words
}
