package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"doc-assistant-gw/internal/pkg/logger"
	"doc-assistant-gw/pkg/conversation"
	"doc-assistant-gw/pkg/protocol"

	"github.com/google/uuid"
)

// Listener receives UI-facing signals from the machine. Callbacks are
// invoked in event arrival order, never while the machine lock is held.
type Listener interface {
	// OnTyping fires once when the backend acknowledges the query.
	OnTyping()
	// OnToken delivers one incremental answer fragment for live display.
	OnToken(delta string)
	// OnSources delivers the provenance list (replaces any previous one).
	OnSources(sources []protocol.Source)
	// OnComplete delivers the finalized assistant message.
	OnComplete(reply conversation.Message, conversationId string)
	// OnError fires on any failure; no message was appended to history.
	OnError(err error)
}

// draft is the mutable in-progress assistant answer. Discarded on error or
// cancellation; finalized into an immutable Message on completion.
type draft struct {
	query     string
	buf       strings.Builder
	sources   []protocol.Source
	startedAt time.Time
}

// Machine owns one active question/answer exchange. Submit is gated on
// StateIdle under the mutex: the UI is expected to disable submission while a
// session runs, but the machine rejects concurrent submits itself as a
// defense-in-depth invariant.
type Machine struct {
	mu          sync.Mutex
	state       State
	lastOutcome State // Completed or Failed after the last terminal transition
	gen         uint64
	cancel      context.CancelFunc
	draft       draft

	transport Transport
	store     *conversation.Store
	listener  Listener
	logger    logger.ILogger
}

func NewMachine(transport Transport, store *conversation.Store, listener Listener, log logger.ILogger) *Machine {
	return &Machine{
		state:     StateIdle,
		transport: transport,
		store:     store,
		listener:  listener,
		logger:    log,
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastOutcome reports how the most recent exchange ended (Completed or
// Failed), or "" before the first terminal transition.
func (m *Machine) LastOutcome() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOutcome
}

// Submit opens a stream for the query. Returns ErrSessionBusy unless the
// machine is Idle. The conversation id of the store (if any) is attached so
// the backend continues the existing conversation.
func (m *Machine) Submit(ctx context.Context, sc Context, q Query) error {
	mode := q.Mode
	if !mode.Valid() {
		mode = ModeStandard
	}

	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return ErrSessionBusy
	}
	m.state = StateStarting
	m.gen++
	gen := m.gen
	m.draft = draft{query: q.Text, startedAt: time.Now()}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	req := Request{
		Message:             q.Text,
		ConversationId:      m.store.ConversationId(),
		UserId:              sc.UserId,
		SearchMode:          mode,
		SelectedDocumentIds: q.Scope,
		Token:               sc.Token,
	}
	if q.Model != "" {
		req.ModelConfig = &ModelConfig{Model: q.Model}
	}

	m.logger.Info("Session", "Stream opening", map[string]interface{}{
		"user_id": sc.UserId, "search_mode": string(mode), "scope_size": len(q.Scope),
	})

	go m.run(runCtx, gen, req)
	return nil
}

// Cancel aborts the in-flight session, discards the draft, and returns to
// Idle. Buffered events still in flight are discarded via the generation
// counter; neither Complete nor a message append is emitted.
func (m *Machine) Cancel() {
	m.mu.Lock()
	if m.state == StateIdle {
		m.mu.Unlock()
		return
	}
	m.gen++
	cancel := m.cancel
	m.cancel = nil
	m.draft = draft{}
	m.state = StateIdle
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.logger.Info("Session", "Stream canceled", nil)
}

func (m *Machine) run(ctx context.Context, gen uint64, req Request) {
	body, err := m.transport.Open(ctx, req)
	if err != nil {
		m.fail(gen, err)
		return
	}
	defer body.Close()

	// Close the body when the context is canceled so a blocked read unwinds
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			body.Close()
		case <-done:
		}
	}()

	dec := protocol.NewDecoder(body)
	for {
		ev, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			m.fail(gen, fmt.Errorf("read answer stream: %w", err))
			return
		}
		if terminal := m.apply(gen, ev); terminal {
			return
		}
	}

	// Stream closed without a complete or error frame
	m.fail(gen, ErrStreamEnded)
}

// apply feeds one decoded event into the state machine. Returns true when
// the event was terminal (complete, error, or discarded post-cancel).
func (m *Machine) apply(gen uint64, ev protocol.Event) bool {
	m.mu.Lock()
	if gen != m.gen {
		// Canceled while this event was buffered: discard, never apply
		m.mu.Unlock()
		return true
	}

	switch ev.Type {
	case protocol.EventStart:
		m.state = StateStreaming
		m.mu.Unlock()
		m.listener.OnTyping()
		return false

	case protocol.EventToken:
		// Append-only, arrival order, no reordering or deduplication
		m.draft.buf.WriteString(ev.Token)
		m.mu.Unlock()
		m.listener.OnToken(ev.Token)
		return false

	case protocol.EventSources:
		// A later sources frame replaces the previous list wholesale
		m.draft.sources = ev.Sources
		m.mu.Unlock()
		m.listener.OnSources(ev.Sources)
		return false

	case protocol.EventComplete:
		sent := conversation.Message{
			Id:        uuid.New(),
			Role:      conversation.RoleUser,
			Text:      m.draft.query,
			CreatedAt: m.draft.startedAt,
		}
		reply := conversation.Message{
			Id:        uuid.New(),
			Role:      conversation.RoleAssistant,
			Text:      m.draft.buf.String(),
			Sources:   m.draft.sources,
			CreatedAt: time.Now(),
		}

		// Commit is atomic: both messages land in history before the
		// machine becomes submittable again
		m.store.AppendMessage(sent)
		m.store.AppendMessage(reply)
		m.store.SetConversationId(ev.ConversationId)

		m.draft = draft{}
		m.cancel = nil
		m.lastOutcome = StateCompleted
		m.state = StateIdle
		m.mu.Unlock()

		m.logger.Info("Session", "Stream completed", map[string]interface{}{
			"conversation_id": m.store.ConversationId(), "reply_len": len(reply.Text),
		})
		m.listener.OnComplete(reply, m.store.ConversationId())
		return true

	case protocol.EventError:
		m.draft = draft{}
		m.cancel = nil
		m.lastOutcome = StateFailed
		m.state = StateIdle
		m.mu.Unlock()

		m.listener.OnError(errors.New(ev.Message))
		return true
	}

	m.mu.Unlock()
	return false
}

// fail discards the draft and surfaces err, unless the session was already
// canceled or superseded.
func (m *Machine) fail(gen uint64, err error) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.draft = draft{}
	m.cancel = nil
	m.lastOutcome = StateFailed
	m.state = StateIdle
	m.mu.Unlock()

	m.logger.Error("Session", "Stream failed", map[string]interface{}{"error": err.Error()})
	m.listener.OnError(err)
}
