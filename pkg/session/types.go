package session

import (
	"errors"

	"doc-assistant-gw/pkg/auth"
)

// SearchMode selects the retrieval strategy attached to an outgoing query.
type SearchMode string

const (
	ModeStandard        SearchMode = "standard"
	ModeRephrase        SearchMode = "rephrase"
	ModeMultipleQueries SearchMode = "multiple_queries"
)

// Valid reports whether m is a known search mode.
func (m SearchMode) Valid() bool {
	switch m {
	case ModeStandard, ModeRephrase, ModeMultipleQueries:
		return true
	}
	return false
}

// State of one question/answer exchange.
//
//	Idle -> Starting -> Streaming -> {Completed | Failed} -> Idle
//
// Completed and Failed are transient: the machine returns to Idle in the
// same transition, so Idle is the only state a new query is accepted from.
type State string

const (
	StateIdle      State = "IDLE"
	StateStarting  State = "STARTING"
	StateStreaming State = "STREAMING"
	StateCompleted State = "COMPLETED"
	StateFailed    State = "FAILED"
)

// Context carries the caller identity for one exchange. Threaded explicitly
// into Submit instead of being read from ambient state.
type Context struct {
	UserId string
	Token  string // bearer credential for upstream calls
}

// Query is one outgoing question with its retrieval constraints.
type Query struct {
	Text  string
	Scope []string // selected document ids constraining retrieval
	Mode  SearchMode
	Model string // optional model choice, backend default when empty
}

var (
	// ErrSessionBusy is returned when Submit is called while a session is
	// already in flight.
	ErrSessionBusy = errors.New("a session is already in progress")

	// ErrStreamEnded is returned when the stream closes without a complete
	// or error frame.
	ErrStreamEnded = errors.New("stream ended unexpectedly")

	// ErrAuthRequired is returned when no credential is available for an
	// upstream call. Alias of the shared sentinel so errors.Is matches
	// across every upstream client.
	ErrAuthRequired = auth.ErrRequired
)
