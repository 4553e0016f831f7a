package protocol

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

const framePrefix = "data: "

// Decoder demultiplexes a raw answer-stream body into typed Events. It is
// lazy and non-restartable: call Next until it returns io.EOF or a read
// error. The decoder has no knowledge of conversation semantics.
//
// Wire format: newline-delimited frames, each either empty or
// `data: {"type":...,"data":...}`. A chunk may split a frame mid-line; the
// underlying scanner buffers partial lines across chunk boundaries.
type Decoder struct {
	scanner *bufio.Scanner
}

func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	// Buffer for large frames (a sources payload can be long)
	buf := make([]byte, 0, 64*1024)
	sc.Buffer(buf, 1024*1024)
	return &Decoder{scanner: sc}
}

// rawFrame mirrors the wire shape. Data stays raw because its type depends
// on the frame type (string for token/error, array for sources).
type rawFrame struct {
	Type           string          `json:"type"`
	Data           json.RawMessage `json:"data"`
	ConversationId string          `json:"conversation_id"`
}

// Next returns the next decoded event. Keep-alive lines, unprefixed lines,
// malformed JSON, and unrecognized types are skipped silently: a bad frame
// must never abort the session. Returns io.EOF when the stream closes.
func (d *Decoder) Next() (Event, error) {
	for d.scanner.Scan() {
		line := strings.TrimSpace(d.scanner.Text())
		if line == "" || !strings.HasPrefix(line, framePrefix) {
			continue
		}

		var frame rawFrame
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, framePrefix)), &frame); err != nil {
			continue
		}

		switch EventType(frame.Type) {
		case EventStart:
			return Event{Type: EventStart}, nil

		case EventToken:
			var text string
			if err := json.Unmarshal(frame.Data, &text); err != nil {
				continue
			}
			return Event{Type: EventToken, Token: text}, nil

		case EventSources:
			var sources []Source
			if err := json.Unmarshal(frame.Data, &sources); err != nil {
				continue
			}
			return Event{Type: EventSources, Sources: sources}, nil

		case EventComplete:
			return Event{Type: EventComplete, ConversationId: frame.ConversationId}, nil

		case EventError:
			var msg string
			if err := json.Unmarshal(frame.Data, &msg); err != nil {
				continue
			}
			return Event{Type: EventError, Message: msg}, nil

		default:
			// Unknown frame type, tolerate and move on
			continue
		}
	}

	if err := d.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}
