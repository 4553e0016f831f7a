package mapper

import (
	"testing"
	"time"

	"doc-assistant-gw/pkg/conversation"
	"doc-assistant-gw/pkg/protocol"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceToDTOKeepsConfidenceScale(t *testing.T) {
	m := NewChatMapper()

	out := m.SourceToDTO(protocol.Source{Title: "doc.pdf", Kind: "pdf", Confidence: 91})
	assert.Equal(t, "doc.pdf", out.Title)
	assert.Equal(t, "pdf", out.Type)
	assert.Equal(t, 91, out.Confidence)
}

func TestSourcesToDTONilOnEmpty(t *testing.T) {
	m := NewChatMapper()

	assert.Nil(t, m.SourcesToDTO(nil))
	assert.Nil(t, m.SourcesToDTO([]protocol.Source{}))
}

func TestMessageToResponse(t *testing.T) {
	m := NewChatMapper()
	id := uuid.New()
	now := time.Now()

	out := m.MessageToResponse(conversation.Message{
		Id:        id,
		Role:      conversation.RoleAssistant,
		Text:      "The answer is 42.",
		Sources:   []protocol.Source{{Title: "doc.pdf", Kind: "pdf", Confidence: 91}},
		CreatedAt: now,
	})

	assert.Equal(t, id, out.Id)
	assert.Equal(t, "assistant", out.Role)
	assert.Equal(t, "The answer is 42.", out.Text)
	require.Len(t, out.Sources, 1)
	assert.Equal(t, 91, out.Sources[0].Confidence)
	assert.Equal(t, now, out.CreatedAt)
}
