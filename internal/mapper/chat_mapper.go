package mapper

import (
	"doc-assistant-gw/internal/dto"
	"doc-assistant-gw/pkg/conversation"
	"doc-assistant-gw/pkg/protocol"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) SourceToDTO(s protocol.Source) dto.SourceDTO {
	return dto.SourceDTO{
		Title:      s.Title,
		Type:       s.Kind,
		Confidence: s.Confidence,
	}
}

func (m *ChatMapper) SourcesToDTO(sources []protocol.Source) []dto.SourceDTO {
	if len(sources) == 0 {
		return nil
	}
	out := make([]dto.SourceDTO, 0, len(sources))
	for _, s := range sources {
		out = append(out, m.SourceToDTO(s))
	}
	return out
}

func (m *ChatMapper) MessageToResponse(msg conversation.Message) dto.MessageResponse {
	return dto.MessageResponse{
		Id:        msg.Id,
		Role:      string(msg.Role),
		Text:      msg.Text,
		Sources:   m.SourcesToDTO(msg.Sources),
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) MessagesToResponse(msgs []conversation.Message) []dto.MessageResponse {
	out := make([]dto.MessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, m.MessageToResponse(msg))
	}
	return out
}

func (m *ChatMapper) CatalogToResponse(entries []conversation.CatalogEntry) []dto.CatalogEntryResponse {
	out := make([]dto.CatalogEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.CatalogEntryResponse{
			Id:        e.Id,
			Title:     e.Title,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
