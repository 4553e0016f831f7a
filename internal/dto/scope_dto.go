package dto

type ToggleScopeRequest struct {
	DocumentId string `json:"document_id" validate:"required"`
}

type ToggleScopeResponse struct {
	DocumentId string `json:"document_id"`
	Selected   bool   `json:"selected"`
}

type ScopeResponse struct {
	DocumentIds []string `json:"document_ids"`
	MaxSize     int      `json:"max_size"`
}
