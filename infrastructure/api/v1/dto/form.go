package dto

import (
	"encoding/json"
	"time"

	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/jsonapi"
)

// GenerateAttributes holds the prompt for form generation.
type GenerateAttributes struct {
	Prompt string `json:"prompt"`
}

// GenerateData represents generation data in JSON:API format.
type GenerateData struct {
	Type       string             `json:"type"`
	Attributes GenerateAttributes `json:"attributes"`
}

// GenerateRequest represents a JSON:API form generation request.
type GenerateRequest struct {
	Data GenerateData `json:"data"`
}

// FormAttributes represents form attributes in JSON:API format.
// Schema is kept raw so clients can decode it into their own field types.
type FormAttributes struct {
	Title      string          `json:"title"`
	Category   string          `json:"category"`
	Prompt     string          `json:"prompt"`
	Summary    string          `json:"summary"`
	Schema     json.RawMessage `json:"schema"`
	FieldCount int             `json:"field_count"`
	CreatedAt  *time.Time      `json:"created_at,omitempty"`
	UpdatedAt  *time.Time      `json:"updated_at,omitempty"`
}

// FormData represents form data in JSON:API format.
type FormData struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Attributes FormAttributes `json:"attributes"`
}

// FormResponse represents a single form in JSON:API format.
type FormResponse struct {
	Data FormData `json:"data"`
}

// FormListResponse represents a paginated list of forms in JSON:API format.
type FormListResponse struct {
	Data  []FormData     `json:"data"`
	Meta  *jsonapi.Meta  `json:"meta,omitempty"`
	Links *jsonapi.Links `json:"links,omitempty"`
}
