package dto

import "github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/jsonapi"

// ContextQueryAttributes holds the fields of a context retrieval query.
type ContextQueryAttributes struct {
	Query          string `json:"query"`
	TopK           *int   `json:"top_k,omitempty"`
	IncludeSchemas bool   `json:"include_schemas,omitempty"`
}

// ContextQueryData represents context query data in JSON:API format.
type ContextQueryData struct {
	Type       string                 `json:"type"`
	Attributes ContextQueryAttributes `json:"attributes"`
}

// ContextQueryRequest represents a JSON:API context retrieval request.
type ContextQueryRequest struct {
	Data ContextQueryData `json:"data"`
}

// ContextEntryAttributes represents one retrieved context entry.
// Similarity is zero when the entry came from the recency fallback.
type ContextEntryAttributes struct {
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Descriptors []string `json:"descriptors"`
	SchemaJSON  string   `json:"schema_json,omitempty"`
	Similarity  float64  `json:"similarity"`
}

// ContextEntryData represents a context entry in JSON:API format.
// The ID is the public identifier of the form the entry was built from.
type ContextEntryData struct {
	Type       string                 `json:"type"`
	ID         string                 `json:"id"`
	Attributes ContextEntryAttributes `json:"attributes"`
}

// ContextQueryResponse represents a context retrieval response.
// Meta reports the retrieval mode and whether the recency fallback served it.
type ContextQueryResponse struct {
	Data []ContextEntryData `json:"data"`
	Meta *jsonapi.Meta      `json:"meta,omitempty"`
}
