package dto

import (
	"time"

	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api/jsonapi"
)

// TaskAttributes represents background task attributes in JSON:API format.
type TaskAttributes struct {
	Operation string         `json:"operation"`
	Priority  int            `json:"priority"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

// TaskData represents task data in JSON:API format.
type TaskData struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Attributes TaskAttributes `json:"attributes"`
}

// TaskListResponse represents a paginated list of queued tasks in JSON:API format.
type TaskListResponse struct {
	Data  []TaskData     `json:"data"`
	Meta  *jsonapi.Meta  `json:"meta,omitempty"`
	Links *jsonapi.Links `json:"links,omitempty"`
}
