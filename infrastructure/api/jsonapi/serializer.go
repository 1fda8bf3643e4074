package jsonapi

import (
	"strconv"
	"time"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/task"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/user"
)

// FormAttributes represents form attributes in JSON:API format. Embedding
// vectors are an indexing concern and are never serialized.
type FormAttributes struct {
	Title      string      `json:"title"`
	Category   string      `json:"category"`
	Prompt     string      `json:"prompt"`
	Summary    string      `json:"summary"`
	Schema     form.Schema `json:"schema"`
	FieldCount int         `json:"field_count"`
	CreatedAt  *time.Time  `json:"created_at,omitempty"`
	UpdatedAt  *time.Time  `json:"updated_at,omitempty"`
}

// UserAttributes represents user attributes in JSON:API format.
// The password hash never leaves the server.
type UserAttributes struct {
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// TaskAttributes represents background task attributes in JSON:API format.
type TaskAttributes struct {
	Operation string         `json:"operation"`
	Priority  int            `json:"priority"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

// Serializer converts domain objects to JSON:API resources.
type Serializer struct{}

// NewSerializer creates a new Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// FormResource converts a form to a JSON:API resource.
func (s *Serializer) FormResource(f form.Form) *Resource {
	createdAt := f.CreatedAt()
	updatedAt := f.UpdatedAt()

	attrs := &FormAttributes{
		Title:      f.Title(),
		Category:   string(f.Category()),
		Prompt:     f.Prompt(),
		Summary:    f.Summary(),
		Schema:     f.Schema(),
		FieldCount: f.Schema().FieldCount(),
		CreatedAt:  &createdAt,
		UpdatedAt:  &updatedAt,
	}

	return NewResource("form", f.UUID().String(), attrs)
}

// FormResources converts multiple forms to JSON:API resources.
func (s *Serializer) FormResources(forms []form.Form) []*Resource {
	resources := make([]*Resource, len(forms))
	for i, f := range forms {
		resources[i] = s.FormResource(f)
	}
	return resources
}

// UserResource converts a user to a JSON:API resource.
func (s *Serializer) UserResource(u user.User) *Resource {
	createdAt := u.CreatedAt()

	attrs := &UserAttributes{
		Email:       u.Email(),
		DisplayName: u.DisplayName(),
		CreatedAt:   &createdAt,
	}

	return NewResource("user", u.UUID().String(), attrs)
}

// TaskResource converts a background task to a JSON:API resource.
func (s *Serializer) TaskResource(t task.Task) *Resource {
	createdAt := t.CreatedAt()
	updatedAt := t.UpdatedAt()

	attrs := &TaskAttributes{
		Operation: string(t.Operation()),
		Priority:  t.Priority(),
		Payload:   t.Payload(),
		CreatedAt: &createdAt,
		UpdatedAt: &updatedAt,
	}

	return NewResource("task", strconv.FormatInt(t.ID(), 10), attrs)
}

// TaskResources converts multiple background tasks to JSON:API resources.
func (s *Serializer) TaskResources(tasks []task.Task) []*Resource {
	resources := make([]*Resource, len(tasks))
	for i, t := range tasks {
		resources[i] = s.TaskResource(t)
	}
	return resources
}
