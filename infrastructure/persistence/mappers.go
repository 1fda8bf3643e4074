package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/task"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/user"
	"github.com/google/uuid"
)

// UserMapper maps between domain User and persistence UserModel.
type UserMapper struct{}

// ToDomain converts a UserModel to a domain User.
func (m UserMapper) ToDomain(e UserModel) user.User {
	return user.ReconstructUser(
		e.ID,
		parseUUID(e.UUID),
		e.Email,
		e.PasswordHash,
		e.DisplayName,
		e.CreatedAt,
	)
}

// ToModel converts a domain User to a UserModel.
func (m UserMapper) ToModel(u user.User) UserModel {
	return UserModel{
		ID:           u.ID(),
		UUID:         u.UUID().String(),
		Email:        u.Email(),
		PasswordHash: u.PasswordHash(),
		DisplayName:  u.DisplayName(),
		CreatedAt:    u.CreatedAt(),
	}
}

// FormMapper maps between domain Form and persistence FormModel.
// The reconstructed Form carries no embedding; stores that join the
// form_embeddings table attach the vector via Form.WithEmbedding.
type FormMapper struct{}

// ToDomain converts a FormModel to a domain Form.
func (m FormMapper) ToDomain(e FormModel) (form.Form, error) {
	schema, err := form.ParseSchema([]byte(e.SchemaJSON))
	if err != nil {
		return form.Form{}, fmt.Errorf("parse schema for form %d: %w", e.ID, err)
	}

	return form.ReconstructForm(
		e.ID,
		parseUUID(e.UUID),
		parseUUID(e.OwnerID),
		e.Prompt,
		schema,
		e.Summary,
		form.Category(e.Category),
		nil,
		e.CreatedAt,
		e.UpdatedAt,
	), nil
}

// ToModel converts a domain Form to a FormModel.
func (m FormMapper) ToModel(f form.Form) (FormModel, error) {
	schemaJSON, err := json.Marshal(f.Schema())
	if err != nil {
		return FormModel{}, fmt.Errorf("marshal schema: %w", err)
	}

	return FormModel{
		ID:         f.ID(),
		UUID:       f.UUID().String(),
		OwnerID:    f.OwnerID().String(),
		Prompt:     f.Prompt(),
		SchemaJSON: string(schemaJSON),
		Summary:    f.Summary(),
		Category:   string(f.Category()),
		CreatedAt:  f.CreatedAt(),
		UpdatedAt:  f.UpdatedAt(),
	}, nil
}

// TaskMapper maps between domain Task and persistence TaskModel.
type TaskMapper struct{}

// ToDomain converts a TaskModel to a domain Task.
func (m TaskMapper) ToDomain(e TaskModel) (task.Task, error) {
	var payload map[string]any
	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return task.Task{}, fmt.Errorf("unmarshal task payload: %w", err)
		}
	}
	if payload == nil {
		payload = make(map[string]any)
	}

	return task.NewTaskWithID(
		e.ID,
		e.DedupKey,
		task.Operation(e.Type),
		e.Priority,
		payload,
		e.CreatedAt,
		e.UpdatedAt,
	), nil
}

// ToModel converts a domain Task to a TaskModel.
func (m TaskMapper) ToModel(t task.Task) (TaskModel, error) {
	payloadJSON, err := t.PayloadJSON()
	if err != nil {
		return TaskModel{}, fmt.Errorf("marshal task payload: %w", err)
	}

	return TaskModel{
		ID:        t.ID(),
		DedupKey:  t.DedupKey(),
		Type:      t.Operation().String(),
		Payload:   payloadJSON,
		Priority:  t.Priority(),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}, nil
}

// parseUUID parses a stored UUID string. Rows are only ever written from
// domain values, so a parse failure maps to the nil UUID rather than an error.
func parseUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
