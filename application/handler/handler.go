// Package handler provides task handlers for processing queued operations.
package handler

import (
	"fmt"

	"github.com/google/uuid"
)

// ExtractInt64 extracts an int64 value from the payload.
func ExtractInt64(payload map[string]any, key string) (int64, error) {
	val, ok := payload[key]
	if !ok {
		return 0, fmt.Errorf("missing required field: %s", key)
	}

	switch v := val.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("invalid type for %s: %T", key, val)
	}
}

// ExtractString extracts a string value from the payload.
func ExtractString(payload map[string]any, key string) (string, error) {
	val, ok := payload[key]
	if !ok {
		return "", fmt.Errorf("missing required field: %s", key)
	}

	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("invalid type for %s: expected string, got %T", key, val)
	}

	return s, nil
}

// ExtractUUID extracts a UUID value stored as a string in the payload.
func ExtractUUID(payload map[string]any, key string) (uuid.UUID, error) {
	s, err := ExtractString(payload, key)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", key, err)
	}

	return id, nil
}

// FormPayload holds the common owner_id and form_uuid fields extracted
// from task payloads.
type FormPayload struct {
	ownerID  uuid.UUID
	formUUID uuid.UUID
}

// OwnerID returns the identifier of the user who owns the form.
func (p FormPayload) OwnerID() uuid.UUID { return p.ownerID }

// FormUUID returns the form's public identifier.
func (p FormPayload) FormUUID() uuid.UUID { return p.formUUID }

// ExtractFormPayload extracts the common owner_id and form_uuid fields
// from a task payload.
func ExtractFormPayload(payload map[string]any) (FormPayload, error) {
	ownerID, err := ExtractUUID(payload, "owner_id")
	if err != nil {
		return FormPayload{}, err
	}

	formUUID, err := ExtractUUID(payload, "form_uuid")
	if err != nil {
		return FormPayload{}, err
	}

	return FormPayload{ownerID: ownerID, formUUID: formUUID}, nil
}
