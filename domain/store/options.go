package store

import (
	"time"

	"github.com/google/uuid"
)

// WithUUID filters by the "uuid" column.
func WithUUID(id uuid.UUID) Option {
	return WithCondition("uuid", id.String())
}

// WithOwnerID filters by the "owner_id" column.
func WithOwnerID(id uuid.UUID) Option {
	return WithCondition("owner_id", id.String())
}

// WithEmail filters by the "email" column.
func WithEmail(email string) Option {
	return WithCondition("email", email)
}

// WithCategory filters by the "category" column.
func WithCategory(category string) Option {
	return WithCondition("category", category)
}

// WithFormID filters by the "form_id" column.
func WithFormID(id int64) Option {
	return WithCondition("form_id", id)
}

// WithFormIDIn filters by the "form_id" column using IN.
func WithFormIDIn(ids []int64) Option {
	return WithConditionIn("form_id", ids)
}

// WithStatus filters by the "status" column.
func WithStatus(status string) Option {
	return WithCondition("status", status)
}

// WithOperation filters by the "type" column holding the task operation.
func WithOperation(operation string) Option {
	return WithCondition("type", operation)
}

// WithCreatedBefore filters rows created strictly before the given time.
func WithCreatedBefore(t time.Time) Option {
	return WithWhere("created_at < ?", t)
}

// WithRecentFirst orders by creation time descending, newest rows first.
// Ties break on id descending so the ordering is stable across calls.
func WithRecentFirst() Option {
	return func(q Query) Query {
		q = WithOrderDesc("created_at")(q)
		return WithOrderDesc("id")(q)
	}
}
