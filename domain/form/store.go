package form

import (
	"context"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/store"
	"github.com/google/uuid"
)

// FormStore defines persistence for forms. Every read is owner-scoped: there
// is no way to fetch a form without naming its owner.
type FormStore interface {
	// Save persists a form, returning it with its persistence key set.
	Save(ctx context.Context, f Form) (Form, error)

	// Get returns a form by its public identifier, scoped to the owner.
	Get(ctx context.Context, ownerID, formUUID uuid.UUID) (Form, error)

	// List returns the owner's forms matching the given options.
	List(ctx context.Context, ownerID uuid.UUID, options ...store.Option) ([]Form, error)

	// Count returns the number of forms the owner has.
	Count(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// Delete hard-deletes a form and its embedding row in one transaction.
	Delete(ctx context.Context, f Form) error

	// MissingEmbeddings returns forms that have no embedding row yet,
	// oldest first, capped at limit. Used by the backfill handler.
	MissingEmbeddings(ctx context.Context, limit int) ([]Form, error)
}
