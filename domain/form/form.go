// Package form provides the form aggregate: generated form definitions with
// their descriptive summaries, category tags, and retrieval embeddings.
package form

import (
	"time"

	"github.com/google/uuid"
)

// Form represents a generated form definition owned by a single user.
// The summary (descriptive text) and category are derived once at creation
// and never recomputed. The embedding is optional: a form without one is
// invisible to similarity retrieval until the indexer fills it in.
type Form struct {
	id        int64
	uuid      uuid.UUID
	ownerID   uuid.UUID
	prompt    string
	schema    Schema
	summary   string
	category  Category
	embedding []float64
	createdAt time.Time
	updatedAt time.Time
}

// NewForm creates a new Form from the originating prompt and the generated
// schema. The category is derived from the prompt, the summary from the
// schema. The embedding starts empty.
func NewForm(ownerID uuid.UUID, prompt string, schema Schema) Form {
	now := time.Now().UTC()
	category := DeriveCategory(prompt)

	return Form{
		uuid:      uuid.New(),
		ownerID:   ownerID,
		prompt:    prompt,
		schema:    schema,
		summary:   Summarize(schema, category),
		category:  category,
		createdAt: now,
		updatedAt: now,
	}
}

// ReconstructForm reconstructs a Form from persistence.
func ReconstructForm(
	id int64,
	formUUID, ownerID uuid.UUID,
	prompt string,
	schema Schema,
	summary string,
	category Category,
	embedding []float64,
	createdAt, updatedAt time.Time,
) Form {
	return Form{
		id:        id,
		uuid:      formUUID,
		ownerID:   ownerID,
		prompt:    prompt,
		schema:    schema,
		summary:   summary,
		category:  category,
		embedding: copyVector(embedding),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the persistence key (0 until saved).
func (f Form) ID() int64 { return f.id }

// UUID returns the public identifier.
func (f Form) UUID() uuid.UUID { return f.uuid }

// OwnerID returns the owning user's public identifier.
func (f Form) OwnerID() uuid.UUID { return f.ownerID }

// Title returns the display title from the generated schema.
func (f Form) Title() string { return f.schema.Title() }

// Prompt returns the originating natural-language prompt.
func (f Form) Prompt() string { return f.prompt }

// Schema returns the generated form definition.
func (f Form) Schema() Schema { return f.schema }

// Summary returns the descriptive text that builds the embedding and the
// retrieval context entry.
func (f Form) Summary() string { return f.summary }

// Category returns the category tag derived from the prompt.
func (f Form) Category() Category { return f.category }

// Embedding returns a copy of the stored embedding, or nil when the form
// has none.
func (f Form) Embedding() []float64 { return copyVector(f.embedding) }

// HasEmbedding reports whether an embedding has been computed.
func (f Form) HasEmbedding() bool { return len(f.embedding) > 0 }

// CreatedAt returns the creation timestamp.
func (f Form) CreatedAt() time.Time { return f.createdAt }

// UpdatedAt returns the last update timestamp.
func (f Form) UpdatedAt() time.Time { return f.updatedAt }

// WithID returns a copy of the form with the given persistence key.
func (f Form) WithID(id int64) Form {
	f.id = id
	return f
}

// WithEmbedding returns a copy of the form carrying the given embedding.
func (f Form) WithEmbedding(vector []float64) Form {
	f.embedding = copyVector(vector)
	f.updatedAt = time.Now().UTC()
	return f
}

func copyVector(v []float64) []float64 {
	if v == nil {
		return nil
	}
	cp := make([]float64, len(v))
	copy(cp, v)
	return cp
}
