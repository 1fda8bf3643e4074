package form

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func testSchema() Schema {
	return NewSchema("Internship Application", "Apply for our internship program.", []Field{
		NewField("full_name", "Full Name", KindText, true, nil),
		NewField("email", "Email Address", KindEmail, true, nil),
		NewField("resume", "Resume", KindFile, true, nil),
	})
}

func TestNewForm_DerivesCategoryAndSummary(t *testing.T) {
	owner := uuid.New()
	f := NewForm(owner, "internship application form with resume upload", testSchema())

	if f.Category() != CategoryJob {
		t.Errorf("Category() = %q, want %q", f.Category(), CategoryJob)
	}
	if f.Summary() == "" {
		t.Error("Summary() should be computed at creation")
	}
	if f.Summary() != Summarize(testSchema(), CategoryJob) {
		t.Error("Summary() should match Summarize output")
	}
	if f.OwnerID() != owner {
		t.Errorf("OwnerID() = %v, want %v", f.OwnerID(), owner)
	}
	if f.UUID() == uuid.Nil {
		t.Error("UUID() should be assigned at creation")
	}
	if f.ID() != 0 {
		t.Errorf("ID() = %d, want 0 before save", f.ID())
	}
}

func TestNewForm_NoEmbedding(t *testing.T) {
	f := NewForm(uuid.New(), "a survey about lunch", testSchema())

	if f.HasEmbedding() {
		t.Error("new form should have no embedding")
	}
	if f.Embedding() != nil {
		t.Errorf("Embedding() = %v, want nil", f.Embedding())
	}
}

func TestForm_Title(t *testing.T) {
	f := NewForm(uuid.New(), "internship application", testSchema())

	if f.Title() != "Internship Application" {
		t.Errorf("Title() = %q", f.Title())
	}
}

func TestForm_WithEmbedding(t *testing.T) {
	f := NewForm(uuid.New(), "internship application", testSchema())

	vec := []float64{0.6, 0.8}
	embedded := f.WithEmbedding(vec)

	if !embedded.HasEmbedding() {
		t.Error("WithEmbedding should set the embedding")
	}
	if f.HasEmbedding() {
		t.Error("original form must be unchanged")
	}

	// Mutating the input must not reach the stored embedding.
	vec[0] = 99
	if embedded.Embedding()[0] != 0.6 {
		t.Error("WithEmbedding must copy its input")
	}

	// Mutating the output must not either.
	out := embedded.Embedding()
	out[1] = 99
	if embedded.Embedding()[1] != 0.8 {
		t.Error("Embedding() must return a copy")
	}
}

func TestForm_WithID(t *testing.T) {
	f := NewForm(uuid.New(), "contact form", testSchema()).WithID(42)

	if f.ID() != 42 {
		t.Errorf("ID() = %d, want 42", f.ID())
	}
}

func TestReconstructForm(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	formUUID := uuid.New()
	owner := uuid.New()

	f := ReconstructForm(
		7, formUUID, owner,
		"feedback about checkout",
		testSchema(),
		"a stored summary",
		CategoryFeedback,
		[]float64{1, 0},
		created, updated,
	)

	if f.ID() != 7 {
		t.Errorf("ID() = %d", f.ID())
	}
	if f.UUID() != formUUID {
		t.Error("UUID mismatch")
	}
	if f.OwnerID() != owner {
		t.Error("OwnerID mismatch")
	}
	if f.Summary() != "a stored summary" {
		t.Errorf("Summary() = %q", f.Summary())
	}
	if f.Category() != CategoryFeedback {
		t.Errorf("Category() = %q", f.Category())
	}
	if !f.HasEmbedding() {
		t.Error("expected embedding present")
	}
	if !f.CreatedAt().Equal(created) || !f.UpdatedAt().Equal(updated) {
		t.Error("timestamps not preserved")
	}
}
