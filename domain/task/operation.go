package task

import "strings"

// Operation represents the type of task operation.
type Operation string

// Operation values for the task queue system.
const (
	OperationEmbedForm          Operation = "centralign.form.embed"
	OperationBackfillEmbeddings Operation = "centralign.index.backfill"
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return string(o)
}

// IsFormOperation returns true if this is a form-level operation.
func (o Operation) IsFormOperation() bool {
	return strings.HasPrefix(string(o), "centralign.form.")
}

// IsValid reports whether the operation is one the queue can carry.
func (o Operation) IsValid() bool {
	for _, known := range AllOperations() {
		if o == known {
			return true
		}
	}
	return false
}

// AllOperations returns every operation the queue can carry.
// Used at startup to validate that all required handlers are registered.
func AllOperations() []Operation {
	return []Operation{
		OperationEmbedForm,
		OperationBackfillEmbeddings,
	}
}
