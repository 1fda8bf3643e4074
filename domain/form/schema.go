package form

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldKind enumerates the input types a form field can take.
type FieldKind string

// FieldKind values.
const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindEmail    FieldKind = "email"
	KindPhone    FieldKind = "phone"
	KindNumber   FieldKind = "number"
	KindDate     FieldKind = "date"
	KindSelect   FieldKind = "select"
	KindCheckbox FieldKind = "checkbox"
	KindRadio    FieldKind = "radio"
	KindFile     FieldKind = "file"
	KindRating   FieldKind = "rating"
)

// String returns the string representation of the field kind.
func (k FieldKind) String() string { return string(k) }

// IsValid reports whether the kind is one of the known input types.
func (k FieldKind) IsValid() bool {
	switch k {
	case KindText, KindTextarea, KindEmail, KindPhone, KindNumber,
		KindDate, KindSelect, KindCheckbox, KindRadio, KindFile, KindRating:
		return true
	}
	return false
}

// NormalizeKind maps an arbitrary kind string onto a known FieldKind,
// defaulting to text for anything unrecognized. Generated output is not
// trusted to stay inside the enum.
func NormalizeKind(s string) FieldKind {
	k := FieldKind(strings.ToLower(strings.TrimSpace(s)))
	if k.IsValid() {
		return k
	}
	return KindText
}

// Field represents a single input within a form definition.
type Field struct {
	key      string
	label    string
	kind     FieldKind
	required bool
	options  []string
}

// NewField creates a new Field.
func NewField(key, label string, kind FieldKind, required bool, options []string) Field {
	opts := make([]string, len(options))
	copy(opts, options)
	return Field{
		key:      key,
		label:    label,
		kind:     kind,
		required: required,
		options:  opts,
	}
}

// Key returns the machine-readable field identifier.
func (f Field) Key() string { return f.key }

// Label returns the human-readable field label.
func (f Field) Label() string { return f.label }

// Kind returns the field input type.
func (f Field) Kind() FieldKind { return f.kind }

// Required reports whether the field must be filled.
func (f Field) Required() bool { return f.required }

// Options returns the choices for select/radio/checkbox fields.
func (f Field) Options() []string {
	opts := make([]string, len(f.options))
	copy(opts, f.options)
	return opts
}

// Descriptor returns a one-line description of the field, e.g.
// "Full Name (text, required)". Context entries are assembled from these.
func (f Field) Descriptor() string {
	var b strings.Builder
	b.WriteString(f.label)
	b.WriteString(" (")
	b.WriteString(string(f.kind))
	if f.required {
		b.WriteString(", required")
	}
	b.WriteString(")")
	return b.String()
}

// Schema represents a complete generated form definition: a title, an
// optional description, and an ordered list of fields.
type Schema struct {
	title       string
	description string
	fields      []Field
}

// NewSchema creates a new Schema.
func NewSchema(title, description string, fields []Field) Schema {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return Schema{
		title:       title,
		description: description,
		fields:      fs,
	}
}

// Title returns the form title.
func (s Schema) Title() string { return s.title }

// Description returns the form description.
func (s Schema) Description() string { return s.description }

// Fields returns the ordered field list.
func (s Schema) Fields() []Field {
	fs := make([]Field, len(s.fields))
	copy(fs, s.fields)
	return fs
}

// FieldCount returns the number of fields.
func (s Schema) FieldCount() int { return len(s.fields) }

// IsEmpty reports whether the schema has no fields.
func (s Schema) IsEmpty() bool { return len(s.fields) == 0 }

// schemaJSON is the wire/storage representation of a Schema.
type schemaJSON struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Fields      []fieldJSON `json:"fields"`
}

type fieldJSON struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s Schema) MarshalJSON() ([]byte, error) {
	out := schemaJSON{
		Title:       s.title,
		Description: s.description,
		Fields:      make([]fieldJSON, len(s.fields)),
	}
	for i, f := range s.fields {
		out.Fields[i] = fieldJSON{
			Key:      f.key,
			Label:    f.label,
			Kind:     string(f.kind),
			Required: f.required,
			Options:  f.options,
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. Unknown field kinds are
// normalized to text rather than rejected.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var in schemaJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("unmarshal schema: %w", err)
	}

	fields := make([]Field, len(in.Fields))
	for i, f := range in.Fields {
		key := f.Key
		if key == "" {
			key = KeyFromLabel(f.Label)
		}
		fields[i] = NewField(key, f.Label, NormalizeKind(f.Kind), f.Required, f.Options)
	}

	*s = NewSchema(in.Title, in.Description, fields)
	return nil
}

// ParseSchema decodes a Schema from its JSON representation.
func ParseSchema(data []byte) (Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// KeyFromLabel derives a snake_case field key from a human label,
// e.g. "Full Name" -> "full_name".
func KeyFromLabel(label string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
