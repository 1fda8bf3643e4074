package task

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewTask(t *testing.T) {
	payload := map[string]any{"form_uuid": "abc-123"}
	tk := NewTask(OperationEmbedForm, int(PriorityNormal), payload)

	if tk.ID() != 0 {
		t.Errorf("expected zero ID before save, got %d", tk.ID())
	}
	if tk.Operation() != OperationEmbedForm {
		t.Errorf("expected operation %q, got %q", OperationEmbedForm, tk.Operation())
	}
	if tk.Priority() != int(PriorityNormal) {
		t.Errorf("expected priority %d, got %d", PriorityNormal, tk.Priority())
	}
	if tk.DedupKey() == "" {
		t.Error("expected a non-empty dedup key")
	}
}

func TestDedupKeyDeterministic(t *testing.T) {
	payload := map[string]any{
		"form_uuid": "abc-123",
		"owner_id":  "def-456",
		"attempt":   1,
	}
	// Map iteration order varies per run, the key must not.
	first := NewTask(OperationEmbedForm, int(PriorityNormal), payload).DedupKey()
	for range 50 {
		if got := NewTask(OperationEmbedForm, int(PriorityNormal), payload).DedupKey(); got != first {
			t.Fatalf("dedup key changed between runs: %q vs %q", got, first)
		}
	}
	if first != "centralign.form.embed:attempt=1,form_uuid=abc-123,owner_id=def-456" {
		t.Errorf("unexpected dedup key %q", first)
	}
}

func TestDedupKeyDistinguishesTasks(t *testing.T) {
	a := NewTask(OperationEmbedForm, int(PriorityNormal), map[string]any{"form_uuid": "a"})
	b := NewTask(OperationEmbedForm, int(PriorityNormal), map[string]any{"form_uuid": "b"})
	if a.DedupKey() == b.DedupKey() {
		t.Errorf("different payloads share dedup key %q", a.DedupKey())
	}

	c := NewTask(OperationBackfillEmbeddings, int(PriorityNormal), map[string]any{"form_uuid": "a"})
	if a.DedupKey() == c.DedupKey() {
		t.Errorf("different operations share dedup key %q", a.DedupKey())
	}
}

func TestPayloadIsCopied(t *testing.T) {
	payload := map[string]any{"form_uuid": "abc-123"}
	tk := NewTask(OperationEmbedForm, int(PriorityNormal), payload)

	payload["form_uuid"] = "mutated"
	if tk.StringValue("form_uuid") != "abc-123" {
		t.Error("mutating the input payload changed the task")
	}

	got := tk.Payload()
	got["form_uuid"] = "mutated again"
	if tk.StringValue("form_uuid") != "abc-123" {
		t.Error("mutating the returned payload changed the task")
	}
}

func TestNilPayload(t *testing.T) {
	tk := NewTask(OperationBackfillEmbeddings, int(PriorityBackground), nil)
	if tk.Payload() == nil {
		t.Fatal("expected an empty payload map, got nil")
	}
	if len(tk.Payload()) != 0 {
		t.Errorf("expected empty payload, got %v", tk.Payload())
	}
	if tk.DedupKey() != "centralign.index.backfill:" {
		t.Errorf("unexpected dedup key %q", tk.DedupKey())
	}
}

func TestStringValue(t *testing.T) {
	tk := NewTask(OperationEmbedForm, int(PriorityNormal), map[string]any{
		"form_uuid": "abc-123",
		"attempt":   3,
	})
	if got := tk.StringValue("form_uuid"); got != "abc-123" {
		t.Errorf("expected abc-123, got %q", got)
	}
	if got := tk.StringValue("attempt"); got != "" {
		t.Errorf("expected empty string for non-string value, got %q", got)
	}
	if got := tk.StringValue("missing"); got != "" {
		t.Errorf("expected empty string for missing key, got %q", got)
	}
}

func TestWithIDAndTimestamps(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	updated := created.Add(time.Minute)

	tk := NewTask(OperationEmbedForm, int(PriorityUserInitiated), map[string]any{"form_uuid": "x"})
	tk = tk.WithID(42).WithTimestamps(created, updated)

	if tk.ID() != 42 {
		t.Errorf("expected ID 42, got %d", tk.ID())
	}
	if !tk.CreatedAt().Equal(created) || !tk.UpdatedAt().Equal(updated) {
		t.Errorf("timestamps not applied: %v / %v", tk.CreatedAt(), tk.UpdatedAt())
	}
}

func TestNewTaskWithID(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tk := NewTaskWithID(7, "key", OperationEmbedForm, int(PriorityCritical),
		map[string]any{"form_uuid": "x"}, created, created)

	if tk.ID() != 7 || tk.DedupKey() != "key" {
		t.Errorf("fields not preserved: id=%d key=%q", tk.ID(), tk.DedupKey())
	}
}

func TestPayloadJSON(t *testing.T) {
	tk := NewTask(OperationEmbedForm, int(PriorityNormal), map[string]any{"form_uuid": "abc"})
	raw, err := tk.PayloadJSON()
	if err != nil {
		t.Fatalf("PayloadJSON: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["form_uuid"] != "abc" {
		t.Errorf("round trip lost payload: %v", decoded)
	}
}

func TestPriorityOrdering(t *testing.T) {
	if !(PriorityBackground < PriorityNormal &&
		PriorityNormal < PriorityUserInitiated &&
		PriorityUserInitiated < PriorityCritical) {
		t.Error("priority levels out of order")
	}
}
