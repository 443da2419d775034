package timex

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDuration_UnmarshalString(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"1m30s"`), &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Std() != 90*time.Second {
		t.Fatalf("expected 90s, got %v", d.Std())
	}
}

func TestDuration_UnmarshalNumber(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`1000000000`), &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Std() != time.Second {
		t.Fatalf("expected 1s, got %v", d.Std())
	}
}

func TestDuration_UnmarshalInvalid(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"not-a-duration"`), &d); err == nil {
		t.Fatalf("expected error for invalid duration string")
	}
	if err := json.Unmarshal([]byte(`true`), &d); err == nil {
		t.Fatalf("expected error for invalid duration type")
	}
}

func TestDuration_MarshalRoundTrip(t *testing.T) {
	d := Duration(15 * time.Second)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var back Duration
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back != d {
		t.Fatalf("round trip mismatch: %v vs %v", back, d)
	}
}
