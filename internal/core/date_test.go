package core

import (
	"encoding/json"
	"testing"
)

func TestAddMonthClamped(t *testing.T) {
	tests := []struct {
		name string
		in   Date
		want Date
	}{
		{"mid month", NewDate(2025, 3, 15), NewDate(2025, 4, 15)},
		{"jan 31 to feb 28", NewDate(2025, 1, 31), NewDate(2025, 2, 28)},
		{"jan 31 leap year", NewDate(2024, 1, 31), NewDate(2024, 2, 29)},
		{"mar 31 to apr 30", NewDate(2025, 3, 31), NewDate(2025, 4, 30)},
		{"dec rolls year", NewDate(2025, 12, 5), NewDate(2026, 1, 5)},
		{"oct 31 to nov 30", NewDate(2025, 10, 31), NewDate(2025, 11, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.AddMonthClamped()
			if !got.Equal(tt.want.Time) {
				t.Errorf("AddMonthClamped(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, 2, 28)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-02-28"` {
		t.Fatalf("marshal = %s", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip = %s, want %s", back, d)
	}

	var empty Date
	b, err = json.Marshal(empty)
	if err != nil {
		t.Fatalf("marshal empty: %v", err)
	}
	if string(b) != "null" {
		t.Fatalf("empty marshal = %s, want null", b)
	}
	if err := json.Unmarshal([]byte("null"), &back); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !back.IsEmpty() {
		t.Fatalf("null should decode to empty date")
	}

	// Legacy documents stored full ISO timestamps.
	if err := json.Unmarshal([]byte(`"2025-11-03T00:00:00.000Z"`), &back); err != nil {
		t.Fatalf("unmarshal ISO: %v", err)
	}
	if !back.Equal(NewDate(2025, 11, 3).Time) {
		t.Fatalf("ISO decode = %s", back)
	}
}

func TestMonthKey(t *testing.T) {
	k := NewMonthKey(2025, 3)
	if k != "2025-03" {
		t.Fatalf("key = %s", k)
	}
	if k.Prev() != "2025-02" {
		t.Errorf("Prev = %s", k.Prev())
	}
	if k.Next() != "2025-04" {
		t.Errorf("Next = %s", k.Next())
	}
	if MonthKey("2025-01").Prev() != "2024-12" {
		t.Errorf("jan Prev = %s", MonthKey("2025-01").Prev())
	}
	if k.Label() != "Março" {
		t.Errorf("Label = %s", k.Label())
	}

	if _, err := ParseMonthKey("2025-13"); err == nil {
		t.Errorf("expected error for month 13")
	}
	if _, err := ParseMonthKey("garbage"); err == nil {
		t.Errorf("expected error for garbage")
	}
	got, err := ParseMonthKey("2025-07")
	if err != nil || got != "2025-07" {
		t.Errorf("ParseMonthKey = %s, %v", got, err)
	}
}
