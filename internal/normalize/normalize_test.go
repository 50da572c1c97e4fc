package normalize

import (
	"testing"
)

func TestCount(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   int64
		wantOK bool
	}{
		{"separated string", "1,234", 1234, true},
		{"plain string", "42", 42, true},
		{"float string", "1234.0", 1234, true},
		{"json number", float64(987), 987, true},
		{"nil", nil, 0, false},
		{"garbage", "abc", 0, false},
		{"empty string", "", 0, false},
		{"bool", true, 0, false},
		{"big separated", "12,345,678", 12345678, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Count(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Count(%v) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNullableCount(t *testing.T) {
	if got, ok := NullableCount(nil); got != nil || !ok {
		t.Errorf("NullableCount(nil) = (%v, %v), want (nil, true)", got, ok)
	}
	if got, ok := NullableCount(float64(7)); got == nil || *got != 7 || !ok {
		t.Errorf("NullableCount(7) = (%v, %v), want (7, true)", got, ok)
	}
	if got, ok := NullableCount("junk"); got != nil || ok {
		t.Errorf("NullableCount(junk) = (%v, %v), want (nil, false)", got, ok)
	}
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   string
		wantOK bool
	}{
		{"separated string", "1,000,000,000,000,000,000", "1000000000000000000", true},
		{"float", float64(1.5), "1.5", true},
		{"nil", nil, "0", false},
		{"garbage", "n/a", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decimal(tt.in)
			if got.String() != tt.want || ok != tt.wantOK {
				t.Errorf("Decimal(%v) = (%s, %v), want (%s, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFloat(t *testing.T) {
	if got, ok := Float("3.25"); got != 3.25 || !ok {
		t.Errorf("Float(3.25) = (%v, %v)", got, ok)
	}
	if got, ok := Float(nil); got != 0 || ok {
		t.Errorf("Float(nil) = (%v, %v), want (0, false)", got, ok)
	}
	if got, ok := Float("abc"); got != 0 || ok {
		t.Errorf("Float(abc) = (%v, %v), want (0, false)", got, ok)
	}
}

func TestFlag(t *testing.T) {
	if !Flag(true) {
		t.Error("Flag(true) = false")
	}
	if Flag(nil) || Flag("true") || Flag(1.0) {
		t.Error("Flag should default to false for non-boolean input")
	}
}

func TestDateOnly(t *testing.T) {
	d, err := DateOnly("2024-07-15T09:30:00.000Z")
	if err != nil {
		t.Fatalf("DateOnly returned error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 7 || d.Day() != 15 {
		t.Errorf("DateOnly parsed %v, want 2024-07-15", d)
	}

	if _, err := DateOnly("not-a-date"); err == nil {
		t.Error("DateOnly(not-a-date) should return an error")
	}
	if _, err := DateOnly(""); err == nil {
		t.Error("DateOnly(empty) should return an error")
	}
}
