package osmag

import (
	"errors"
	"testing"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    ID
		wantErr bool
	}{
		{name: "stable", in: "42", want: Stable(42)},
		{name: "pending", in: "-7", want: Pending(7)},
		{name: "large stable", in: "123456789012", want: Stable(123456789012)},
		{name: "zero rejected", in: "0", wantErr: true},
		{name: "negative zero rejected", in: "-0", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "not a number", in: "abc", wantErr: true},
		{name: "float", in: "1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseID(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseID(%q) = %v, want error", tt.in, got)
				}
				if !errors.Is(err, ErrInvalidID) {
					t.Errorf("ParseID(%q) error = %v, want ErrInvalidID", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseID(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseID(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIDString(t *testing.T) {
	if got := Stable(15).String(); got != "15" {
		t.Errorf("Stable(15).String() = %q, want %q", got, "15")
	}
	if got := Pending(15).String(); got != "-15" {
		t.Errorf("Pending(15).String() = %q, want %q", got, "-15")
	}
}

func TestIDStates(t *testing.T) {
	var zero ID
	if !zero.IsZero() {
		t.Error("zero value should report IsZero")
	}
	if Stable(1).IsZero() {
		t.Error("Stable(1) should not report IsZero")
	}
	if Stable(1).IsPending() {
		t.Error("Stable(1) should not be pending")
	}
	if !Pending(1).IsPending() {
		t.Error("Pending(1) should be pending")
	}
	if Stable(3) == Pending(3) {
		t.Error("stable and pending IDs with equal magnitude must differ")
	}
	if Pending(9).Value() != 9 {
		t.Errorf("Pending(9).Value() = %d, want 9", Pending(9).Value())
	}
}
