package contacts

import (
	"slices"
	"testing"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"punctuation only", "+() -", nil},
		{"short local number", "637-6797", []string{"6376797"}},
		{"nine digits", "123456789", []string{"123456789"}},
		{"ten digits", "(555) 123-4567", []string{"5551234567"}},
		{"eleven digits with country code", "+1 555-123-4567", []string{"15551234567", "5551234567"}},
		{"eleven digits other prefix", "25551234567", []string{"25551234567", "5551234567"}},
		{"twelve digits", "+44 7911 123456", []string{"447911123456", "7911123456"}},
		{"email", "  Bob@Example.COM ", []string{"bob@example.com"}},
		{"blank email", " @ ", []string{"@"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Keys(tt.in); !slices.Equal(got, tt.want) {
				t.Fatalf("Keys(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeysAlwaysIncludeTenDigitSuffix(t *testing.T) {
	inputs := []string{
		"5551234567",
		"15551234567",
		"+1 (555) 123-4567",
		"445551234567",
		"0044 20 7946 0958",
		"999 888 777 666 555",
	}
	for _, in := range inputs {
		digits := Digits(in)
		if len(digits) < 10 {
			t.Fatalf("fixture %q has fewer than 10 digits", in)
		}
		if !slices.Contains(Keys(in), digits[len(digits)-10:]) {
			t.Fatalf("Keys(%q) = %q, missing ten-digit suffix", in, Keys(in))
		}
	}
}

func TestKeysDeterministic(t *testing.T) {
	for _, in := range []string{"+1 555-123-4567", "bob@example.com", "12"} {
		if a, b := Keys(in), Keys(in); !slices.Equal(a, b) {
			t.Fatalf("Keys(%q) not stable: %q vs %q", in, a, b)
		}
	}
}

func TestLookupOrder(t *testing.T) {
	if got := lookupOrder(""); got != nil {
		t.Fatalf("lookupOrder(\"\") = %q, want nil", got)
	}
	tests := map[string][]string{
		"123456789":    {"123456789"},
		"5551234567":   {"5551234567"},
		"15551234567":  {"15551234567", "5551234567"},
		"445551234567": {"445551234567", "5551234567"},
	}
	for in, want := range tests {
		if got := lookupOrder(in); !slices.Equal(got, want) {
			t.Fatalf("lookupOrder(%q) = %q, want %q", in, got, want)
		}
	}
}
