package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestISBN(t *testing.T) {
	tests := []struct {
		name  string
		isbn  string
		valid bool
	}{
		{name: "valid", isbn: "9780131495050", valid: true},
		{name: "valid second", isbn: "9780306406157", valid: true},
		{name: "checksum mismatch", isbn: "9780132350881", valid: false},
		{name: "empty", isbn: "", valid: false},
		{name: "too short", isbn: "123", valid: false},
		{name: "hyphenated", isbn: "978-0-13-149505-0", valid: false},
		{name: "letters", isbn: "invalidISBN", valid: false},
		{name: "thirteen chars with letter", isbn: "978013149505X", valid: false},
		{name: "too long", isbn: "97801314950500", valid: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, ISBN(tc.isbn))
		})
	}
}

func TestISBN_ChecksumProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.StringMatching(`[0-9]{12}`).Draw(t, "prefix")
		last := byte('0' + rapid.IntRange(0, 9).Draw(t, "last"))

		sum := 0
		for i := 0; i < 12; i++ {
			w := 1
			if i%2 == 1 {
				w = 3
			}
			sum += int(prefix[i]-'0') * w
		}
		holds := (10-sum%10)%10 == int(last-'0')

		if got := ISBN(prefix + string(last)); got != holds {
			t.Fatalf("ISBN(%q) = %v, checksum holds = %v", prefix+string(last), got, holds)
		}
	})
}

func TestISBN_RejectsNonDigits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[0-9]{0,12}[^0-9][0-9]{0,12}`).Draw(t, "s")
		if ISBN(s) {
			t.Fatalf("ISBN(%q) accepted a non-digit string", s)
		}
	})
}

func TestUserID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{name: "twelve digits", id: "123456789123", valid: true},
		{name: "nine digits", id: "123456789", valid: false},
		{name: "mixed", id: "1A2B3C456789", valid: false},
		{name: "empty", id: "", valid: false},
		{name: "thirteen digits", id: "1234567891234", valid: false},
		{name: "unicode digits", id: "١٢٣٤٥٦٧٨٩١٢٣", valid: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, UserID(tc.id))
		})
	}
}

func TestUserID_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")

		want := len(s) == 12
		for _, r := range s {
			if r < '0' || r > '9' {
				want = false
			}
		}

		if got := UserID(s); got != want {
			t.Fatalf("UserID(%q) = %v, want %v", s, got, want)
		}
	})
}

func TestCheckDigit(t *testing.T) {
	assert.Equal(t, byte('0'), CheckDigit("978013149505"))
	assert.Equal(t, byte('4'), CheckDigit("978013235088"))
}
