package stats

import (
	"testing"
	"time"
)

func TestFormatHandle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+15195551234", "(519) 555-1234"},
		{"15195551234", "(519) 555-1234"},
		{"5195551234", "(519) 555-1234"},
		{"bob@example.com", "bob@example.com"},
		{"+442071234567", "+442071234567"}, // non-NANP number passes through
		{"22000", "22000"},                 // short code
		{"", ""},
		{"+1519555123x", "+1519555123x"},
	}
	for _, tc := range cases {
		if got := FormatHandle(tc.in); got != tc.want {
			t.Errorf("FormatHandle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	at := time.Date(2023, 1, 2, 15, 4, 0, 0, time.UTC)
	if got := formatDate(at); got != "Jan 2, 2023 3:04 PM" {
		t.Errorf("formatDate = %q", got)
	}
}
