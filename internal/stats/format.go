package stats

import (
	"fmt"
	"strings"
	"time"
)

// FormatHandle renders a handle for display: ten-digit North American
// numbers (with or without a +1/1 prefix) become (XXX) XXX-XXXX, email
// handles pass through, and anything else is returned unchanged.
func FormatHandle(handleID string) string {
	if strings.Contains(handleID, "@") {
		return handleID
	}

	digits := handleID
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "+1"):
		digits = digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		digits = digits[1:]
	}
	if len(digits) != 10 || !allDigits(digits) {
		return handleID
	}
	return fmt.Sprintf("(%s) %s-%s", digits[0:3], digits[3:6], digits[6:10])
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// formatDate renders a message timestamp for search result pages.
func formatDate(t time.Time) string {
	return t.Format("Jan 2, 2006 3:04 PM")
}
