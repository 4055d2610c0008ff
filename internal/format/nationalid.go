package format

import (
	"regexp"
	"strings"
)

var nationalIDPattern = regexp.MustCompile(`^\d{5}-\d{7}-\d$`)

// NationalIDPlaceholder shows the expected CNIC layout.
const NationalIDPlaceholder = "00000-0000000-0"

// NationalID applies the live CNIC mask NNNNN-NNNNNNN-N. Non-digits are
// dropped and input is capped at 13 digits, so partial input at any
// keystroke yields a well-formed prefix.
func NationalID(raw string) string {
	digits := make([]byte, 0, 13)
	for i := 0; i < len(raw) && len(digits) < 13; i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}

	var b strings.Builder
	for i, d := range digits {
		if i == 5 || i == 12 {
			b.WriteByte('-')
		}
		b.WriteByte(d)
	}
	return b.String()
}

// IsNationalID reports whether s is a complete CNIC.
func IsNationalID(s string) bool {
	return nationalIDPattern.MatchString(s)
}
