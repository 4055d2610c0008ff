// Package format holds the display conversions used by card forms and panels.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MonthNames are the three-letter month abbreviations used on cards.
var MonthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var (
	yearMonthPattern = regexp.MustCompile(`^(\d{4})(?:-(\d{1,2}))?$`)
	displayPattern   = regexp.MustCompile(`^([A-Za-z]{3})-(\d{4})$`)
)

// parseYearMonth splits a YYYY-MM value. A missing month means January.
func parseYearMonth(value string) (year, month int, ok bool) {
	m := yearMonthPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	month = 1
	if m[2] != "" {
		month, _ = strconv.Atoi(m[2])
	}
	if month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// parseDisplay splits a Mon-YYYY value.
func parseDisplay(value string) (year, month int, ok bool) {
	m := displayPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, 0, false
	}
	for i, name := range MonthNames {
		if strings.EqualFold(name, m[1]) {
			year, _ = strconv.Atoi(m[2])
			return year, i + 1, true
		}
	}
	return 0, 0, false
}

func display(year, month int) string {
	return fmt.Sprintf("%s-%04d", MonthNames[month-1], year)
}

// FormatMonthYear converts "YYYY-MM" to "Mon-YYYY" ("2025-01" -> "Jan-2025").
// Empty input yields "", anything unparseable is returned unchanged.
func FormatMonthYear(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	year, month, ok := parseYearMonth(value)
	if !ok {
		return value
	}
	return display(year, month)
}

// AddOneYear advances a month value by exactly one year and formats it for
// display. Both "YYYY-MM" and "Mon-YYYY" inputs are accepted.
func AddOneYear(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	year, month, ok := parseYearMonth(value)
	if !ok {
		year, month, ok = parseDisplay(value)
	}
	if !ok {
		return value
	}
	return display(year+1, month)
}

// DisplayToInputValue is the inverse of FormatMonthYear: "Jan-2025" becomes
// "2025-01". Unrecognized strings pass through unchanged.
func DisplayToInputValue(value string) string {
	year, month, ok := parseDisplay(value)
	if !ok {
		return value
	}
	return fmt.Sprintf("%04d-%02d", year, month)
}

// NormalizeMonth turns a form month value into its display form and leaves
// display-form and unrecognized values alone.
func NormalizeMonth(value string) string {
	value = strings.TrimSpace(value)
	if _, _, ok := parseDisplay(value); ok {
		return FormatMonthYear(DisplayToInputValue(value))
	}
	return FormatMonthYear(value)
}
