package release

import (
	"fmt"
	"strconv"
	"strings"
)

var (
	shortMonths = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	longMonths  = []string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"}
)

// ParseYear extracts the year from a partial date.
// Leading digits of the first segment are used, so "1959", "1959-08" and
// "1959-08-17" all yield 1959.
func ParseYear(date string) (int, bool) {
	first, _, _ := strings.Cut(strings.TrimSpace(date), "-")
	end := 0
	for end < len(first) && first[end] >= '0' && first[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	year, err := strconv.Atoi(first[:end])
	if err != nil {
		return 0, false
	}
	return year, true
}

// FormatDate renders a partial date for display:
//
//	"1959"       -> "1959"
//	"1959-08"    -> "Aug 1959"
//	"1959-08-17" -> "August 17, 1959"
//
// Dates that do not fit those shapes are returned unchanged.
func FormatDate(date string) string {
	if date == "" {
		return ""
	}

	parts := strings.Split(date, "-")
	switch len(parts) {
	case 1:
		return parts[0]
	case 2:
		month, ok := monthIndex(parts[1])
		if !ok {
			return date
		}
		return fmt.Sprintf("%s %s", shortMonths[month], parts[0])
	case 3:
		month, ok := monthIndex(parts[1])
		if !ok {
			return date
		}
		day, err := strconv.Atoi(parts[2])
		if err != nil {
			return date
		}
		return fmt.Sprintf("%s %d, %s", longMonths[month], day, parts[0])
	default:
		return date
	}
}

func monthIndex(s string) (int, bool) {
	m, err := strconv.Atoi(s)
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m - 1, true
}
