package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// PositiveInt parses s and falls back when it is missing, invalid or < 1.
// Results above max are clamped when max > 0.
func PositiveInt(s string, fallback, max int) int {
	n := StringToInt(s)
	if n < 1 {
		return fallback
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
