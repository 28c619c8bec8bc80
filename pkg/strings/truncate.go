package strings

import (
	"strings"
)

// MinTruncateLen is the minimum maxLen value for Truncate.
// Values smaller than this would not leave room for meaningful content plus "...".
const MinTruncateLen = 4

// DefaultCellMaxLen bounds single table cells such as error responses.
const DefaultCellMaxLen = 60

// Truncate collapses whitespace to single spaces and cuts s to maxLen runes,
// ending in "..." when shortened. maxLen is clamped to MinTruncateLen.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
