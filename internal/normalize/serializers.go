package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// intRuns captures optionally signed digit runs.
	intRuns = regexp.MustCompile(`[-+]?\d+`)
	// floatRuns additionally captures decimal points.
	floatRuns = regexp.MustCompile(`[-+]?(?:\d*\.*\d+)`)
	// spaceRuns matches any whitespace run, newlines included.
	spaceRuns = regexp.MustCompile(`\s+`)
)

var (
	trueValues  = map[string]struct{}{"yes": {}, "true": {}, "1": {}, "oui": {}}
	falseValues = map[string]struct{}{"no": {}, "false": {}, "0": {}, "non": {}}
)

// SerializeInt concatenates every signed digit run found in raw and
// parses the result. It reports false when raw carries no digits or
// the concatenation does not parse.
func SerializeInt(raw string) (int64, bool) {
	joined := strings.Join(intRuns.FindAllString(strings.TrimSpace(raw), -1), "")
	if joined == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(joined, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SerializeFloat concatenates every numeric run (decimal points
// included) found in raw and parses the result.
func SerializeFloat(raw string) (float64, bool) {
	joined := strings.Join(floatRuns.FindAllString(strings.TrimSpace(raw), -1), "")
	if joined == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(joined, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// SerializeBool maps a fixed vocabulary to booleans. Anything outside
// the vocabulary reports false rather than guessing.
func SerializeBool(raw string) (bool, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := trueValues[v]; ok {
		return true, true
	}
	if _, ok := falseValues[v]; ok {
		return false, true
	}
	return false, false
}

// SerializeString collapses all whitespace runs to a single space and
// trims. An all-whitespace input reports false.
func SerializeString(raw string) (string, bool) {
	cleaned := strings.TrimSpace(spaceRuns.ReplaceAllString(raw, " "))
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}
