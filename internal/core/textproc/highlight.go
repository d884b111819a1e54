package textproc

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	OutOfRangeOpen = "<span style='color:red; font-weight:bold;'>"
	InRangeOpen    = "<span style='color:green; font-weight:bold;'>"
	spanClose      = "</span>"
)

// Matches "<label> <value> [unit] (<min> - <max>)", e.g. "Hemoglobin 9.0 g/dL (12.0-15.0)".
var referenceRangePattern = regexp.MustCompile(`([A-Za-z\s]+)\s+([\d.]+)\s*[a-zA-Z/%^]*\s*\(([\d.]+)\s*-\s*([\d.]+)\)`)

// HighlightRanges wraps every "value (min-max)" reading in a red span when the
// value falls outside the range and a green span otherwise. Readings whose
// numbers do not parse are left as they are. Each match is wrapped at its own
// position, so repeated identical readings are wrapped exactly once each.
func HighlightRanges(text string) string {
	matches := referenceRangePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + len(matches)*(len(OutOfRangeOpen)+len(spanClose)))
	last := 0
	for _, m := range matches {
		value, errValue := strconv.ParseFloat(text[m[4]:m[5]], 64)
		lower, errLower := strconv.ParseFloat(text[m[6]:m[7]], 64)
		upper, errUpper := strconv.ParseFloat(text[m[8]:m[9]], 64)
		if errValue != nil || errLower != nil || errUpper != nil {
			continue
		}

		open := InRangeOpen
		if value < lower || value > upper {
			open = OutOfRangeOpen
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(open)
		b.WriteString(text[m[0]:m[1]])
		b.WriteString(spanClose)
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
