package orgtime

import "strings"

// Property is one "key: value" pair from inside a :PROPERTIES: drawer.
type Property struct {
	Key   string
	Value string
}

// ParsePropertyLine recognizes a single ":KEY: VALUE" line inside a property
// drawer. Both the opening and closing colon of KEY must match at the start
// of the (already-trimmed-of-leading-whitespace) line.
func ParsePropertyLine(line string) (Property, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) == 0 || trimmed[0] != ':' {
		return Property{}, false
	}
	rest := trimmed[1:]
	end := strings.IndexByte(rest, ':')
	if end <= 0 {
		return Property{}, false
	}
	key := rest[:end]
	value := strings.TrimSpace(rest[end+1:])
	return Property{Key: key, Value: value}, true
}

// FormatPropertyLine renders a Property back to ":KEY: VALUE".
func FormatPropertyLine(p Property) string {
	return ":" + p.Key + ": " + p.Value
}

// ParseMultiValue splits a whitespace-separated multi-value property value
// (as used by ROAM_ALIASES / ROAM_REFS), honoring double-quoted items that
// may contain spaces.
func ParseMultiValue(value string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case c == ' ' && !inQuote:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return out
}

// FormatMultiValue renders a list of values back into a whitespace-separated
// string, quoting any item that contains whitespace.
func FormatMultiValue(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if strings.ContainsAny(v, " \t") {
			parts[i] = `"` + v + `"`
		} else {
			parts[i] = v
		}
	}
	return strings.Join(parts, " ")
}

const (
	PropertiesOpen  = ":PROPERTIES:"
	PropertiesClose = ":END:"
	LogbookOpen     = ":LOGBOOK:"
	LogbookClose    = ":END:"
)

// IsDrawerMarker reports whether the trimmed line equals marker exactly
// (markers are case-sensitive and match only at line start modulo leading
// whitespace).
func IsDrawerMarker(line, marker string) bool {
	return strings.TrimLeft(line, " \t") == marker
}
