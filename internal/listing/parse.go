package listing

import "strings"

// Parse extracts the fields declared in spec from a raw generator response.
// It never fails: a field that cannot be located is simply absent from the
// returned record, and the remaining fields are unaffected.
func Parse(raw string, spec FieldSpec) Record {
	var values map[string]string
	switch spec.Mode {
	case ModePipe:
		values = extractPositional(raw, spec)
	default:
		values = extractDelimited(raw, spec)
	}
	return NewRecord(values)
}

// extractDelimited returns, for each field, the text between the first
// occurrence of its label and the first occurrence of the next declared
// field's label after it. Without a following label the value runs to the
// end of the response.
func extractDelimited(raw string, spec FieldSpec) map[string]string {
	values := make(map[string]string, len(spec.Fields))
	for i, f := range spec.Fields {
		if f.Label == "" {
			continue
		}
		start := strings.Index(raw, f.Label)
		if start == -1 {
			continue
		}
		rest := raw[start+len(f.Label):]

		end := len(rest)
		if i+1 < len(spec.Fields) {
			if next := spec.Fields[i+1].Label; next != "" {
				if j := strings.Index(rest, next); j != -1 {
					end = j
				}
			}
		}
		values[f.Name] = strings.TrimSpace(rest[:end])
	}
	return values
}

// extractPositional splits the whole response on the separator and maps
// segment i to field i. Extra segments are ignored.
func extractPositional(raw string, spec FieldSpec) map[string]string {
	segments := SplitSegments(raw, spec.separator())
	values := make(map[string]string, len(spec.Fields))
	for i, f := range spec.Fields {
		if i >= len(segments) {
			break
		}
		values[f.Name] = segments[i]
	}
	return values
}

// SplitSegments splits s on sep and trims whitespace from every segment.
func SplitSegments(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
