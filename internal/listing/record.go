package listing

import "strings"

// lineBreaks folds Windows and old Mac line endings into '\n'.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Record holds the fields recovered from one generator response.
// Fields only contains values that were actually found; a missing key means
// the field is absent.
type Record struct {
	Fields map[string]string
	Price  Amount // Numeric form of the price field, if it parsed
}

// NewRecord builds a record from field values, dropping empty ones and
// coercing the price field. Line breaks are stored as '\n' so a record
// survives a CSV round trip unchanged.
func NewRecord(values map[string]string) Record {
	rec := Record{Fields: make(map[string]string, len(values))}
	for name, v := range values {
		v = lineBreaks.Replace(v)
		if v != "" {
			rec.Fields[name] = v
		}
	}
	if p, ok := rec.Fields[FieldPrice]; ok {
		rec.Price = CoercePrice(p)
	}
	return rec
}

// Get returns the value of a field and whether it was present.
func (r Record) Get(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Value returns the field value, or an empty string when absent.
func (r Record) Value(name string) string {
	return r.Fields[name]
}

// Has reports whether the field was recovered.
func (r Record) Has(name string) bool {
	_, ok := r.Fields[name]
	return ok
}

// Title is a shorthand for the title field.
func (r Record) Title() string { return r.Value(FieldTitle) }

// IsEmpty reports whether no field at all was recovered.
func (r Record) IsEmpty() bool {
	return len(r.Fields) == 0
}

// CanonicalCount counts how many of title, price, description and tip are present.
func (r Record) CanonicalCount() int {
	n := 0
	for _, name := range requiredFields {
		if r.Has(name) {
			n++
		}
	}
	return n
}

// Qualifies reports whether the record has at least min required fields.
func (r Record) Qualifies(min int) bool {
	return r.CanonicalCount() >= min
}

// Missing returns the required fields that are absent, in canonical order.
func (r Record) Missing() []string {
	var missing []string
	for _, name := range requiredFields {
		if !r.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
