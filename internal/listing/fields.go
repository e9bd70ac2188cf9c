package listing

// Canonical field names. Every contract uses these names so that records from
// different prompts land in the same export columns.
const (
	FieldTitle       = "title"
	FieldPrice       = "price"
	FieldDescription = "description"
	FieldTip         = "tip"
	FieldCaption     = "caption"
)

// CanonicalFields is the fixed, ordered set of listing attributes the pipeline
// always attempts to produce.
var CanonicalFields = []string{FieldTitle, FieldPrice, FieldDescription, FieldTip, FieldCaption}

// requiredFields are the fields counted by the minimum-field check. Caption is
// optional because batch exports are usable without it.
var requiredFields = []string{FieldTitle, FieldPrice, FieldDescription, FieldTip}

// MinCanonicalFields is the default number of required fields a record must
// carry to be kept in a batch.
const MinCanonicalFields = 4

// DefaultSeparator splits pipe-positional responses.
const DefaultSeparator = "|"

// Mode selects how field values are located in a raw response.
type Mode int

const (
	// ModeDelimited bounds each field by its own label and the next field's label.
	ModeDelimited Mode = iota
	// ModePipe maps the Nth separator-delimited segment to the Nth field.
	ModePipe
)

func (m Mode) String() string {
	switch m {
	case ModeDelimited:
		return "delimited"
	case ModePipe:
		return "pipe"
	default:
		return "unknown"
	}
}

// Field describes one value the generator is asked to emit.
type Field struct {
	Name        string // Canonical field name (e.g. "title")
	Label       string // Label that precedes the value in delimited mode (e.g. "TITLE:")
	Instruction string // What the generator should write for this field
}

// FieldSpec is an ordered list of fields plus the extraction mode. Exactly one
// mode is active per spec.
type FieldSpec struct {
	Mode      Mode
	Fields    []Field
	Separator string
}

// NewDelimitedSpec creates a label-bounded spec. Field order must match the
// order the prompt asks the generator to use.
func NewDelimitedSpec(fields ...Field) FieldSpec {
	return FieldSpec{Mode: ModeDelimited, Fields: fields}
}

// NewPipeSpec creates a positional spec using DefaultSeparator.
func NewPipeSpec(fields ...Field) FieldSpec {
	return FieldSpec{Mode: ModePipe, Fields: fields, Separator: DefaultSeparator}
}

// Names returns the field names in declared order.
func (s FieldSpec) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

func (s FieldSpec) separator() string {
	if s.Separator == "" {
		return DefaultSeparator
	}
	return s.Separator
}
