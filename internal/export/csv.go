// Package export serializes batch results into tabular files.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/raine/reseller-lens/internal/batch"
	"github.com/raine/reseller-lens/internal/listing"
)

// ErrHeaderMismatch is returned when decoding a file whose header is not the
// canonical column set.
var ErrHeaderMismatch = errors.New("unexpected export header")

// column maps a header name to the canonical field it holds.
type column struct {
	Header string
	Field  string
}

// columns is the fixed export layout, in canonical field order.
var columns = []column{
	{"Title", listing.FieldTitle},
	{"Price", listing.FieldPrice},
	{"Description", listing.FieldDescription},
	{"Tip", listing.FieldTip},
	{"Caption", listing.FieldCaption},
}

// Header returns the export header row.
func Header() []string {
	h := make([]string, len(columns))
	for i, c := range columns {
		h[i] = c.Header
	}
	return h
}

// recordToRow renders a record as one row. Absent fields are empty cells.
func recordToRow(rec listing.Record) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		row[i] = rec.Value(c.Field)
	}
	return row
}

// rowToRecord is the inverse of recordToRow.
func rowToRecord(row []string) listing.Record {
	values := make(map[string]string, len(columns))
	for i, c := range columns {
		if i < len(row) {
			values[c.Field] = row[i]
		}
	}
	return listing.NewRecord(values)
}

// Writer wraps csv.Writer for exporting listing records.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the canonical header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Header())
}

// WriteRecords writes one row per record.
func (w *Writer) WriteRecords(records []listing.Record) error {
	for _, rec := range records {
		if err := w.csv.Write(recordToRow(rec)); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer and returns any write error.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

// EncodeCSV renders a batch result as CSV. The output only depends on the
// records, so equal results always encode to equal bytes.
func EncodeCSV(result batch.Result) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteRecords(result.Records()); err != nil {
		return nil, fmt.Errorf("failed to write rows: %w", err)
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCSV reads records back from an EncodeCSV export.
func DecodeCSV(data []byte) ([]listing.Record, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(columns)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rowsToRecords(rows)
}

func rowsToRecords(rows [][]string) ([]listing.Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrHeaderMismatch)
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	records := make([]listing.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, rowToRecord(row))
	}
	return records, nil
}

func checkHeader(got []string) error {
	want := Header()
	if len(got) < len(want) {
		return fmt.Errorf("%w: %v", ErrHeaderMismatch, got)
	}
	for i, h := range want {
		if got[i] != h {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrHeaderMismatch, i+1, got[i], h)
		}
	}
	return nil
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// BuildFilename returns a filesystem-safe export name:
// {prefix}_{YYYY-MM-DD}_{id}.{ext}
func BuildFilename(prefix, id, ext string, t time.Time) string {
	prefix = strings.Trim(nonAlphanumeric.ReplaceAllString(prefix, "_"), "_")
	if prefix == "" {
		prefix = "listings"
	}
	name := fmt.Sprintf("%s_%s", prefix, t.Format("2006-01-02"))
	if id = nonAlphanumeric.ReplaceAllString(id, ""); id != "" {
		if len(id) > 8 {
			id = id[:8]
		}
		name += "_" + id
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}
