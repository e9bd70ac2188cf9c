// Package batch runs the listing pipeline over a sequence of items, one
// generator request at a time, collecting the records that parse well enough
// to export.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/raine/reseller-lens/internal/listing"
	"github.com/raine/reseller-lens/internal/profit"
	"github.com/rs/zerolog/log"
)

// ErrPanic wraps a panic recovered from a request function.
var ErrPanic = errors.New("request panicked")

// Item is one unit of batch input, typically one product photo.
type Item struct {
	ID       string
	Data     []byte
	MIMEType string
}

// RequestFunc produces the raw generator response for one item.
type RequestFunc func(ctx context.Context, item Item) (string, error)

// Status is the outcome of processing one item.
type Status string

const (
	StatusOK       Status = "ok"
	StatusFailed   Status = "failed"   // Request returned an error or panicked
	StatusRejected Status = "rejected" // Response parsed but had too few fields
)

// Outcome records what happened to one input item.
type Outcome struct {
	Index  int
	ItemID string
	Status Status
	Err    error
	Record listing.Record
}

// Entry is a successfully processed item kept in the result.
type Entry struct {
	Index   int // Position in the input sequence
	ItemID  string
	Record  listing.Record
	Summary *profit.Summary // Set when a cost was supplied
}

// Result is the aggregated output of a batch.
type Result struct {
	Entries   []Entry
	Outcomes  []Outcome
	Attempted int
	Succeeded int
}

// Records returns the kept records in input order.
func (r Result) Records() []listing.Record {
	records := make([]listing.Record, len(r.Entries))
	for i, e := range r.Entries {
		records[i] = e.Record
	}
	return records
}

// Failed returns the number of items whose request failed.
func (r Result) Failed() int {
	return r.count(StatusFailed)
}

// Rejected returns the number of items dropped by the minimum-field check.
func (r Result) Rejected() int {
	return r.count(StatusRejected)
}

func (r Result) count(status Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// TotalProfit sums the valid profits of all entries. The amount is absent
// when no entry has a valid profit.
func (r Result) TotalProfit() listing.Amount {
	var total listing.Amount
	for _, e := range r.Entries {
		if e.Summary == nil || !e.Summary.Profit.Valid {
			continue
		}
		total = listing.Some(total.Value + e.Summary.Profit.Value)
	}
	return total
}

// Progress reports how many items have been handled so far.
type Progress struct {
	Completed int
	Total     int
}

// Fraction returns completed/total in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Completed) / float64(p.Total)
}

type options struct {
	minFields  int
	cost       *float64
	onProgress func(Progress)
}

// Option configures Process.
type Option func(*options)

// WithMinFields sets how many of title, price, description and tip a record
// needs to be kept. Zero keeps every record that completed its request.
func WithMinFields(n int) Option {
	return func(o *options) { o.minFields = n }
}

// WithCost computes a profit summary for every kept entry.
func WithCost(cost float64) Option {
	return func(o *options) { o.cost = &cost }
}

// WithProgress registers a callback invoked after every item.
func WithProgress(fn func(Progress)) Option {
	return func(o *options) { o.onProgress = fn }
}

// Process runs request for each item strictly in order and parses each
// response with the contract. A failing item never stops the batch or drops
// earlier results.
func Process(ctx context.Context, items []Item, request RequestFunc, contract listing.Contract, opts ...Option) Result {
	o := options{minFields: listing.MinCanonicalFields}
	for _, opt := range opts {
		opt(&o)
	}

	result := Result{
		Outcomes:  make([]Outcome, 0, len(items)),
		Attempted: len(items),
	}

	for i, item := range items {
		outcome := processItem(ctx, i, item, request, contract, o.minFields)
		result.Outcomes = append(result.Outcomes, outcome)

		logEvent := log.Info()
		if outcome.Status != StatusOK {
			logEvent = log.Warn().Err(outcome.Err)
		}
		logEvent.
			Int("index", i).
			Str("itemID", item.ID).
			Str("status", string(outcome.Status)).
			Str("contract", contract.Name).
			Int("fields", outcome.Record.CanonicalCount()).
			Msg("batch item processed")

		if outcome.Status == StatusOK {
			entry := Entry{Index: i, ItemID: item.ID, Record: outcome.Record}
			if o.cost != nil {
				s := profit.Compute(*o.cost, outcome.Record.Price)
				entry.Summary = &s
			}
			result.Entries = append(result.Entries, entry)
			result.Succeeded++
		}

		if o.onProgress != nil {
			o.onProgress(Progress{Completed: i + 1, Total: len(items)})
		}
	}

	return result
}

func processItem(ctx context.Context, index int, item Item, request RequestFunc, contract listing.Contract, minFields int) Outcome {
	outcome := Outcome{Index: index, ItemID: item.ID}

	raw, err := safeRequest(ctx, item, request)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}

	outcome.Record = contract.Parse(raw)
	if !outcome.Record.Qualifies(minFields) {
		outcome.Status = StatusRejected
		outcome.Err = fmt.Errorf("only %d of %d required fields present (missing %v)",
			outcome.Record.CanonicalCount(), minFields, outcome.Record.Missing())
		return outcome
	}

	outcome.Status = StatusOK
	return outcome
}

// safeRequest converts a panic inside request into an error.
func safeRequest(ctx context.Context, item Item, request RequestFunc) (raw string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return request(ctx, item)
}
