package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model produced no candidates.
var ErrEmptyResponse = errors.New("empty response from model")

// Image is one input picture for a generation request.
type Image struct {
	Data     []byte
	MIMEType string
}

// Usage contains token usage and cost information.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// Generation is the raw text answer of the model plus its usage.
type Generation struct {
	Text   string
	Usage  Usage
	Cached bool // True when served from the generation cache
}

// Generator sends a prompt and images to a multimodal model and returns its
// free-form text answer. The text carries no format guarantee.
type Generator interface {
	Generate(ctx context.Context, prompt string, images []Image) (*Generation, error)
}
