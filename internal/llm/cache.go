package llm

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/rs/zerolog/log"
)

// GenerationCache stores raw generator answers by request hash.
type GenerationCache interface {
	GetGeneration(hash string) (text string, found bool, err error)
	SetGeneration(hash, text string) error
}

// CachedGenerator wraps a Generator with a persistent cache so the same photo
// and prompt are only sent to the model once.
type CachedGenerator struct {
	inner Generator
	cache GenerationCache
}

// NewCachedGenerator creates a cached generator.
func NewCachedGenerator(inner Generator, cache GenerationCache) *CachedGenerator {
	return &CachedGenerator{inner: inner, cache: cache}
}

// hashRequest creates a SHA256 hash from the prompt and image data.
// Every part is length-prefixed to prevent boundary collisions
// (e.g. [A,B] vs [AB]).
func hashRequest(prompt string, images []Image) string {
	h := sha256.New()
	writePart := func(b []byte) {
		binary.Write(h, binary.LittleEndian, int64(len(b)))
		h.Write(b)
	}
	writePart([]byte(prompt))
	for _, img := range images {
		writePart([]byte(img.MIMEType))
		writePart(img.Data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Generate implements the Generator interface with caching. Cache errors are
// logged and never fail the request.
func (c *CachedGenerator) Generate(ctx context.Context, prompt string, images []Image) (*Generation, error) {
	hash := hashRequest(prompt, images)

	if c.cache != nil {
		text, found, err := c.cache.GetGeneration(hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check generation cache")
		} else if found {
			log.Debug().Str("hash", hash[:16]).Msg("generation cache hit")
			return &Generation{Text: text, Cached: true}, nil
		}
	}

	result, err := c.inner.Generate(ctx, prompt, images)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && result.Text != "" {
		if err := c.cache.SetGeneration(hash, result.Text); err != nil {
			log.Warn().Err(err).Msg("failed to cache generation")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached generation")
		}
	}

	return result, nil
}
