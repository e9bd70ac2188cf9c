// Package maintenance runs background housekeeping for the bot's store.
package maintenance

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// PruneInterval is how often to prune old cached generations.
	PruneInterval = 24 * time.Hour

	// GenerationsMaxAge is how long to keep cached generations before pruning.
	GenerationsMaxAge = 30 * 24 * time.Hour // 30 days
)

// CachePurger deletes cached generations older than a given age.
type CachePurger interface {
	PurgeGenerations(olderThan time.Duration) (int64, error)
}

// Service periodically prunes the generation cache.
type Service struct {
	store    CachePurger
	interval time.Duration
	maxAge   time.Duration
}

// NewService creates a new maintenance service with the default schedule.
func NewService(store CachePurger) *Service {
	return &Service{
		store:    store,
		interval: PruneInterval,
		maxAge:   GenerationsMaxAge,
	}
}

// WithInterval overrides how often the cache is pruned.
func (s *Service) WithInterval(interval time.Duration) *Service {
	s.interval = interval
	return s
}

// WithMaxAge overrides how old an entry must be to get pruned.
func (s *Service) WithMaxAge(maxAge time.Duration) *Service {
	s.maxAge = maxAge
	return s
}

// Run prunes once immediately and then on every tick. It blocks until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Dur("maxAge", s.maxAge).Msg("starting maintenance service")

	s.pruneGenerations()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("maintenance service stopped")
			return
		case <-ticker.C:
			s.pruneGenerations()
		}
	}
}

// pruneGenerations removes stale cache entries. Failures are logged and
// retried on the next tick.
func (s *Service) pruneGenerations() {
	n, err := s.store.PurgeGenerations(s.maxAge)
	if err != nil {
		log.Warn().Err(err).Msg("failed to prune generation cache")
		return
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("pruned old cached generations")
	}
}
