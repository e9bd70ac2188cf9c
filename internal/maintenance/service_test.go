package maintenance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingPurger struct {
	mu    sync.Mutex
	calls []time.Duration
	err   error
}

func (p *countingPurger) PurgeGenerations(olderThan time.Duration) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, olderThan)
	return 1, p.err
}

func (p *countingPurger) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func TestRun_PrunesImmediatelyAndOnTick(t *testing.T) {
	purger := &countingPurger{}
	svc := NewService(purger).WithInterval(10 * time.Millisecond).WithMaxAge(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return purger.count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	purger.mu.Lock()
	defer purger.mu.Unlock()
	for _, age := range purger.calls {
		assert.Equal(t, time.Hour, age)
	}
}

func TestRun_SurvivesErrors(t *testing.T) {
	purger := &countingPurger{err: errors.New("database locked")}
	svc := NewService(purger).WithInterval(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	assert.Eventually(t, func() bool { return purger.count() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(&countingPurger{})
	assert.Equal(t, PruneInterval, svc.interval)
	assert.Equal(t, GenerationsMaxAge, svc.maxAge)
}
