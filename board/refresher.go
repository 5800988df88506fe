package board

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/ztm-departures/config"
)

// Refresher reloads every board of a registry once per service day at a fixed local
// time plus a random jitter. A board whose refresh fails is retried once after
// RetryDelay.
type Refresher struct {
	registry   *Registry
	hour       int
	minute     int
	jitterMax  time.Duration
	retryDelay time.Duration
	loc        *time.Location

	// jitter returns a random duration in [0, limit). Replaced in tests.
	jitter func(limit time.Duration) time.Duration
}

// NewRefresher creates a refresher for the boards of reg.
func NewRefresher(reg *Registry, cfg config.RefreshConfig, loc *time.Location) *Refresher {
	if loc == nil {
		loc = time.Local
	}
	h, m := cfg.DailyClock()
	return &Refresher{
		registry:   reg,
		hour:       h,
		minute:     m,
		jitterMax:  time.Duration(cfg.JitterMaxSeconds) * time.Second,
		retryDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
		loc:        loc,
		jitter:     randomJitter,
	}
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(limit)))
}

// NextRun returns the first daily refresh instant strictly after now, jitter included.
func (r *Refresher) NextRun(now time.Time) time.Time {
	local := now.In(r.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), r.hour, r.minute, 0, 0, r.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, r.hour, r.minute, 0, 0, r.loc)
	}
	return next.Add(r.jitter(r.jitterMax))
}

// Run refreshes all boards immediately and then daily until ctx is done.
func (r *Refresher) Run(ctx context.Context) error {
	r.RefreshAll(ctx)
	for {
		next := r.NextRun(time.Now())
		log.Printf("Next timetable refresh at %s", next.Format(time.RFC3339))
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		r.RefreshAll(ctx)
	}
}

// RefreshAll refreshes every board concurrently and waits for the first attempts.
// Retries of failed boards run in the background.
func (r *Refresher) RefreshAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, b := range r.registry.List() {
		b := b
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Refresh(ctx); err != nil {
				log.Printf("Refresh failed: %v; retrying in %s", err, r.retryDelay)
				go r.retry(ctx, b)
			}
		}()
	}
	wg.Wait()
}

func (r *Refresher) retry(ctx context.Context, b *Board) {
	timer := time.NewTimer(r.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	if err := b.Refresh(ctx); err != nil {
		log.Printf("Retry failed: %v", err)
	}
}
