// Package board keeps the timetable of configured stop/pole/line boards in memory and
// renders their current departure view.
package board

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/ztm-departures/config"
	"github.com/theoremus-urban-solutions/ztm-departures/departures"
	"github.com/theoremus-urban-solutions/ztm-departures/ztm"
)

// MaxDepartures is the largest number of departures a board shows.
const MaxDepartures = 3

// Source supplies timetable records and stop metadata. *ztm.Client implements it.
type Source interface {
	Timetable(ctx context.Context, stopID, stopNr, line string) ([]departures.RawDeparture, error)
	StopInfo(ctx context.Context, stopID, stopNr string) (ztm.StopInfo, error)
}

// Settings are the display settings shared by all boards.
type Settings struct {
	Options      departures.Options
	TimetableURL string
	Location     *time.Location
}

// SettingsFromConfig builds board settings from the application configuration.
func SettingsFromConfig(cfg config.AppConfig) Settings {
	return Settings{
		Options: departures.Options{
			CeilingMinutes: cfg.Display.CeilingMinutes,
			CeilingLabel:   cfg.Display.CeilingLabel,
		},
		TimetableURL: cfg.Display.TimetableURL,
		Location:     cfg.Location(),
	}
}

// Board holds the records of today's timetable for one line at one stop pole.
// Records are fetched once per service day; views are computed on demand.
type Board struct {
	cfg      config.Board
	src      Source
	settings Settings

	mu          sync.RWMutex
	records     []departures.RawDeparture
	stop        ztm.StopInfo
	loaded      bool
	lastRefresh time.Time
	lastErr     error
}

// New creates a board. Departures outside 1..MaxDepartures are clamped.
func New(cfg config.Board, src Source, settings Settings) *Board {
	if settings.Location == nil {
		settings.Location = time.Local
	}
	settings.Options = settings.Options.Normalized()
	cfg.Departures = clampCount(cfg.Departures)
	return &Board{cfg: cfg, src: src, settings: settings}
}

func clampCount(n int) int {
	return min(max(n, 1), MaxDepartures)
}

// Name returns the board key.
func (b *Board) Name() string { return b.cfg.Name }

// Config returns the board configuration including the current departure count.
func (b *Board) Config() config.Board {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cfg
}

// SetCount changes how many departures the board shows without refetching.
func (b *Board) SetCount(n int) error {
	if n < 1 || n > MaxDepartures {
		return fmt.Errorf("departures must be between 1 and %d, got %d", MaxDepartures, n)
	}
	b.mu.Lock()
	b.cfg.Departures = n
	b.mu.Unlock()
	return nil
}

// Refresh fetches today's timetable. A line without departures today leaves the board
// empty; any other failure keeps the previous records and is returned.
func (b *Board) Refresh(ctx context.Context) error {
	records, err := b.src.Timetable(ctx, b.cfg.StopID, b.cfg.StopNr, b.cfg.Line)
	if errors.Is(err, departures.ErrNoDeparturesToday) {
		log.Printf("[%s] no departures today for line %s at %s/%s", b.cfg.Name, b.cfg.Line, b.cfg.StopID, b.cfg.StopNr)
		records, err = nil, nil
	}
	if err != nil {
		b.mu.Lock()
		b.lastErr = err
		b.mu.Unlock()
		return fmt.Errorf("board %s: %w", b.cfg.Name, err)
	}

	b.mu.RLock()
	needStop := b.stop.Name == ""
	b.mu.RUnlock()
	var stop ztm.StopInfo
	if needStop {
		info, serr := b.src.StopInfo(ctx, b.cfg.StopID, b.cfg.StopNr)
		if serr != nil {
			log.Printf("[%s] stop info unavailable: %v", b.cfg.Name, serr)
		} else {
			stop = info
		}
	}

	b.mu.Lock()
	prev, wasLoaded := b.records, b.loaded
	b.records = records
	b.loaded = true
	b.lastErr = nil
	b.lastRefresh = time.Now()
	if stop.Name != "" {
		b.stop = stop
	}
	b.mu.Unlock()

	logChanges(b.cfg.Name, prev, records, wasLoaded)
	return nil
}

func logChanges(name string, prev, next []departures.RawDeparture, wasLoaded bool) {
	switch {
	case !wasLoaded:
		log.Printf("[%s] loaded %d departures", name, len(next))
	case len(prev) != len(next):
		log.Printf("[%s] departure count changed from %d to %d", name, len(prev), len(next))
	case !slices.Equal(scheduledTimes(prev), scheduledTimes(next)):
		log.Printf("[%s] departure times changed", name)
	}
}

func scheduledTimes(records []departures.RawDeparture) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ScheduledTime
	}
	return out
}

// Records returns a copy of the current timetable.
func (b *Board) Records() []departures.RawDeparture {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.records)
}

// Loaded reports whether at least one refresh succeeded.
func (b *Board) Loaded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loaded
}

// LastError returns the error of the last failed refresh, nil after a success.
func (b *Board) LastError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastErr
}

// LastRefresh returns the time of the last successful refresh.
func (b *Board) LastRefresh() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastRefresh
}

// StopInfo returns the stop metadata seen by the last refresh.
func (b *Board) StopInfo() ztm.StopInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stop
}

// Select returns the next k departures at now, k <= 0 meaning the configured count.
func (b *Board) Select(now time.Time, k int) departures.SelectionResult {
	b.mu.RLock()
	records := b.records
	if k <= 0 {
		k = b.cfg.Departures
	}
	b.mu.RUnlock()
	return departures.Select(records, now.In(b.settings.Location), k, b.settings.Options)
}
