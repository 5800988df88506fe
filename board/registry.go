package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/theoremus-urban-solutions/ztm-departures/config"
)

// Registry holds named boards in configuration order.
type Registry struct {
	mu     sync.RWMutex
	boards map[string]*Board
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{boards: make(map[string]*Board)}
}

// FromConfig creates a registry with one board per configured board.
func FromConfig(cfg config.AppConfig, src Source) (*Registry, error) {
	reg := NewRegistry()
	settings := SettingsFromConfig(cfg)
	for _, bc := range cfg.Boards {
		if err := reg.Add(New(bc, src, settings)); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Add registers b. Board names are unique.
func (r *Registry) Add(b *Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.boards[b.Name()]; ok {
		return fmt.Errorf("board %q already registered", b.Name())
	}
	r.boards[b.Name()] = b
	r.order = append(r.order, b.Name())
	return nil
}

// Get returns the named board.
func (r *Registry) Get(name string) (*Board, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.boards[name]
	return b, ok
}

// List returns the boards in registration order.
func (r *Registry) List() []*Board {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Board, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.boards[n])
	}
	return out
}

// Len returns the number of boards.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.boards)
}

// Refresh refreshes every board once, sequentially, and joins the errors.
func (r *Registry) Refresh(ctx context.Context) error {
	var errs []error
	for _, b := range r.List() {
		if err := b.Refresh(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
