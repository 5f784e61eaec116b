package poller

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// RegistryConfig holds configuration for the poller registry
type RegistryConfig struct {
	IdleTimeout     time.Duration // Stop pollers nobody has touched for this long
	CleanupInterval time.Duration // How often to look for idle pollers
}

// DefaultRegistryConfig returns sensible defaults
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		IdleTimeout:     10 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

type registryEntry struct {
	poller   *Poller
	lastSeen time.Time
}

// Registry keeps at most one poller per key. Keys are "<sessionID>:<feed>" so that
// a session's pollers can be stopped together on logout.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	cfg     RegistryConfig
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRegistry creates a registry whose pollers live until Close.
func NewRegistry(cfg RegistryConfig, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultRegistryConfig().CleanupInterval
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultRegistryConfig().IdleTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		entries: make(map[string]*registryEntry),
		cfg:     cfg,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go r.cleanupLoop()
	return r
}

// Key builds the registry key for a session's feed.
func Key(sessionID, feed string) string {
	return sessionID + ":" + feed
}

// Ensure starts a poller for key unless one is already running, and marks it as seen.
// It reports whether a new poller was started.
func (r *Registry) Ensure(key string, interval time.Duration, task Task) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx.Err() != nil {
		return false
	}
	if e, ok := r.entries[key]; ok {
		e.lastSeen = time.Now()
		return false
	}
	r.entries[key] = &registryEntry{
		poller:   Start(r.ctx, key, interval, task, r.logger),
		lastSeen: time.Now(),
	}
	r.logger.Debug("poller started", "key", key, "interval", interval)
	return true
}

// Touch marks key as in use so the idle reaper keeps it.
func (r *Registry) Touch(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[key]; ok {
		e.lastSeen = time.Now()
	}
}

// Running reports whether a poller exists for key.
func (r *Registry) Running(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[key]
	return ok
}

// Len is the number of live pollers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Stop ends the poller for key, if any.
func (r *Registry) Stop(key string) {
	r.mu.Lock()
	e, ok := r.entries[key]
	delete(r.entries, key)
	r.mu.Unlock()
	if ok {
		e.poller.Stop()
	}
}

// StopPrefix ends every poller whose key starts with prefix (all feeds of a session).
func (r *Registry) StopPrefix(prefix string) {
	r.stopWhere(func(key string, _ *registryEntry) bool {
		return strings.HasPrefix(key, prefix)
	})
}

func (r *Registry) stopWhere(match func(string, *registryEntry) bool) {
	var stopped []*Poller
	r.mu.Lock()
	for key, e := range r.entries {
		if match(key, e) {
			stopped = append(stopped, e.poller)
			delete(r.entries, key)
		}
	}
	r.mu.Unlock()
	for _, p := range stopped {
		p.Stop()
	}
}

// cleanupLoop periodically stops pollers whose pages are no longer open
func (r *Registry) cleanupLoop() {
	defer close(r.done)
	ticker := time.NewTicker(r.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.reapIdle(time.Now())
		}
	}
}

func (r *Registry) reapIdle(now time.Time) {
	cutoff := now.Add(-r.cfg.IdleTimeout)
	r.stopWhere(func(key string, e *registryEntry) bool {
		if e.lastSeen.Before(cutoff) {
			r.logger.Debug("poller idle, stopping", "key", key)
			return true
		}
		return false
	})
}

// Close stops every poller and the reaper.
func (r *Registry) Close() {
	r.cancel()
	<-r.done
	r.stopWhere(func(string, *registryEntry) bool { return true })
}
