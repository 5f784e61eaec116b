package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sangkips/trademate-console/internal/domain/entity"
	domainRepo "github.com/sangkips/trademate-console/internal/domain/repository"
)

type memoryTerminalRepository struct {
	mu        sync.Mutex
	terminals map[string][]byte
	locks     map[string]*sync.Mutex
}

// NewMemoryTerminalRepository keeps terminals in process memory. Each session's
// read-modify-write runs under its own lock.
func NewMemoryTerminalRepository() domainRepo.TerminalRepository {
	return &memoryTerminalRepository{
		terminals: make(map[string][]byte),
		locks:     make(map[string]*sync.Mutex),
	}
}

func (r *memoryTerminalRepository) lockFor(sessionID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[sessionID] = l
	}
	return l
}

// load decodes a private copy so callers never share state with the store.
func (r *memoryTerminalRepository) load(sessionID string) (*entity.Terminal, error) {
	r.mu.Lock()
	data, ok := r.terminals[sessionID]
	r.mu.Unlock()
	if !ok {
		return entity.NewTerminal(sessionID), nil
	}
	var t entity.Terminal
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *memoryTerminalRepository) Get(ctx context.Context, sessionID string) (*entity.Terminal, error) {
	l := r.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()
	return r.load(sessionID)
}

func (r *memoryTerminalRepository) Update(ctx context.Context, sessionID string, fn func(*entity.Terminal) error) (*entity.Terminal, error) {
	l := r.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	t, err := r.load(sessionID)
	if err != nil {
		return nil, err
	}
	before, err := r.load(sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(t); err != nil {
		return before, err
	}
	t.UpdatedAt = time.Now()
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.terminals[sessionID] = data
	r.mu.Unlock()
	return t, nil
}

func (r *memoryTerminalRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.terminals, sessionID)
	delete(r.locks, sessionID)
	return nil
}
