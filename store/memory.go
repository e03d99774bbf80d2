package store

import (
	"fmt"
	"sync"

	"deskctl/registry"
)

// memEntry is an invocation with its payload kept as JSON
type memEntry struct {
	inv     registry.Invocation
	payload string
}

// MemoryJournal keeps invocations in process memory
type MemoryJournal struct {
	mu      sync.RWMutex
	entries []memEntry
	byID    map[string]int
}

// NewMemoryJournal creates an empty in-memory journal
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{byID: make(map[string]int)}
}

func (j *MemoryJournal) Record(inv registry.Invocation) error {
	payload, err := encodePayload(inv.Payload)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, exists := j.byID[inv.ID]; exists {
		return fmt.Errorf("record invocation: duplicate id %s", inv.ID)
	}
	inv.Payload = nil
	j.byID[inv.ID] = len(j.entries)
	j.entries = append(j.entries, memEntry{inv: inv, payload: payload})
	return nil
}

func (j *MemoryJournal) List(tool string, limit, offset int) ([]registry.Invocation, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := []registry.Invocation{}
	skipped := 0
	for i := len(j.entries) - 1; i >= 0; i-- {
		e := j.entries[i]
		if tool != "" && e.inv.Tool != tool {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		inv, err := e.materialize()
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

func (j *MemoryJournal) Get(id string) (*registry.Invocation, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	i, ok := j.byID[id]
	if !ok {
		return nil, fmt.Errorf("get invocation %s: %w", id, ErrNotFound)
	}
	inv, err := j.entries[i].materialize()
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (j *MemoryJournal) Close() error {
	return nil
}

func (e memEntry) materialize() (registry.Invocation, error) {
	inv := e.inv
	p, err := decodePayload(e.payload)
	if err != nil {
		return inv, err
	}
	inv.Payload = p
	return inv, nil
}
