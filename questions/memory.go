/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package questions

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Seednode/quizroyale/royale"
)

// MemoryStore keeps banks in process.
type MemoryStore struct {
	mu   sync.RWMutex
	sets map[string][]royale.Question
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[string][]royale.Question)}
}

func (m *MemoryStore) Get(_ context.Context, set string) ([]royale.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bank, ok := m.sets[set]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSetNotFound, set)
	}

	return append([]royale.Question(nil), bank...), nil
}

func (m *MemoryStore) Put(_ context.Context, set string, bank []royale.Question) error {
	if err := royale.ValidateBank(bank); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sets[set] = append([]royale.Question(nil), bank...)

	return nil
}

func (m *MemoryStore) Sets(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.sets))
	for name := range m.sets {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}
