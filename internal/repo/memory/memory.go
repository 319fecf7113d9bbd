package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hamed0406/statushistory/internal/domain"
)

type Store struct {
	mu   sync.RWMutex
	logs map[string]domain.HistoryLog
}

func New() *Store {
	return &Store{logs: make(map[string]domain.HistoryLog)}
}

func (m *Store) Record(ctx context.Context, service string, r domain.StatusRecord) (domain.HistoryLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slug := domain.Slug(service)
	h := m.logs[slug].Append(r, domain.MaxHistoryEntries)
	m.logs[slug] = h
	return h, nil
}

func (m *Store) Load(ctx context.Context, service string) (domain.HistoryLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h := m.logs[domain.Slug(service)]
	out := make(domain.HistoryLog, len(h))
	copy(out, h)
	return out, nil
}

func (m *Store) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.logs))
	for slug := range m.logs {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out, nil
}
