package webs

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu        sync.RWMutex
	byID      map[uuid.UUID]*Web
	byAddress map[string]uuid.UUID
}

// NewMemoryRepository constructs an in-memory web repository.
func NewMemoryRepository() WebRepository {
	return &memoryRepository{
		byID:      make(map[uuid.UUID]*Web),
		byAddress: make(map[string]uuid.UUID),
	}
}

func (m *memoryRepository) Create(_ context.Context, web *Web) (*Web, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneWeb(web)
	cloned.Address = normalizeAddress(cloned.Address)
	if _, exists := m.byAddress[cloned.Address]; exists {
		return nil, ErrWebAddressExists
	}
	m.byID[cloned.ID] = cloned
	m.byAddress[cloned.Address] = cloned.ID
	return cloneWeb(cloned), nil
}

func (m *memoryRepository) Update(_ context.Context, web *Web) (*Web, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[web.ID]
	if !ok {
		return nil, &NotFoundError{Key: web.ID.String()}
	}
	cloned := cloneWeb(web)
	cloned.Address = existing.Address
	m.byID[cloned.ID] = cloned
	return cloneWeb(cloned), nil
}

func (m *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Web, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return cloneWeb(record), nil
}

// GetByName scans records in address order so duplicate names resolve
// deterministically.
func (m *memoryRepository) GetByName(_ context.Context, name string) (*Web, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, record := range m.sorted() {
		if record.Name == name {
			return cloneWeb(record), nil
		}
	}
	return nil, &NotFoundError{Key: name}
}

func (m *memoryRepository) GetByAddress(_ context.Context, address string) (*Web, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byAddress[normalizeAddress(address)]
	if !ok {
		return nil, &NotFoundError{Key: address}
	}
	return cloneWeb(m.byID[id]), nil
}

func (m *memoryRepository) List(_ context.Context) ([]*Web, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.sorted()
	out := make([]*Web, len(records))
	for i, record := range records {
		out[i] = cloneWeb(record)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Key: id.String()}
	}
	delete(m.byID, id)
	delete(m.byAddress, record.Address)
	return nil
}

func (m *memoryRepository) sorted() []*Web {
	records := make([]*Web, 0, len(m.byID))
	for _, record := range m.byID {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Address < records[j].Address
	})
	return records
}
