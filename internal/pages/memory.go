package pages

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

type pageKey struct {
	web  uuid.UUID
	name string
}

type memoryPageRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Page
	byName map[pageKey]uuid.UUID
}

// NewMemoryPageRepository constructs an in-memory page repository.
func NewMemoryPageRepository() PageRepository {
	return &memoryPageRepository{
		byID:   make(map[uuid.UUID]*Page),
		byName: make(map[pageKey]uuid.UUID),
	}
}

func (m *memoryPageRepository) Create(_ context.Context, page *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pageKey{web: page.WebID, name: page.Name}
	if _, exists := m.byName[key]; exists {
		return nil, ErrPageExists
	}
	cloned := clonePage(page)
	cloned.Revision = nil
	m.byID[cloned.ID] = cloned
	m.byName[key] = cloned.ID
	return clonePage(cloned), nil
}

func (m *memoryPageRepository) Update(_ context.Context, page *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[page.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: page.ID.String()}
	}
	existing.CurrentRevision = page.CurrentRevision
	existing.UpdatedAt = page.UpdatedAt
	return clonePage(existing), nil
}

func (m *memoryPageRepository) GetByID(_ context.Context, id uuid.UUID) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: id.String()}
	}
	return clonePage(record), nil
}

func (m *memoryPageRepository) GetByName(_ context.Context, webID uuid.UUID, name string) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byName[pageKey{web: webID, name: name}]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: name}
	}
	return clonePage(m.byID[id]), nil
}

func (m *memoryPageRepository) ListByWeb(_ context.Context, webID uuid.UUID) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []*Page
	for _, record := range m.byID {
		if record.WebID == webID {
			records = append(records, clonePage(record))
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

func (m *memoryPageRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "page", Key: id.String()}
	}
	delete(m.byID, id)
	delete(m.byName, pageKey{web: record.WebID, name: record.Name})
	return nil
}

type memoryRevisionRepository struct {
	mu     sync.RWMutex
	byPage map[uuid.UUID][]*Revision
}

// NewMemoryRevisionRepository constructs an in-memory revision repository.
func NewMemoryRevisionRepository() RevisionRepository {
	return &memoryRevisionRepository{byPage: make(map[uuid.UUID][]*Revision)}
}

func (m *memoryRevisionRepository) Create(_ context.Context, revision *Revision) (*Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := *revision
	m.byPage[revision.PageID] = append(m.byPage[revision.PageID], &cloned)
	out := cloned
	return &out, nil
}

func (m *memoryRevisionRepository) Get(_ context.Context, pageID uuid.UUID, number int) (*Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rev := range m.byPage[pageID] {
		if rev.Number == number {
			out := *rev
			return &out, nil
		}
	}
	return nil, &NotFoundError{Resource: "revision", Key: pageID.String() + "@" + strconv.Itoa(number)}
}

func (m *memoryRevisionRepository) ListByPage(_ context.Context, pageID uuid.UUID) ([]*Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	revisions := m.byPage[pageID]
	out := make([]*Revision, len(revisions))
	for i, rev := range revisions {
		cloned := *rev
		out[i] = &cloned
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func clonePage(page *Page) *Page {
	if page == nil {
		return nil
	}
	cloned := *page
	if page.Revision != nil {
		rev := *page.Revision
		cloned.Revision = &rev
	}
	return &cloned
}
