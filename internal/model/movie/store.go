package movie

import (
	"sync"

	"github.com/google/uuid"
)

// Store exposes movie retrieval and mutation for the catalog service.
type Store interface {
	List() []Movie
	FindByTitle(title string) (Movie, bool)
	FilterByGenre(genre string) []Movie
	FindByID(id string) (Movie, bool)
	Create(m Movie) Movie
	DeleteByID(id string) (Movie, bool)
	UpdateByID(id string, p Patch) (Movie, bool)
}

// IDFunc generates a globally unique identifier.
type IDFunc func() string

// maxIDAttempts bounds retries when the generator returns an id already in use.
const maxIDAttempts = 8

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithIDFunc replaces the default uuid generator.
func WithIDFunc(fn IDFunc) Option {
	return func(s *MemoryStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// MemoryStore implements Store with a mutex-guarded slice kept in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Movie
	newID IDFunc
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied movies. Entries
// without an id are given one.
func NewMemoryStore(items []Movie, opts ...Option) *MemoryStore {
	s := &MemoryStore{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}

	s.items = make([]Movie, 0, len(items))
	for _, item := range items {
		m := item.clone()
		if m.ID == "" {
			m.ID = s.uniqueIDLocked()
		}
		s.items = append(s.items, m)
	}
	return s
}

// List returns every movie in insertion order.
func (s *MemoryStore) List() []Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Movie, len(s.items))
	for i, item := range s.items {
		out[i] = item.clone()
	}
	return out
}

// FindByTitle returns the first movie whose title matches exactly.
func (s *MemoryStore) FindByTitle(title string) (Movie, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.Title == title {
			return item.clone(), true
		}
	}
	return Movie{}, false
}

// FilterByGenre returns all movies tagged with genre, compared case-insensitively.
func (s *MemoryStore) FilterByGenre(genre string) []Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Movie, 0)
	for _, item := range s.items {
		if item.HasGenre(genre) {
			out = append(out, item.clone())
		}
	}
	return out
}

// FindByID looks up a movie by identifier.
func (s *MemoryStore) FindByID(id string) (Movie, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.items[i].clone(), true
	}
	return Movie{}, false
}

// Create appends m under a freshly generated id. Any id set on m is ignored.
func (s *MemoryStore) Create(m Movie) Movie {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := m.clone()
	created.ID = s.uniqueIDLocked()
	s.items = append(s.items, created)
	return created.clone()
}

// DeleteByID removes the movie with id and returns it.
func (s *MemoryStore) DeleteByID(id string) (Movie, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Movie{}, false
	}
	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return removed, true
}

// UpdateByID merges p into the movie with id, keeping its position and id.
func (s *MemoryStore) UpdateByID(id string, p Patch) (Movie, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Movie{}, false
	}
	updated := s.items[i].Apply(p)
	updated.ID = s.items[i].ID
	s.items[i] = updated
	return updated.clone(), true
}

// Len reports how many movies are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemoryStore) indexLocked(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) uniqueIDLocked() string {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.newID()
		if id != "" && s.indexLocked(id) < 0 {
			return id
		}
	}
	// The configured generator keeps colliding; fall back to a random uuid.
	for {
		id := uuid.NewString()
		if s.indexLocked(id) < 0 {
			return id
		}
	}
}
