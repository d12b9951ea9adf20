package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zhouzirui/movies/backend/internal/model/movie"
	"github.com/zhouzirui/movies/backend/internal/service/feed"
)

// ErrMovieNotFound is returned when no movie matches the requested id or title.
var ErrMovieNotFound = errors.New("movie not found")

// Publisher receives change notifications after successful writes.
type Publisher interface {
	Publish(t feed.EventType, m movie.Movie)
}

// Service validates client input and applies it to the movie store.
// Writes are serialized with their notification so subscribers observe changes
// in store order.
type Service struct {
	store  movie.Store
	events Publisher

	writeMu sync.Mutex
}

// NewService wires the catalog to a store. events may be nil.
func NewService(store movie.Store, events Publisher) *Service {
	return &Service{store: store, events: events}
}

// List returns the whole catalog in insertion order.
func (s *Service) List(_ context.Context) []movie.Movie {
	return s.store.List()
}

// FilterByGenre returns movies tagged with genre, ignoring case.
func (s *Service) FilterByGenre(_ context.Context, genre string) []movie.Movie {
	return s.store.FilterByGenre(genre)
}

// FindByTitle returns the first movie with exactly this title.
func (s *Service) FindByTitle(_ context.Context, title string) (movie.Movie, error) {
	m, ok := s.store.FindByTitle(title)
	if !ok {
		return movie.Movie{}, ErrMovieNotFound
	}
	return m, nil
}

// Get retrieves a movie by identifier.
func (s *Service) Get(_ context.Context, id string) (movie.Movie, error) {
	m, ok := s.store.FindByID(id)
	if !ok {
		return movie.Movie{}, ErrMovieNotFound
	}
	return m, nil
}

// Create validates payload as a complete movie and stores it under a new id.
// Validation failures are returned as *validator.Error.
func (s *Service) Create(_ context.Context, payload []byte) (movie.Movie, error) {
	candidate, err := movie.ValidateMovie(payload)
	if err != nil {
		return movie.Movie{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	created := s.store.Create(candidate)
	s.publish(feed.EventCreated, created)
	return created, nil
}

// Update validates payload as a partial movie and merges it into the movie with id.
// Validation runs before the lookup, so a bad body on a missing id is still a
// validation failure.
func (s *Service) Update(_ context.Context, id string, payload []byte) (movie.Movie, error) {
	patch, err := movie.ValidatePartialMovie(payload)
	if err != nil {
		return movie.Movie{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	updated, ok := s.store.UpdateByID(id, patch)
	if !ok {
		return movie.Movie{}, fmt.Errorf("update %s: %w", id, ErrMovieNotFound)
	}
	if !patch.Empty() {
		s.publish(feed.EventUpdated, updated)
	}
	return updated, nil
}

// Delete removes the movie with id.
func (s *Service) Delete(_ context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	removed, ok := s.store.DeleteByID(id)
	if !ok {
		return fmt.Errorf("delete %s: %w", id, ErrMovieNotFound)
	}
	s.publish(feed.EventDeleted, removed)
	return nil
}

func (s *Service) publish(t feed.EventType, m movie.Movie) {
	if s.events != nil {
		s.events.Publish(t, m)
	}
}
