package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/zhouzirui/movies/backend/internal/model/movie"
	"github.com/zhouzirui/movies/backend/internal/service/catalog"
	"github.com/zhouzirui/movies/backend/internal/service/feed"
	"github.com/zhouzirui/movies/backend/internal/validator"
)

type recordedEvent struct {
	typ  feed.EventType
	id   string
	rate float64
}

type fakePublisher struct {
	events []recordedEvent
}

func (f *fakePublisher) Publish(t feed.EventType, m movie.Movie) {
	f.events = append(f.events, recordedEvent{typ: t, id: m.ID, rate: m.Rate})
}

const newFilm = `{"title":"New Film","year":2023,"director":"X","duration":100,"genre":["Drama"],"rate":7.5,"poster":"http://example.com/p.jpg"}`

func setup() (*catalog.Service, *movie.MemoryStore, *fakePublisher) {
	store := movie.NewMemoryStore([]movie.Movie{
		{ID: "1", Title: "The Matrix", Year: 1999, Director: "Lana Wachowski", Duration: 136, Poster: "https://example.com/m.jpg", Genre: []movie.Genre{movie.GenreAction, movie.GenreSciFi}, Rate: 8.7},
	})
	pub := &fakePublisher{}
	return catalog.NewService(store, pub), store, pub
}

func TestServiceCreatePublishesEvent(t *testing.T) {
	svc, store, pub := setup()
	ctx := context.Background()

	created, err := svc.Create(ctx, []byte(newFilm))
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if created.ID == "" || created.Title != "New Film" {
		t.Fatalf("unexpected movie: %+v", created)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 movies, got %d", store.Len())
	}
	if len(pub.events) != 1 || pub.events[0].typ != feed.EventCreated || pub.events[0].id != created.ID {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
}

func TestServiceCreateRejectsInvalidPayload(t *testing.T) {
	svc, store, pub := setup()

	_, err := svc.Create(context.Background(), []byte(`{"title":""}`))
	var verr *validator.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.Len() != 1 || len(pub.events) != 0 {
		t.Fatal("invalid create must not touch the store")
	}
}

func TestServiceUpdate(t *testing.T) {
	svc, _, pub := setup()
	ctx := context.Background()

	updated, err := svc.Update(ctx, "1", []byte(`{"rate": 9.1}`))
	if err != nil {
		t.Fatalf("Update err: %v", err)
	}
	if updated.Rate != 9.1 || updated.Title != "The Matrix" || updated.ID != "1" {
		t.Fatalf("unexpected merge: %+v", updated)
	}
	if len(pub.events) != 1 || pub.events[0].typ != feed.EventUpdated {
		t.Fatalf("unexpected events: %+v", pub.events)
	}

	same, err := svc.Update(ctx, "1", []byte(`{}`))
	if err != nil || same.Rate != 9.1 {
		t.Fatalf("empty update should return the record, got %+v err %v", same, err)
	}
	if len(pub.events) != 1 {
		t.Fatal("empty update must not publish")
	}
}

func TestServiceUpdateErrors(t *testing.T) {
	svc, _, _ := setup()
	ctx := context.Background()

	if _, err := svc.Update(ctx, "999", []byte(`{"rate": 5}`)); !errors.Is(err, catalog.ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}

	_, err := svc.Update(ctx, "999", []byte(`{"rate": 50}`))
	var verr *validator.Error
	if !errors.As(err, &verr) {
		t.Fatalf("validation must run before lookup, got %v", err)
	}
}

func TestServiceDelete(t *testing.T) {
	svc, _, pub := setup()
	ctx := context.Background()

	if err := svc.Delete(ctx, "1"); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if _, err := svc.Get(ctx, "1"); !errors.Is(err, catalog.ErrMovieNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := svc.Delete(ctx, "1"); !errors.Is(err, catalog.ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].typ != feed.EventDeleted {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
}

func TestServiceEventsFollowStoreOrder(t *testing.T) {
	svc, store, pub := setup()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = svc.Update(ctx, "1", []byte(fmt.Sprintf(`{"rate": %d}`, i%10)))
		}(i)
	}
	wg.Wait()

	last := pub.events[len(pub.events)-1]
	current, _ := store.FindByID("1")
	if last.rate != current.Rate {
		t.Fatalf("last event rate %v does not match stored rate %v", last.rate, current.Rate)
	}

	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i == 20 {
				_ = svc.Delete(ctx, "1")
				return
			}
			_, _ = svc.Update(ctx, "1", []byte(`{"rate": 1}`))
		}(i)
	}
	wg.Wait()

	deleted := false
	for _, ev := range pub.events {
		if deleted {
			t.Fatalf("event %s published after delete", ev.typ)
		}
		if ev.typ == feed.EventDeleted {
			deleted = true
		}
	}
	if !deleted {
		t.Fatal("expected a delete event")
	}
}

func TestServiceQueries(t *testing.T) {
	svc, _, _ := setup()
	ctx := context.Background()

	if got := svc.FilterByGenre(ctx, "sci-fi"); len(got) != 1 {
		t.Fatalf("expected 1 sci-fi movie, got %d", len(got))
	}
	if _, err := svc.FindByTitle(ctx, "The Matrix"); err != nil {
		t.Fatalf("FindByTitle err: %v", err)
	}
	if _, err := svc.FindByTitle(ctx, "Unknown"); !errors.Is(err, catalog.ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}
	if got := svc.List(ctx); len(got) != 1 {
		t.Fatalf("expected 1 movie, got %d", len(got))
	}
}

func TestServiceWithoutPublisher(t *testing.T) {
	store := movie.NewMemoryStore(nil)
	svc := catalog.NewService(store, nil)

	if _, err := svc.Create(context.Background(), []byte(newFilm)); err != nil {
		t.Fatalf("Create err: %v", err)
	}
}
