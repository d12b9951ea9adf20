package feed_test

import (
	"testing"

	"github.com/zhouzirui/movies/backend/internal/model/movie"
	"github.com/zhouzirui/movies/backend/internal/service/feed"
)

func TestHubDeliversToEverySubscriber(t *testing.T) {
	hub := feed.NewHub(4)

	a, cancelA := hub.Subscribe()
	defer cancelA()
	b, cancelB := hub.Subscribe()
	defer cancelB()

	hub.Publish(feed.EventCreated, movie.Movie{ID: "1", Title: "Inception"})

	for _, ch := range []<-chan feed.Event{a, b} {
		evt := <-ch
		if evt.Type != feed.EventCreated || evt.Movie.ID != "1" {
			t.Fatalf("unexpected event: %+v", evt)
		}
		if evt.Timestamp == 0 {
			t.Fatal("expected timestamp")
		}
	}
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	hub := feed.NewHub(1)
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(feed.EventCreated, movie.Movie{ID: "1"})
	hub.Publish(feed.EventDeleted, movie.Movie{ID: "1"})

	evt := <-ch
	if evt.Type != feed.EventCreated {
		t.Fatalf("expected first event to survive, got %s", evt.Type)
	}
	select {
	case extra := <-ch:
		t.Fatalf("expected overflow to be dropped, got %+v", extra)
	default:
	}
}

func TestHubCancelUnsubscribes(t *testing.T) {
	hub := feed.NewHub(0)
	ch, cancel := hub.Subscribe()
	if hub.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.Subscribers())
	}

	cancel()
	cancel()

	if hub.Subscribers() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", hub.Subscribers())
	}
	if _, open := <-ch; open {
		t.Fatal("expected channel to be closed")
	}

	hub.Publish(feed.EventUpdated, movie.Movie{ID: "1"})
}
