package feed

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/movies/backend/internal/model/movie"
	feedService "github.com/zhouzirui/movies/backend/internal/service/feed"
)

type wireMessage struct {
	Type      string      `json:"type"`
	Data      movie.Movie `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

func TestWebSocketStreamsChanges(t *testing.T) {
	hub := feedService.NewHub(4)
	r := chi.NewRouter()
	NewWebSocketHandler(hub).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/movies"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello wireMessage
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read connected: %v", err)
	}
	if hello.Type != "connected" {
		t.Fatalf("expected connected, got %s", hello.Type)
	}

	hub.Publish(feedService.EventCreated, movie.Movie{ID: "42", Title: "Arrival"})

	var msg wireMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if msg.Type != "created" || msg.Data.ID != "42" || msg.Data.Title != "Arrival" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestWebSocketUnsubscribesOnClose(t *testing.T) {
	hub := feedService.NewHub(4)
	r := chi.NewRouter()
	NewWebSocketHandler(hub).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/movies"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var hello wireMessage
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read connected: %v", err)
	}
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for hub.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber still registered after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
