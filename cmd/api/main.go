package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/zhouzirui/movies/backend/internal/config"
	"github.com/zhouzirui/movies/backend/internal/handler"
	"github.com/zhouzirui/movies/backend/internal/model/movie"
	"github.com/zhouzirui/movies/backend/internal/service/catalog"
	"github.com/zhouzirui/movies/backend/internal/service/feed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	seed, err := loadSeed(cfg.Seed)
	if err != nil {
		log.Fatalf("failed to load movie seed: %v", err)
	}
	store := movie.NewMemoryStore(seed)
	log.Printf("movie store seeded with %d movies", store.Len())

	// Change feed is optional; a nil hub keeps the catalog from publishing
	var hub *feed.Hub
	var catalogSvc *catalog.Service
	if cfg.Feed.Enabled {
		hub = feed.NewHub(cfg.Feed.Buffer)
		catalogSvc = catalog.NewService(store, hub)
		log.Println("movie change feed enabled on /ws/movies and /stream/movies")
	} else {
		catalogSvc = catalog.NewService(store, nil)
		log.Println("movie change feed disabled by configuration")
	}

	router := handler.NewRouter(catalogSvc, hub)

	startServer(ctx, cfg.Server, router)
}

func loadSeed(cfg config.SeedConfig) ([]movie.Movie, error) {
	if cfg.File == "" {
		return movie.Seed(), nil
	}
	log.Printf("loading movies from %s", cfg.File)
	return movie.LoadSeedFile(cfg.File)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("API is listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
