// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/formforge/formforge/internal/designer"
	"github.com/formforge/formforge/internal/designer/wire"
	"github.com/formforge/formforge/internal/handler"
	"github.com/formforge/formforge/internal/store"
)

// Config holds server configuration.
type Config struct {
	Port   int
	Origin string // public origin for share links, e.g. "https://forms.example.com"
	Store  store.Store
}

// Run starts the HTTP server with all routes registered.
func Run(ctx context.Context, cfg Config) error {
	r := chi.NewRouter()

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Owner-scoped form management
	fh := handler.NewFormHandler(cfg.Store, cfg.Origin)
	sh := handler.NewSubmitHandler(cfg.Store)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/fields", handler.Palette)
		r.Get("/stats", fh.AggregateStats)
		r.Post("/forms", fh.CreateForm)
		r.Get("/forms", fh.ListForms)
		r.Get("/forms/{id}", fh.GetForm)
		r.Put("/forms/{id}/content", fh.UpdateContent)
		r.Post("/forms/{id}/publish", fh.Publish)
		r.Get("/forms/{id}/share-link", fh.ShareLink)
		r.Get("/forms/{id}/stats", fh.Stats)

		// Public submission surface, keyed by share token
		r.Get("/submit/{token}", sh.GetForm)
		r.Post("/submit/{token}", sh.Submit)
	})

	// Live designer sessions
	sessions := designer.NewManager(12*time.Hour, 30*time.Minute)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions.Cleanup()
			}
		}
	}()
	ws := wire.NewHandler(sessions, cfg.Store)
	r.Get("/ws/designer/{formID}", ws.ServeHTTP)

	// Wrap with middleware
	wrapped := handler.Recovery(handler.Logging(r))

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("starting server on %s", addr)

	server := &http.Server{
		Addr:    addr,
		Handler: wrapped,
	}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	return server.ListenAndServe()
}
