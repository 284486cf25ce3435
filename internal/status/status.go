// Package status implements the optional debug HTTP surface: an http.Server
// with the same timeouts and /healthz contract as the teacher's
// internal/server + internal/handlers, plus a new /stats endpoint reporting
// a point-in-time snapshot of the index and work queue.
package status

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mfenwick/corpusdex/internal/index"
	"github.com/mfenwick/corpusdex/internal/workqueue"
)

type healthResponse struct {
	Status string `json:"status"`
}

type statsResponse struct {
	NumUniqueWords int `json:"numUniqueWords"`
	NumLocations   int `json:"numLocations"`
	Pending        int `json:"pending"`
}

// Server is the optional debug HTTP server, dormant unless started.
type Server struct {
	http *http.Server
}

// New constructs a Server bound to addr, serving /healthz and /stats over
// idx and queue. It is not started until Start is called.
func New(addr string, idx *index.Index, queue *workqueue.WorkQueue) *Server {
	mux := http.NewServeMux()
	registerRoutes(mux, idx, queue)

	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

func registerRoutes(mux *http.ServeMux, idx *index.Index, queue *workqueue.WorkQueue) {
	mux.HandleFunc("GET /healthz", health)
	mux.HandleFunc("GET /stats", stats(idx, queue))
}

// health returns a simple ok response for readiness/liveness probes.
func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok"})
}

// stats reports the current index size and the work queue's pending count.
func stats(idx *index.Index, queue *workqueue.WorkQueue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(statsResponse{
			NumUniqueWords: idx.NumUniqueWords(),
			NumLocations:   len(idx.GetWordCounts()),
			Pending:        queue.Pending(),
		})
	}
}

// Start begins serving in its own goroutine. A bind or serve failure is
// reported on errCh rather than aborting the caller; the debug surface is
// best-effort and never blocks the main ingestion pipeline.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	return errCh
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
