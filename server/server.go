// Package server exposes configured departure boards over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/theoremus-urban-solutions/ztm-departures/board"
)

// Options configures a Server.
type Options struct {
	Port      int
	Codespace string
	// Now is the clock used for every view. Defaults to time.Now.
	Now func() time.Time
}

// Server serves board views as JSON, SIRI ET and GTFS-Realtime.
type Server struct {
	registry  *board.Registry
	codespace string
	now       func() time.Time
	http      *http.Server
}

// New creates a server for the boards of reg.
func New(reg *board.Registry, opts Options) *Server {
	s := &Server{
		registry:  reg,
		codespace: opts.Codespace,
		now:       opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed handler with logging and recovery middleware.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(RecoveryMiddleware)
	r.Use(LoggingMiddleware)

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/boards", s.handleBoards).Methods(http.MethodGet)
	r.HandleFunc("/api/boards/{name}/departures.json", s.handleDepartures).Methods(http.MethodGet)
	r.HandleFunc("/api/boards/{name}/siri-et.json", s.handleBoardEstimatedTimetable).Methods(http.MethodGet)
	r.HandleFunc("/api/boards/{name}/trip-updates.pb", s.handleBoardTripUpdates).Methods(http.MethodGet)
	r.HandleFunc("/api/boards/{name}/count", s.handleSetCount).Methods(http.MethodPut)
	r.HandleFunc("/api/boards/{name}/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/api/siri/estimated-timetable.json", s.handleEstimatedTimetable).Methods(http.MethodGet)
	r.HandleFunc("/api/gtfsrt/trip-updates.pb", s.handleTripUpdates).Methods(http.MethodGet)

	// Routes stay on the root router so a method mismatch reports 405 instead of
	// falling through to NotFoundHandler.
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

// Start listens in the background.
func (s *Server) Start() {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", s.http.Addr)
}

// Run starts the server and shuts it down gracefully when ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	log.Printf("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
		return err
	}
	log.Printf("server shut down successfully")
	return nil
}
