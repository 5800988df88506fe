package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/theoremus-urban-solutions/transit-types/siri"

	"github.com/theoremus-urban-solutions/ztm-departures/board"
	"github.com/theoremus-urban-solutions/ztm-departures/formatter"
)

type healthResponse struct {
	Status      string        `json:"status"`
	Boards      int           `json:"boards"`
	Loaded      int           `json:"loaded"`
	BoardHealth []boardHealth `json:"board_health"`
}

type boardHealth struct {
	Name        string     `json:"name"`
	Loaded      bool       `json:"loaded"`
	LastRefresh *time.Time `json:"last_refresh,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(formatter.BuildJSON(v))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: status})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", BoardHealth: []boardHealth{}}
	for _, b := range s.registry.List() {
		h := boardHealth{Name: b.Name(), Loaded: b.Loaded()}
		if ts := b.LastRefresh(); !ts.IsZero() {
			h.LastRefresh = &ts
		}
		if err := b.LastError(); err != nil {
			h.LastError = err.Error()
		}
		resp.Boards++
		if h.Loaded {
			resp.Loaded++
		}
		resp.BoardHealth = append(resp.BoardHealth, h)
	}
	if resp.Loaded < resp.Boards {
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBoards(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	views := make([]board.View, 0, s.registry.Len())
	for _, b := range s.registry.List() {
		views = append(views, b.View(now))
	}
	writeJSON(w, http.StatusOK, views)
}

// lookup resolves the {name} route variable and the optional count query parameter.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*board.Board, int, bool) {
	name := mux.Vars(r)["name"]
	b, ok := s.registry.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown board "+name)
		return nil, 0, false
	}
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > board.MaxDepartures {
			writeError(w, http.StatusBadRequest, "count must be between 1 and 3")
			return nil, 0, false
		}
		count = n
	}
	return b, count, true
}

func (s *Server) handleDepartures(w http.ResponseWriter, r *http.Request) {
	b, count, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.ViewN(s.now(), count))
}

func (s *Server) handleBoardEstimatedTimetable(w http.ResponseWriter, r *http.Request) {
	b, count, ok := s.lookup(w, r)
	if !ok {
		return
	}
	now := s.now()
	et := formatter.BuildEstimatedTimetable(b.ViewN(now, count), now, s.codespace)
	writeJSON(w, http.StatusOK, formatter.WrapEstimatedTimetableResponse(now, s.codespace, et))
}

func (s *Server) handleBoardTripUpdates(w http.ResponseWriter, r *http.Request) {
	b, count, ok := s.lookup(w, r)
	if !ok {
		return
	}
	now := s.now()
	s.writeTripUpdates(w, now, b.ViewN(now, count))
}

func (s *Server) handleEstimatedTimetable(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	deliveries := make([]siri.EstimatedTimetableDelivery, 0, s.registry.Len())
	for _, b := range s.registry.List() {
		deliveries = append(deliveries, formatter.BuildEstimatedTimetable(b.View(now), now, s.codespace))
	}
	writeJSON(w, http.StatusOK, formatter.WrapEstimatedTimetableResponse(now, s.codespace, deliveries...))
}

func (s *Server) handleTripUpdates(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	views := make([]board.View, 0, s.registry.Len())
	for _, b := range s.registry.List() {
		views = append(views, b.View(now))
	}
	s.writeTripUpdates(w, now, views...)
}

func (s *Server) writeTripUpdates(w http.ResponseWriter, now time.Time, views ...board.View) {
	data, err := formatter.MarshalTripUpdates(formatter.BuildTripUpdates(now, views...))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	_, _ = w.Write(data)
}

type countRequest struct {
	Departures int `json:"departures"`
}

func (s *Server) handleSetCount(w http.ResponseWriter, r *http.Request) {
	b, _, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req countRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := b.SetCount(req.Departures); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b.View(s.now()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b, _, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := b.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b.View(s.now()))
}
