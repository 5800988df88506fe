package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/ztm-departures/board"
	"github.com/theoremus-urban-solutions/ztm-departures/config"
	"github.com/theoremus-urban-solutions/ztm-departures/departures"
	"github.com/theoremus-urban-solutions/ztm-departures/ztm"
)

var warsawSummer = time.FixedZone("CEST", 2*60*60)

type fakeSource struct {
	records []departures.RawDeparture
	err     error
}

func (f *fakeSource) Timetable(context.Context, string, string, string) ([]departures.RawDeparture, error) {
	return f.records, f.err
}

func (f *fakeSource) StopInfo(context.Context, string, string) (ztm.StopInfo, error) {
	return ztm.StopInfo{StopID: "7009", StopNr: "01", Name: "Centrum"}, nil
}

func newTestServer(t *testing.T, src *fakeSource, refresh bool) *httptest.Server {
	t.Helper()
	cfg := config.AppConfig{
		Timezone: "Europe/Warsaw",
		Display:  config.DisplayConfig{CeilingMinutes: 60, CeilingLabel: "60+ min"},
		Boards: []config.Board{
			{Name: "n31", StopID: "7009", StopNr: "01", Line: "N31", Departures: 1},
		},
	}
	reg, err := board.FromConfig(cfg, src)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if refresh {
		if err := reg.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh: %v", err)
		}
	}
	now := time.Date(2025, 6, 8, 1, 45, 0, 0, warsawSummer)
	s := New(reg, Options{Codespace: "ZTM", Now: func() time.Time { return now }})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func nightSource() *fakeSource {
	return &fakeSource{records: []departures.RawDeparture{
		{Line: "N31", ScheduledTime: "26:10:00", Direction: "Dworzec Centralny"},
		{Line: "N31", ScheduledTime: "25:50:00", Direction: "Kabaty"},
		{Line: "N31", ScheduledTime: "01:00:00", Direction: "Kabaty"},
	}}
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name    string
		refresh bool
		status  string
	}{
		{"before first refresh", false, "degraded"},
		{"after refresh", true, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, nightSource(), tt.refresh)
			resp, body := do(t, http.MethodGet, srv.URL+"/api/health", "")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			var h healthResponse
			if err := json.Unmarshal(body, &h); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if h.Status != tt.status || h.Boards != 1 {
				t.Errorf("health = %+v", h)
			}
		})
	}
}

func TestDepartures(t *testing.T) {
	srv := newTestServer(t, nightSource(), true)

	tests := []struct {
		name   string
		path   string
		status int
		count  int
	}{
		{"configured count", "/api/boards/n31/departures.json", http.StatusOK, 1},
		{"count override", "/api/boards/n31/departures.json?count=3", http.StatusOK, 2},
		{"bad count", "/api/boards/n31/departures.json?count=9", http.StatusBadRequest, 0},
		{"unknown board", "/api/boards/nope/departures.json", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodGet, srv.URL+tt.path, "")
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, body %s", resp.StatusCode, body)
			}
			if tt.status != http.StatusOK {
				var e errorResponse
				if err := json.Unmarshal(body, &e); err != nil || e.Code != tt.status {
					t.Errorf("error body = %s", body)
				}
				return
			}
			var v board.View
			if err := json.Unmarshal(body, &v); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(v.Departures) != tt.count {
				t.Errorf("got %d departures, want %d", len(v.Departures), tt.count)
			}
			if v.State != "5" || v.Departures[0].Time != "01:50" {
				t.Errorf("view = %+v", v)
			}
		})
	}
}

func TestBoards(t *testing.T) {
	srv := newTestServer(t, &fakeSource{err: departures.ErrNoDeparturesToday}, true)
	_, body := do(t, http.MethodGet, srv.URL+"/api/boards", "")

	var views []board.View
	if err := json.Unmarshal(body, &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 1 || views[0].Note != departures.NoScheduleNote || views[0].State != "60+" {
		t.Errorf("views = %+v", views)
	}
}

func TestEstimatedTimetable(t *testing.T) {
	srv := newTestServer(t, nightSource(), true)

	for _, path := range []string{"/api/boards/n31/siri-et.json", "/api/siri/estimated-timetable.json"} {
		resp, body := do(t, http.MethodGet, srv.URL+path, "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status = %d", path, resp.StatusCode)
		}
		for _, want := range []string{`"ServiceDelivery"`, `"ProducerRef":"ZTM"`, "ZTM:Line:N31"} {
			if !strings.Contains(string(body), want) {
				t.Errorf("%s should contain %s", path, want)
			}
		}
	}
}

func TestTripUpdates(t *testing.T) {
	srv := newTestServer(t, nightSource(), true)

	for _, path := range []string{"/api/boards/n31/trip-updates.pb?count=2", "/api/gtfsrt/trip-updates.pb"} {
		resp, body := do(t, http.MethodGet, srv.URL+path, "")
		if ct := resp.Header.Get("Content-Type"); ct != "application/x-protobuf" {
			t.Errorf("%s content type = %q", path, ct)
		}
		var msg gtfs.FeedMessage
		if err := proto.Unmarshal(body, &msg); err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if len(msg.GetEntity()) == 0 {
			t.Errorf("%s returned no entities", path)
		}
	}
}

func TestSetCount(t *testing.T) {
	srv := newTestServer(t, nightSource(), true)

	resp, body := do(t, http.MethodPut, srv.URL+"/api/boards/n31/count", `{"departures":2}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var v board.View
	if err := json.Unmarshal(body, &v); err != nil || len(v.Departures) != 2 {
		t.Errorf("view after count change = %s", body)
	}

	resp, _ = do(t, http.MethodPut, srv.URL+"/api/boards/n31/count", `{"departures":5}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("out of range count status = %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodPut, srv.URL+"/api/boards/n31/count", `nope`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid body status = %d", resp.StatusCode)
	}
}

func TestRefreshFailure(t *testing.T) {
	src := &fakeSource{err: ztm.ErrUpstreamUnavailable}
	srv := newTestServer(t, src, false)

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/boards/n31/refresh", "")
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d", resp.StatusCode)
	}

	_, body := do(t, http.MethodGet, srv.URL+"/api/health", "")
	if !strings.Contains(string(body), "upstream unavailable") {
		t.Errorf("health should report the refresh error: %s", body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nightSource(), true)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"post boards", http.MethodPost, "/api/boards", http.StatusMethodNotAllowed},
		{"post health", http.MethodPost, "/api/health", http.StatusMethodNotAllowed},
		{"get refresh", http.MethodGet, "/api/boards/n31/refresh", http.StatusMethodNotAllowed},
		{"post count", http.MethodPost, "/api/boards/n31/count", http.StatusMethodNotAllowed},
		{"unknown path", http.MethodGet, "/api/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := do(t, tt.method, srv.URL+tt.path, "")
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestLoggingMiddlewareKeepsStatus(t *testing.T) {
	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}
