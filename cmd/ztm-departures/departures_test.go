package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/ztm-departures/board"
	"github.com/theoremus-urban-solutions/ztm-departures/config"
)

func testViews() (time.Time, []board.View) {
	now := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)
	return now, []board.View{{
		Name: "Line 151 from 7009/01", Line: "151", StopID: "7009", StopNr: "01", State: "10",
		Departures: []board.Entry{{Index: 1, Time: "12:10", Scheduled: "12:10:00", Departure: "10 min", Direction: "Gocław", Timestamp: now.Add(10 * time.Minute)}},
	}}
}

func TestRender(t *testing.T) {
	now, views := testViews()

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr bool
	}{
		{"table", "table", "Gocław", false},
		{"json", "json", `"line":"151"`, false},
		{"siri", "siri", "ZTM:Line:151", false},
		{"unknown", "xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := render(&buf, tt.format, now, views)
			if (err != nil) != tt.wantErr {
				t.Fatalf("render error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output should contain %q:\n%s", tt.want, buf.String())
			}
		})
	}
}

func TestRenderProtobuf(t *testing.T) {
	now, views := testViews()
	var buf bytes.Buffer
	if err := render(&buf, "pb", now, views); err != nil {
		t.Fatalf("render: %v", err)
	}
	var msg gtfs.FeedMessage
	if err := proto.Unmarshal(buf.Bytes(), &msg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(msg.GetEntity()) != 1 {
		t.Errorf("entities = %d", len(msg.GetEntity()))
	}
}

func TestSelectBoards(t *testing.T) {
	saved := config.Config
	t.Cleanup(func() { config.Config = saved })
	config.Config = config.AppConfig{Boards: []config.Board{{Name: "a"}, {Name: "b"}}}

	all, err := selectBoards(nil)
	if err != nil || len(all) != 2 {
		t.Errorf("selectBoards(nil) = %v, %v", all, err)
	}
	one, err := selectBoards([]string{"b"})
	if err != nil || len(one) != 1 || one[0].Name != "b" {
		t.Errorf("selectBoards(b) = %v, %v", one, err)
	}
	if _, err := selectBoards([]string{"zzz"}); err == nil {
		t.Error("expected error for unknown board")
	}

	config.Config = config.AppConfig{}
	if _, err := selectBoards(nil); err == nil {
		t.Error("expected error without boards")
	}
}
