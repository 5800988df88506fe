package ztm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/theoremus-urban-solutions/ztm-departures/departures"
)

const (
	actionTimetable = "dbtimetable_get"
	actionStore     = "dbstore_get"
)

// Timetable returns the scheduled departures of line at the stop pole for today.
// A null or empty result yields departures.ErrNoDeparturesToday.
func (c *Client) Timetable(ctx context.Context, stopID, stopNr, line string) ([]departures.RawDeparture, error) {
	params := url.Values{}
	params.Set("id", c.timetableID)
	params.Set("busstopId", stopID)
	params.Set("busstopNr", stopNr)
	params.Set("line", line)

	items, err := c.fetchList(ctx, actionTimetable, params)
	if errors.Is(err, ErrEmptyResult) || (err == nil && len(items) == 0) {
		return nil, fmt.Errorf("line %s at %s/%s: %w", line, stopID, stopNr, departures.ErrNoDeparturesToday)
	}
	if err != nil {
		return nil, err
	}

	out := make([]departures.RawDeparture, 0, len(items))
	for i, item := range items {
		var kvs []keyValue
		if err := json.Unmarshal(item, &kvs); err != nil {
			log.Printf("timetable %s/%s line %s: skipping undecodable row %d", stopID, stopNr, line, i)
			continue
		}
		row := cells(kvs)
		out = append(out, departures.RawDeparture{
			Line:          line,
			ScheduledTime: strings.TrimSpace(row["czas"]),
			Direction:     row["kierunek"],
			Brigade:       row["brygada"],
			Route:         row["trasa"],
			Symbol1:       row["symbol_1"],
			Symbol2:       row["symbol_2"],
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("line %s at %s/%s: %w", line, stopID, stopNr, departures.ErrNoDeparturesToday)
	}
	return out, nil
}

// Lines returns the lines serving the stop pole, in API order.
func (c *Client) Lines(ctx context.Context, stopID, stopNr string) ([]string, error) {
	params := url.Values{}
	params.Set("id", c.linesID)
	params.Set("busstopId", stopID)
	params.Set("busstopNr", stopNr)

	items, err := c.fetchList(ctx, actionTimetable, params)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		var row valuesRow
		if err := json.Unmarshal(item, &row); err != nil {
			continue
		}
		if line := cells(row.Values)["linia"]; line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
