package ztm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"

	"github.com/patrickmn/go-cache"
)

// StopInfo describes one stop pole.
type StopInfo struct {
	StopID    string `json:"stop_id"`
	StopNr    string `json:"stop_nr"`
	Name      string `json:"name"`
	StreetID  string `json:"street_id,omitempty"`
	Latitude  string `json:"latitude,omitempty"`
	Longitude string `json:"longitude,omitempty"`
	Direction string `json:"direction,omitempty"`
	ValidFrom string `json:"valid_from,omitempty"`
}

func stopKey(stopID, stopNr string) string { return stopID + "/" + stopNr }

// groupKey addresses the first pole seen for a stop group.
func groupKey(stopID string) string { return stopID + "/*" }

// StopInfo returns the stop info of the pole, falling back to the first pole of the stop
// group. The whole stop list is fetched once and kept for the configured TTL.
func (c *Client) StopInfo(ctx context.Context, stopID, stopNr string) (StopInfo, error) {
	if info, ok := c.lookupStop(stopID, stopNr); ok {
		return info, nil
	}

	c.stopInfoMu.Lock()
	defer c.stopInfoMu.Unlock()
	// another caller may have loaded the list while we waited
	if info, ok := c.lookupStop(stopID, stopNr); ok {
		return info, nil
	}
	if err := c.loadStops(ctx); err != nil {
		return StopInfo{}, err
	}
	if info, ok := c.lookupStop(stopID, stopNr); ok {
		return info, nil
	}
	return StopInfo{}, fmt.Errorf("stop %s/%s: %w", stopID, stopNr, ErrStopNotFound)
}

func (c *Client) lookupStop(stopID, stopNr string) (StopInfo, bool) {
	if v, ok := c.stopInfo.Get(stopKey(stopID, stopNr)); ok {
		return v.(StopInfo), true
	}
	if v, ok := c.stopInfo.Get(groupKey(stopID)); ok {
		return v.(StopInfo), true
	}
	return StopInfo{}, false
}

func (c *Client) loadStops(ctx context.Context) error {
	params := url.Values{}
	params.Set("id", c.stopInfoID)

	items, err := c.fetchList(ctx, actionStore, params)
	if err != nil {
		return fmt.Errorf("stop info: %w", err)
	}
	loaded := 0
	for _, item := range items {
		var row valuesRow
		if err := json.Unmarshal(item, &row); err != nil {
			continue
		}
		v := cells(row.Values)
		info := StopInfo{
			StopID:    v["zespol"],
			StopNr:    v["slupek"],
			Name:      v["nazwa_zespolu"],
			StreetID:  v["id_ulicy"],
			Latitude:  v["szer_geo"],
			Longitude: v["dlug_geo"],
			Direction: v["kierunek"],
			ValidFrom: v["obowiazuje_od"],
		}
		if info.StopID == "" {
			continue
		}
		c.stopInfo.Set(stopKey(info.StopID, info.StopNr), info, cache.DefaultExpiration)
		if _, ok := c.stopInfo.Get(groupKey(info.StopID)); !ok {
			c.stopInfo.Set(groupKey(info.StopID), info, cache.DefaultExpiration)
		}
		loaded++
	}
	log.Printf("Loaded stop info for %d poles", loaded)
	return nil
}
