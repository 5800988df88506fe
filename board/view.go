package board

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/ztm-departures/departures"
)

// Attribution credits the data provider.
const Attribution = "Data provided by the City of Warsaw (api.um.warszawa.pl)"

// Entry is one row of a board view.
type Entry struct {
	Index        int       `json:"index"`
	Time         string    `json:"time"`
	Scheduled    string    `json:"scheduled"`
	Departure    string    `json:"departure"`
	Direction    string    `json:"direction"`
	Timestamp    time.Time `json:"timestamp"`
	ServiceDay   time.Time `json:"service_day"`
	MinutesUntil int       `json:"minutes_until"`
	NightService bool      `json:"night_service,omitempty"`
	Brigade      string    `json:"brigade,omitempty"`
}

// View is the rendered state of a board at one instant.
type View struct {
	Board        string     `json:"board"`
	Name         string     `json:"name"`
	UniqueID     string     `json:"unique_id"`
	Line         string     `json:"line"`
	LineType     string     `json:"line_type"`
	Icon         string     `json:"icon"`
	StopID       string     `json:"stop_id"`
	StopNr       string     `json:"stop_nr"`
	StopName     string     `json:"stop_name,omitempty"`
	ServiceDay   time.Time  `json:"service_day"`
	State        string     `json:"state"`
	Unit         string     `json:"unit"`
	Display      string     `json:"display"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
	Departures   []Entry    `json:"departures"`
	Note         string     `json:"note,omitempty"`
	Skipped      int        `json:"skipped,omitempty"`
	TimetableURL string     `json:"timetable_url"`
	Attribution  string     `json:"attribution"`
	GeneratedAt  time.Time  `json:"generated_at"`
}

// View renders the board at now with the configured number of departures.
func (b *Board) View(now time.Time) View {
	return b.ViewN(now, 0)
}

// ViewN renders the board at now with up to k departures, k <= 0 meaning the configured count.
func (b *Board) ViewN(now time.Time, k int) View {
	now = now.In(b.settings.Location)
	cfg := b.Config()
	stop := b.StopInfo()
	res := b.Select(now, k)
	serviceDay := departures.ServiceDayStart(now)
	ceiling := b.settings.Options.CeilingMinutes

	v := View{
		Board:        cfg.Name,
		Name:         friendlyName(cfg.Line, cfg.StopID, cfg.StopNr, stop.Name),
		UniqueID:     fmt.Sprintf("ztm_%s_%s_%s", cfg.Line, cfg.StopID, cfg.StopNr),
		Line:         cfg.Line,
		LineType:     departures.LineType(cfg.Line),
		Icon:         departures.LineIcon(cfg.Line),
		StopID:       cfg.StopID,
		StopNr:       cfg.StopNr,
		StopName:     stop.Name,
		ServiceDay:   serviceDay,
		State:        strconv.Itoa(ceiling) + "+",
		Unit:         "min",
		Display:      res.Display,
		Note:         res.Note,
		Skipped:      res.Skipped,
		TimetableURL: timetableURL(b.settings.TimetableURL, cfg.Line, cfg.StopID, cfg.StopNr, serviceDay),
		Attribution:  Attribution,
		GeneratedAt:  now,
		Departures:   make([]Entry, 0, len(res.Departures)),
	}

	for i, d := range res.Departures {
		v.Departures = append(v.Departures, Entry{
			Index:        i + 1,
			Time:         d.Timestamp.Format("15:04"),
			Scheduled:    d.ScheduledTime,
			Departure:    d.Display,
			Direction:    d.Direction,
			Timestamp:    d.Timestamp,
			ServiceDay:   serviceDay,
			MinutesUntil: d.MinutesUntil,
			NightService: d.NightService,
			Brigade:      d.Brigade,
		})
	}
	if next, ok := res.Next(); ok {
		ts := next.Timestamp
		v.Timestamp = &ts
		if next.MinutesUntil < ceiling {
			v.State = strconv.Itoa(next.MinutesUntil)
		}
	}
	return v
}

// Attributes flattens the view into the "[i] Time" style attribute map.
func (v View) Attributes() map[string]string {
	attrs := map[string]string{
		"line":          v.Line,
		"line_type":     v.LineType,
		"stop_id":       v.StopID,
		"stop_nr":       v.StopNr,
		"timetable_url": v.TimetableURL,
		"attribution":   v.Attribution,
	}
	if v.StopName != "" {
		attrs["stop_name"] = v.StopName
	}
	if v.Note != "" {
		attrs["note"] = v.Note
	}
	for _, e := range v.Departures {
		attrs[fmt.Sprintf("[%d] Time", e.Index)] = e.Time
		attrs[fmt.Sprintf("[%d] Departure", e.Index)] = e.Departure
		attrs[fmt.Sprintf("[%d] Direction", e.Index)] = e.Direction
	}
	return attrs
}

func friendlyName(line, stopID, stopNr, stopName string) string {
	if stopName != "" {
		return fmt.Sprintf("Line %s from %s %s", line, stopName, stopNr)
	}
	return fmt.Sprintf("Line %s from %s/%s", line, stopID, stopNr)
}

func timetableURL(tmpl, line, stopID, stopNr string, day time.Time) string {
	if tmpl == "" {
		return ""
	}
	return strings.NewReplacer(
		"{line}", line,
		"{stop}", stopID,
		"{pole}", stopNr,
		"{date}", day.Format("2006-01-02"),
	).Replace(tmpl)
}
