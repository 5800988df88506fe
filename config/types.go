package config

import (
	"strconv"
	"strings"
	"time"
)

// ServerConfig contains server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gte=0,lte=65535"`
}

// APIConfig contains the City of Warsaw open data API settings
type APIConfig struct {
	Key                string `yaml:"apiKey" validate:"required"`
	BaseURL            string `yaml:"baseURL" validate:"omitempty,url"`
	TimetableID        string `yaml:"timetableID"`
	LinesID            string `yaml:"linesID"`
	StopInfoID         string `yaml:"stopInfoID"`
	TimeoutMS          int    `yaml:"timeoutMS" validate:"gte=0"`
	MaxRetries         *int   `yaml:"maxRetries" validate:"omitempty,gte=0,lte=5"` // nil = default, 0 = no retries
	RetryBackoffMS     int    `yaml:"retryBackoffMS" validate:"gte=0"`
	StopInfoTTLSeconds int    `yaml:"stopInfoTTLSeconds" validate:"gte=0"` // 0 = never refetch
}

// DisplayConfig controls how minutes are rendered
type DisplayConfig struct {
	CeilingMinutes int    `yaml:"ceilingMinutes" validate:"gte=0"`
	CeilingLabel   string `yaml:"ceilingLabel"`
	// TimetableURL is a template with {line}, {stop}, {pole} and {date} placeholders.
	TimetableURL string `yaml:"timetableURL"`
}

// RefreshConfig contains the timetable refresh schedule
type RefreshConfig struct {
	DailyAt           string `yaml:"dailyAt" validate:"omitempty,datetime=15:04"`
	JitterMaxSeconds  int    `yaml:"jitterMaxSeconds" validate:"gte=0"`
	RetryDelaySeconds int    `yaml:"retryDelaySeconds" validate:"gte=0"`
}

// Board is a single stop/pole/line departure board
type Board struct {
	Name       string `yaml:"name" validate:"required"`
	StopID     string `yaml:"stop_id" validate:"required,numeric"`
	StopNr     string `yaml:"stop_nr" validate:"required,len=2,numeric"`
	Line       string `yaml:"line" validate:"required"`
	Departures int    `yaml:"departures" validate:"gte=1,lte=3"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig  `yaml:"server"`
	API      APIConfig     `yaml:"api"`
	Display  DisplayConfig `yaml:"display"`
	Refresh  RefreshConfig `yaml:"refresh"`
	Timezone string        `yaml:"timezone" validate:"omitempty,timezone"`
	Boards   []Board       `yaml:"boards" validate:"dive"`
}

// boardYAML accepts the key aliases used by older integrations.
type boardYAML struct {
	Name       string `yaml:"name"`
	StopID     string `yaml:"stop_id"`
	BusstopID  string `yaml:"busstop_id"`
	Zespol     string `yaml:"zespol"`
	StopNr     string `yaml:"stop_nr"`
	BusstopNr  string `yaml:"busstop_nr"`
	Slupek     string `yaml:"slupek"`
	Line       string `yaml:"line"`
	Linia      string `yaml:"linia"`
	Departures int    `yaml:"departures"`
}

// Location returns the configured time zone, falling back to the process zone.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DailyClock returns the hour and minute of the daily refresh.
func (r RefreshConfig) DailyClock() (int, int) {
	parts := strings.SplitN(r.DailyAt, ":", 2)
	if len(parts) != 2 {
		return 2, 30
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 2, 30
	}
	return h, m
}

// Timeout returns the upstream request timeout.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutMS) * time.Millisecond
}

// Retries returns how often a failed request is retried.
func (a APIConfig) Retries() int {
	if a.MaxRetries == nil {
		return defaultMaxRetries
	}
	return *a.MaxRetries
}

// RetryBackoff returns the first retry backoff.
func (a APIConfig) RetryBackoff() time.Duration {
	return time.Duration(a.RetryBackoffMS) * time.Millisecond
}

// StopInfoTTL returns how long stop metadata stays cached.
func (a APIConfig) StopInfoTTL() time.Duration {
	return time.Duration(a.StopInfoTTLSeconds) * time.Second
}
