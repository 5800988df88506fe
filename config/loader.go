package config

import (
	"fmt"
	"os"
	"strings"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

const (
	DefaultPort           = 16182
	DefaultBaseURL        = "https://api.um.warszawa.pl/api/action/"
	DefaultTimetableID    = "e923fa0e-d96c-43f9-ae6e-60518c9f3238"
	DefaultLinesID        = "88cd555f-6f31-43ca-9de4-66c479ad5942"
	DefaultStopInfoID     = "ab75c33d-3a26-4342-b36a-6e5fef0a3ac3"
	DefaultTimezone       = "Europe/Warsaw"
	DefaultTimetableURL   = "https://www.wtp.waw.pl/rozklady-jazdy/?wtp_dt={date}&wtp_md=5&wtp_ln={line}&wtp_st={stop}&wtp_pt={pole}"
	DefaultDailyAt        = "02:30"
	defaultTimeoutMS      = 20000
	defaultMaxRetries     = 1
	defaultRetryBackoffMS = 1500
	defaultJitterSeconds  = 45
	defaultRetrySeconds   = 120
)

// APIKeyEnv overrides api.apiKey when set.
const APIKeyEnv = "ZTM_API_KEY"

var defaultPaths = []string{"config.yml", "./config/config.yml"}

// LoadAppConfig loads and validates the application configuration and stores it in Config.
// Without explicit paths config.yml is searched in the working directory.
func LoadAppConfig(paths ...string) error {
	cfg, err := Load(paths...)
	if err != nil {
		return err
	}
	Config = cfg
	return nil
}

// Load reads the first existing file from paths.
func Load(paths ...string) (AppConfig, error) {
	if len(paths) == 0 {
		paths = defaultPaths
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return AppConfig{}, err
	}
	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, err
	}
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		cfg.API.Key = key
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks struct tags and board name uniqueness.
func Validate(cfg AppConfig) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, b := range cfg.Boards {
		if seen[b.Name] {
			return fmt.Errorf("duplicate board name %q", b.Name)
		}
		seen[b.Name] = true
	}
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.API.TimetableID == "" {
		cfg.API.TimetableID = DefaultTimetableID
	}
	if cfg.API.LinesID == "" {
		cfg.API.LinesID = DefaultLinesID
	}
	if cfg.API.StopInfoID == "" {
		cfg.API.StopInfoID = DefaultStopInfoID
	}
	if cfg.API.TimeoutMS == 0 {
		cfg.API.TimeoutMS = defaultTimeoutMS
	}
	if cfg.API.MaxRetries == nil {
		retries := defaultMaxRetries
		cfg.API.MaxRetries = &retries
	}
	if cfg.API.RetryBackoffMS == 0 {
		cfg.API.RetryBackoffMS = defaultRetryBackoffMS
	}
	if cfg.Display.CeilingMinutes == 0 {
		cfg.Display.CeilingMinutes = 60
	}
	if cfg.Display.CeilingLabel == "" {
		cfg.Display.CeilingLabel = "60+ min"
	}
	if cfg.Display.TimetableURL == "" {
		cfg.Display.TimetableURL = DefaultTimetableURL
	}
	if cfg.Refresh.DailyAt == "" {
		cfg.Refresh.DailyAt = DefaultDailyAt
	}
	if cfg.Refresh.JitterMaxSeconds == 0 {
		cfg.Refresh.JitterMaxSeconds = defaultJitterSeconds
	}
	if cfg.Refresh.RetryDelaySeconds == 0 {
		cfg.Refresh.RetryDelaySeconds = defaultRetrySeconds
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	for i := range cfg.Boards {
		if cfg.Boards[i].Departures == 0 {
			cfg.Boards[i].Departures = 1
		}
		if cfg.Boards[i].Name == "" {
			b := cfg.Boards[i]
			cfg.Boards[i].Name = fmt.Sprintf("line_%s_from_%s_%s", b.Line, b.StopID, b.StopNr)
		}
	}
}

// UnmarshalYAML accepts busstop_id/zespol, busstop_nr/slupek and linia as aliases.
func (b *Board) UnmarshalYAML(value *yaml.Node) error {
	var raw boardYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*b = Board{
		Name:       strings.TrimSpace(raw.Name),
		StopID:     firstNonEmpty(raw.StopID, raw.BusstopID, raw.Zespol),
		StopNr:     firstNonEmpty(raw.StopNr, raw.BusstopNr, raw.Slupek),
		Line:       firstNonEmpty(raw.Line, raw.Linia),
		Departures: raw.Departures,
	}
	return nil
}

// SelectBoard chooses a board by name; fallback to first.
func SelectBoard(name string) (Board, bool) {
	return Config.SelectBoard(name)
}

// SelectBoard chooses a board by name; an empty name picks the first board.
func (c AppConfig) SelectBoard(name string) (Board, bool) {
	if name != "" {
		for _, b := range c.Boards {
			if b.Name == name {
				return b, true
			}
		}
		return Board{}, false
	}
	if len(c.Boards) > 0 {
		return c.Boards[0], true
	}
	return Board{}, false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
