// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Each board is one (stop, pole, line) triple; boards are selected by name.
package config
