package config

import "errors"

// Config maps to the config.toml file for the collector service
type Config struct {
	ListenAddress    string   `toml:"ListenAddress"`
	RetentionSeconds int      `toml:"RetentionSeconds"`
	InitialSymbols   []string `toml:"InitialSymbols"`
}

// Validate checks that all the required values are present
func (cfg Config) Validate() error {
	if len(cfg.ListenAddress) == 0 {
		return errors.New("ListenAddress is not set")
	}
	if cfg.RetentionSeconds <= 0 {
		return errors.New("RetentionSeconds should be positive")
	}

	return nil
}
