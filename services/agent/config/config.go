package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

var knownSystemMetrics = map[string]struct{}{
	"cpu":      {},
	"ram":      {},
	"disk":     {},
	"net_sent": {},
	"net_recv": {},
}

// SystemDeviceConfig defines the device reporting the operating system metrics
type SystemDeviceConfig struct {
	Name    string   `toml:"Name"`
	Metrics []string `toml:"Metrics"`
}

// TickerDeviceConfig defines the device reporting the price of the tracked symbols
type TickerDeviceConfig struct {
	Name      string `toml:"Name"`
	PriceURL  string `toml:"PriceURL"`
	PricePath string `toml:"PricePath"`
}

// Config maps to the config.toml file for the snapshot agent
type Config struct {
	Name                     string             `toml:"Name"`
	CaptureIntervalInSeconds uint32             `toml:"CaptureIntervalInSeconds"`
	WebHost                  string             `toml:"WebHost"`
	PostAPIEndpoint          string             `toml:"PostAPIEndpoint"`
	SymbolsAPIEndpoint       string             `toml:"SymbolsAPIEndpoint"`
	RequestTimeoutInSeconds  uint32             `toml:"RequestTimeoutInSeconds"`
	StockSymbols             []string           `toml:"StockSymbols"`
	SystemDevice             SystemDeviceConfig `toml:"SystemDevice"`
	TickerDevice             TickerDeviceConfig `toml:"TickerDevice"`
}

// PostURL returns the full URL the snapshots are delivered to
func (cfg Config) PostURL() string {
	return cfg.WebHost + cfg.PostAPIEndpoint
}

// SymbolsURL returns the full URL the desired symbols are fetched from, or empty if not configured
func (cfg Config) SymbolsURL() string {
	if len(cfg.SymbolsAPIEndpoint) == 0 {
		return ""
	}

	return cfg.WebHost + cfg.SymbolsAPIEndpoint
}

// TickersEnabled returns true if the ticker device has to be created
func (cfg Config) TickersEnabled() bool {
	return len(cfg.TickerDevice.Name) > 0
}

// Validate checks that all the required values are present
func (cfg Config) Validate() error {
	if cfg.CaptureIntervalInSeconds == 0 {
		return errors.New("CaptureIntervalInSeconds is not set")
	}
	if len(cfg.WebHost) == 0 {
		return errors.New("WebHost is not set")
	}
	if len(cfg.PostAPIEndpoint) == 0 {
		return errors.New("PostAPIEndpoint is not set")
	}
	if cfg.RequestTimeoutInSeconds == 0 {
		return errors.New("RequestTimeoutInSeconds is not set")
	}
	if len(cfg.SystemDevice.Name) == 0 {
		return errors.New("SystemDevice.Name is not set")
	}
	for _, metric := range cfg.SystemDevice.Metrics {
		_, known := knownSystemMetrics[metric]
		if !known {
			return fmt.Errorf("unknown system metric %q", metric)
		}
	}
	if cfg.SystemDevice.Name == cfg.TickerDevice.Name {
		return errors.New("SystemDevice and TickerDevice must have different names")
	}

	needsTickers := len(cfg.StockSymbols) > 0 || len(cfg.SymbolsAPIEndpoint) > 0
	if needsTickers && !cfg.TickersEnabled() {
		return errors.New("TickerDevice.Name is not set but symbols are configured")
	}
	if !cfg.TickersEnabled() {
		return nil
	}
	if len(cfg.TickerDevice.PriceURL) == 0 {
		return errors.New("TickerDevice.PriceURL is not set")
	}
	if len(cfg.TickerDevice.PricePath) == 0 {
		return errors.New("TickerDevice.PricePath is not set")
	}

	return nil
}

// LoadConfig parses a TOML file into the Config struct
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	var cfg Config
	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config file '%s': %w", filepath, err)
	}

	return &cfg, nil
}
