package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"distancia/core/types"
)

// Genesis holds the economic parameters written into the ledger the first
// time a node boots over an empty database. After that the owner-gated
// setters are the only way to change them.
type Genesis struct {
	DistanciaPrice                     string `toml:"DistanciaPrice"`
	MinimumAdValue                     string `toml:"MinimumAdValue"`
	PercentageAdWatchValue             string `toml:"PercentageAdWatchValue"`
	PercentageCommissionValue          string `toml:"PercentageCommissionValue"`
	PercentageMilestoneCompletionValue string `toml:"PercentageMilestoneCompletionValue"`
}

// Telemetry holds the OpenTelemetry exporter settings.
type Telemetry struct {
	Endpoint string `toml:"Endpoint"`
	Insecure bool   `toml:"Insecure"`
	Metrics  bool   `toml:"Metrics"`
	Traces   bool   `toml:"Traces"`
}

// Config is the node-level configuration. Economic parameters live in the
// ledger, not here; Genesis only seeds them.
type Config struct {
	ListenAddress           string    `toml:"ListenAddress"`
	DataDir                 string    `toml:"DataDir"`
	Environment             string    `toml:"Environment"`
	Owner                   string    `toml:"Owner"`
	TokenServiceURL         string    `toml:"TokenServiceURL"`
	CallbackURL             string    `toml:"CallbackURL"`
	ReservationTTLSeconds   uint64    `toml:"ReservationTTLSeconds"`
	SweepIntervalSeconds    uint64    `toml:"SweepIntervalSeconds"`
	LogFile                 string    `toml:"LogFile"`
	LogFileMaxSizeMegabytes int       `toml:"LogFileMaxSizeMegabytes"`
	Genesis                 Genesis   `toml:"Genesis"`
	Telemetry               Telemetry `toml:"Telemetry"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		ListenAddress:           ":8645",
		DataDir:                 "./distancia-data",
		Owner:                   "owner.distancia",
		TokenServiceURL:         "http://localhost:9600",
		CallbackURL:             "http://localhost:8645/callbacks/token",
		ReservationTTLSeconds:   900,
		SweepIntervalSeconds:    60,
		LogFileMaxSizeMegabytes: 100,
		Genesis: Genesis{
			DistanciaPrice:                     "2",
			MinimumAdValue:                     "1000",
			PercentageAdWatchValue:             "100000",
			PercentageCommissionValue:          "100000",
			PercentageMilestoneCompletionValue: "200000",
		},
	}
}

func createDefault(path string) (*Config, error) {
	cfg := defaultConfig()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create config directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create default config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := defaultConfig()
	if strings.TrimSpace(c.ListenAddress) == "" {
		c.ListenAddress = def.ListenAddress
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = def.DataDir
	}
	if c.ReservationTTLSeconds == 0 {
		c.ReservationTTLSeconds = def.ReservationTTLSeconds
	}
	if c.SweepIntervalSeconds == 0 {
		c.SweepIntervalSeconds = def.SweepIntervalSeconds
	}
	if c.LogFileMaxSizeMegabytes <= 0 {
		c.LogFileMaxSizeMegabytes = def.LogFileMaxSizeMegabytes
	}
	if strings.TrimSpace(c.Genesis.DistanciaPrice) == "" {
		c.Genesis = def.Genesis
	}
}

// Validate rejects configurations that would boot a node into a faulted
// economy or an unreachable token service.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Owner) == "" {
		return fmt.Errorf("config: Owner principal required")
	}
	if strings.TrimSpace(c.TokenServiceURL) == "" {
		return fmt.Errorf("config: TokenServiceURL required")
	}
	if strings.TrimSpace(c.CallbackURL) == "" {
		return fmt.Errorf("config: CallbackURL required")
	}
	if _, err := c.GenesisParams(); err != nil {
		return err
	}
	return nil
}

// GenesisParams parses and validates the seed parameters.
func (c *Config) GenesisParams() (*types.Params, error) {
	p := &types.Params{}
	fields := []struct {
		name string
		raw  string
		dst  **big.Int
	}{
		{"DistanciaPrice", c.Genesis.DistanciaPrice, &p.DistanciaPrice},
		{"MinimumAdValue", c.Genesis.MinimumAdValue, &p.MinimumAdValue},
		{"PercentageAdWatchValue", c.Genesis.PercentageAdWatchValue, &p.PercentageAdWatchValue},
		{"PercentageCommissionValue", c.Genesis.PercentageCommissionValue, &p.PercentageCommissionValue},
		{"PercentageMilestoneCompletionValue", c.Genesis.PercentageMilestoneCompletionValue, &p.PercentageMilestoneCompletionValue},
	}
	for _, field := range fields {
		value, ok := new(big.Int).SetString(strings.TrimSpace(field.raw), 10)
		if !ok {
			return nil, fmt.Errorf("config: invalid Genesis.%s %q", field.name, field.raw)
		}
		*field.dst = value
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return p, nil
}

// ReservationTTL returns the reservation lifetime as a duration.
func (c *Config) ReservationTTL() time.Duration {
	return time.Duration(c.ReservationTTLSeconds) * time.Second
}

// SweepInterval returns the sweeper cadence as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
