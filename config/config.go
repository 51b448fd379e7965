package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config captures the daemon's runtime settings.
type Config struct {
	RPCAddress    string  `toml:"RPCAddress"`
	DataDir       string  `toml:"DataDir"`
	Env           string  `toml:"Env"`
	FeeBps        uint32  `toml:"FeeBps"`
	RatePerMinute float64 `toml:"RatePerMinute"`
	RateBurst     int     `toml:"RateBurst"`
}

func defaultConfig() *Config {
	return &Config{
		RPCAddress:    "127.0.0.1:8645",
		DataDir:       "./pooldata",
		Env:           "dev",
		FeeBps:        30,
		RatePerMinute: 600,
		RateBurst:     30,
	}
}

// Load reads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := defaultConfig()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	for _, undecoded := range meta.Undecoded() {
		return nil, fmt.Errorf("config: unknown key %q in %s", undecoded.String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values for internal consistency.
func (c *Config) Validate() error {
	if c.RPCAddress == "" {
		return fmt.Errorf("config: RPCAddress must not be empty")
	}
	if c.FeeBps >= 10_000 {
		return fmt.Errorf("config: FeeBps must be below 10000")
	}
	if c.RatePerMinute < 0 || c.RateBurst < 0 {
		return fmt.Errorf("config: rate limits must not be negative")
	}
	return nil
}

func createDefault(path string) (*Config, error) {
	cfg := defaultConfig()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
