package extraction

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config tunes the heuristic parts of the catalog. It is always passed
// explicitly; the engine reads no globals.
type Config struct {
	// Window is the number of lines read below "Billing Address" and
	// "Shipping Address" labels.
	Window      int      `yaml:"window"`
	BlockLabels []string `yaml:"block_labels"`
	Structural  bool     `yaml:"structural_fallback"`
}

// DefaultConfig returns the settings the catalog was tuned with.
func DefaultConfig() Config {
	return Config{
		Window:      2,
		BlockLabels: append([]string(nil), DefaultBlockLabels...),
		Structural:  true,
	}
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = 2
	}
	if len(c.BlockLabels) == 0 {
		c.BlockLabels = append([]string(nil), DefaultBlockLabels...)
	}
	return c
}

// Validate checks that values are sane
func (c Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("window must be > 0")
	}
	if c.Window > 20 {
		return fmt.Errorf("window must be <= 20")
	}
	for i, label := range c.BlockLabels {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("block_labels[%d]: label is empty", i)
		}
	}
	return nil
}

// LoadProfile reads a YAML extraction profile. Keys missing from the file
// keep their DefaultConfig values.
func LoadProfile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading profile %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("profile %s: %w", path, err)
	}
	return cfg, nil
}
