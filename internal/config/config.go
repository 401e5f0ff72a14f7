package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/serialcables/calypso/internal/compliance"
)

type Config struct {
	Thresholds Thresholds `yaml:"thresholds"`
	// FallbackActivePorts is assumed in service when no topology source
	// yields active ports. Empty means the built-in default set.
	FallbackActivePorts []int   `yaml:"fallback_active_ports,omitempty"`
	History             History `yaml:"history"`
}

type Thresholds struct {
	// CriticalErrorCount flags a counter field or port total as critical.
	CriticalErrorCount uint64 `yaml:"critical_error_count"`
	// Compliance limits; zero values take the documented PCIe 6.x defaults.
	Compliance compliance.Thresholds `yaml:"compliance"`
}

type History struct {
	DBPath string `yaml:"db_path,omitempty"`
}

// defaultConfig provides baseline settings; every threshold defaults to
// its documented value.
var defaultConfig = Config{
	Thresholds: Thresholds{
		CriticalErrorCount: 10,
		Compliance:         compliance.DefaultThresholds(),
	},
}

func Load(path string) (*Config, error) {
	if path == "" {
		// Try default locations
		candidates := []string{
			"/etc/calypso/config.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/calypso/config.yaml"),
			"config.yaml",
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	var cfg Config
	if path == "" {
		// No config file found - run on defaults
		cfg = defaultConfig
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			cfg = defaultConfig
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, err
			}
		}
	}

	// Apply defaults for missing thresholds
	if cfg.Thresholds.CriticalErrorCount == 0 {
		cfg.Thresholds.CriticalErrorCount = defaultConfig.Thresholds.CriticalErrorCount
	}
	applyComplianceDefaults(&cfg.Thresholds.Compliance)

	return &cfg, nil
}

func applyComplianceDefaults(c *compliance.Thresholds) {
	defaults := compliance.DefaultThresholds()
	if c.MaxResetRecoveryMs == 0 {
		c.MaxResetRecoveryMs = defaults.MaxResetRecoveryMs
	}
	if c.MaxRetrainMs == 0 {
		c.MaxRetrainMs = defaults.MaxRetrainMs
	}
	if c.MaxPortErrors == 0 {
		c.MaxPortErrors = defaults.MaxPortErrors
	}
	if c.MaxRecoveryRatio == 0 {
		c.MaxRecoveryRatio = defaults.MaxRecoveryRatio
	}
	if c.PassScore == 0 {
		c.PassScore = defaults.PassScore
	}
	if c.SeverityMultiplier == 0 {
		c.SeverityMultiplier = defaults.SeverityMultiplier
	}
}
