package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v9"
)

// Config holds all configuration for cmdbank.
type Config struct {
	// Home is the directory holding the data file, history database and log.
	Home      string `env:"CMDBANK_HOME"`
	DataFile  string `env:"CMDBANK_DATA_FILE"`
	HistoryDB string `env:"CMDBANK_HISTORY_DB"`
	NoHistory bool   `env:"CMDBANK_NO_HISTORY" envDefault:"false"`
	LogLevel  string `env:"CMDBANK_LOG_LEVEL" envDefault:"WARN"`
	LogFile   string `env:"CMDBANK_LOG_FILE"`

	Runner RunnerConfig
}

// RunnerConfig controls how built commands are executed.
type RunnerConfig struct {
	Shell         string `env:"CMDBANK_SHELL" envDefault:"sh"`
	PowerShell    string `env:"CMDBANK_POWERSHELL"`
	GAMLocal      bool   `env:"CMDBANK_GAM_LOCAL" envDefault:"false"`
	CloudShellURL string `env:"CMDBANK_CLOUD_SHELL_URL" envDefault:"https://shell.cloud.google.com/"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads the configuration from the given variables only.
func LoadFrom(vars map[string]string) (*Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		c.Home = filepath.Join(home, ".cmdbank")
	}
	if c.DataFile == "" {
		c.DataFile = filepath.Join(c.Home, "commands.json")
	}
	if c.HistoryDB == "" {
		c.HistoryDB = filepath.Join(c.Home, "history.db")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.Home, "cmdbank.log")
	}
	if c.Runner.PowerShell == "" {
		c.Runner.PowerShell = defaultPowerShell()
	}
	return nil
}

func defaultPowerShell() string {
	if runtime.GOOS == "windows" {
		return "powershell.exe"
	}
	return "pwsh"
}
