package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

type Config struct {
	ServerEndpointAddr string
	DatabaseFile       string
	DownloadDir        string
	RequestTimeout     time.Duration
	MaxFileSize        int64
}

// ValueFlags lists every flag that takes a value, including -c/-config, so
// callers can separate positional arguments from flags.
var ValueFlags = []string{"-a", "-f", "-o", "-t", "-m", "-c", "-config", "--config"}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabaseFile = "vaultshare.db"
	c.DownloadDir = "downloads"
	c.RequestTimeout = 30 * time.Second
	c.MaxFileSize = 32 << 20
}

// Load builds a Config from defaults, the JSON file named in args, the
// VAULTSHARE_* variables visible through lookupEnv and finally the flags in
// args. Positional arguments in args are ignored.
func Load(args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := applyFile(cfg, configPath(args)); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, lookupEnv); err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.LookupEnv)
}

func (c *Config) Validate() error {
	var errs []error
	if c.ServerEndpointAddr == "" {
		errs = append(errs, errors.New("server address is empty"))
	}
	if c.DatabaseFile == "" {
		errs = append(errs, errors.New("database file is empty"))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout))
	}
	if c.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("max file size must be positive, got %d", c.MaxFileSize))
	}
	return errors.Join(errs...)
}
