package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/vaultshare/internal/flagx"
	"github.com/dmitrijs2005/vaultshare/internal/timex"
)

// fileConfig is the on-disk form; unset fields keep their current value.
type fileConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	DatabaseFile       string         `json:"database_file"`
	DownloadDir        string         `json:"download_dir"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	MaxFileSize        int64          `json:"max_file_size"`
}

func configPath(args []string) string {
	var path string
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "c", "", "")
	fs.StringVar(&path, "config", "", "")
	_ = fs.Parse(flagx.FilterArgs(args, []string{"-c", "-config", "--config"}))
	return path
}

func applyFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	setString(&cfg.ServerEndpointAddr, fc.ServerEndpointAddr)
	setString(&cfg.DatabaseFile, fc.DatabaseFile)
	setString(&cfg.DownloadDir, fc.DownloadDir)
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.MaxFileSize > 0 {
		cfg.MaxFileSize = fc.MaxFileSize
	}
	return nil
}

func applyEnv(cfg *Config, lookupEnv func(string) (string, bool)) error {
	if lookupEnv == nil {
		return nil
	}
	get := func(name string) string {
		v, _ := lookupEnv(name)
		return v
	}

	setString(&cfg.ServerEndpointAddr, get("VAULTSHARE_SERVER"))
	setString(&cfg.DatabaseFile, get("VAULTSHARE_DB"))
	setString(&cfg.DownloadDir, get("VAULTSHARE_DOWNLOAD_DIR"))

	if v := get("VAULTSHARE_TIMEOUT"); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("VAULTSHARE_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v := get("VAULTSHARE_MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("VAULTSHARE_MAX_FILE_SIZE: %w", err)
		}
		cfg.MaxFileSize = n
	}
	return nil
}

func applyFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("vaultshare", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.DatabaseFile, "f", cfg.DatabaseFile, "local session database file")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")
	fs.Func("t", "per-command timeout, seconds or a duration such as 1m", func(s string) error {
		d, err := parseTimeout(s)
		if err == nil {
			cfg.RequestTimeout = d
		}
		return err
	})
	fs.Int64Var(&cfg.MaxFileSize, "m", cfg.MaxFileSize, "max file size (in bytes)")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-a", "-f", "-o", "-t", "-m"})); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}
	return nil
}

// parseTimeout accepts a bare number of seconds or anything
// timex.ParseDuration understands.
func parseTimeout(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return timex.ParseDuration(s)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
