package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load([]string{"files"}, nil)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		ServerEndpointAddr: "127.0.0.1:50051",
		DatabaseFile:       "vaultshare.db",
		DownloadDir:        "downloads",
		RequestTimeout:     30 * time.Second,
		MaxFileSize:        32 << 20,
	}, cfg)
}

func TestLoad_Precedence(t *testing.T) {
	file := writeFile(t, `{
		"server_endpoint_addr": "file:1",
		"database_file": "file.db",
		"download_dir": "from-file",
		"request_timeout": "2m",
		"max_file_size": 4096
	}`)
	env := envMap(map[string]string{
		"VAULTSHARE_SERVER":  "env:2",
		"VAULTSHARE_TIMEOUT": "45s",
	})

	tests := []struct {
		name string
		args []string
		want func(c *Config)
	}{
		{
			name: "file and env",
			args: []string{"-c", file, "shares"},
			want: func(c *Config) {
				c.ServerEndpointAddr = "env:2"
				c.DatabaseFile = "file.db"
				c.DownloadDir = "from-file"
				c.RequestTimeout = 45 * time.Second
				c.MaxFileSize = 4096
			},
		},
		{
			name: "flags win",
			args: []string{"-config", file, "-a", "flag:3", "-t", "10", "-m", "1024", "-o", "/tmp/dl", "upload", "x.txt"},
			want: func(c *Config) {
				c.ServerEndpointAddr = "flag:3"
				c.DatabaseFile = "file.db"
				c.DownloadDir = "/tmp/dl"
				c.RequestTimeout = 10 * time.Second
				c.MaxFileSize = 1024
			},
		},
		{
			name: "duration timeout flag",
			args: []string{"--config=" + file, "-t", "1d"},
			want: func(c *Config) {
				c.ServerEndpointAddr = "env:2"
				c.DatabaseFile = "file.db"
				c.DownloadDir = "from-file"
				c.RequestTimeout = 24 * time.Hour
				c.MaxFileSize = 4096
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.args, env)
			require.NoError(t, err)

			want := defaults()
			tt.want(want)
			assert.Empty(t, cmp.Diff(want, got))
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	bad := writeFile(t, `{ this is not json`)

	tests := []struct {
		name string
		args []string
		env  map[string]string
		text string
	}{
		{"missing file", []string{"-c", filepath.Join(t.TempDir(), "nope.json")}, nil, "reading config file"},
		{"malformed file", []string{"-c", bad}, nil, "parsing config file"},
		{"bad timeout flag", []string{"-t", "soon"}, nil, "parsing flags"},
		{"bad size flag", []string{"-m", "big"}, nil, "parsing flags"},
		{"bad env timeout", nil, map[string]string{"VAULTSHARE_TIMEOUT": "x"}, "VAULTSHARE_TIMEOUT"},
		{"bad env size", nil, map[string]string{"VAULTSHARE_MAX_FILE_SIZE": "1e3"}, "VAULTSHARE_MAX_FILE_SIZE"},
		{"non-positive size", []string{"-m", "0"}, nil, "max file size"},
		{"empty address", []string{"-a", ""}, nil, "server address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args, envMap(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.text)
		})
	}
}

func TestValidate_ReportsEverything(t *testing.T) {
	err := (&Config{RequestTimeout: -time.Second}).Validate()
	require.Error(t, err)
	for _, s := range []string{"server address", "database file", "request timeout", "max file size"} {
		assert.Contains(t, err.Error(), s)
	}
}

func TestParseTimeout(t *testing.T) {
	d, err := parseTimeout("15")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, d)

	d, err = parseTimeout("90s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = parseTimeout("later")
	assert.Error(t, err)
}
