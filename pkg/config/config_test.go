package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sapdocs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Address())
	assert.Equal(t, 25*time.Second, cfg.Server.RequestDeadline())
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionDeadline())
	assert.Equal(t, 100, cfg.Server.EventLogSize)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, 10*time.Second, cfg.Live.AdapterDeadline())
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "simple", cfg.Logger.Format)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("SAPDOCS_TEST_DATA", "/var/lib/sapdocs")

	path := writeConfig(t, `
data:
  dir: ${SAPDOCS_TEST_DATA}
server:
  host: ${SAPDOCS_TEST_HOST:-0.0.0.0}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/sapdocs", cfg.Data.Dir)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset variable falls back to default")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("BIND", "0.0.0.0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SAPDOCS_TAG_REGION", "eu10")

	path := writeConfig(t, `
server:
  port: 3001
logger:
  level: info
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "eu10", cfg.Tags["region"])
}

func TestLoadSources(t *testing.T) {
	path := writeConfig(t, `
sources:
  - repo: sapui5-docs
    dir: /srv/sources/sapui5
    library: /sapui5
    name: SAPUI5
    include: "docs/**/*.md"
    exclude: "docs/internal/**"
    extractor: markdown
  - repo: openui5
    dir: /srv/sources/openui5
    library: /openui5-api
    name: OpenUI5 API
    include: "src/**/*.js"
    extractor: jsdoc
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "sapui5", cfg.Sources[0].LibraryID())
	assert.Equal(t, ExtractorJSDoc, cfg.Sources[1].Extractor)
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "bad port",
			yaml: "server:\n  port: 70000\n",
			want: "invalid port",
		},
		{
			name: "bad duration",
			yaml: "server:\n  request_timeout: soon\n",
			want: "invalid request_timeout",
		},
		{
			name: "source missing dir",
			yaml: "sources:\n  - library: /cap\n    include: \"**/*.md\"\n    extractor: markdown\n",
			want: "dir is required",
		},
		{
			name: "library without slash",
			yaml: "sources:\n  - dir: /tmp\n    library: cap\n    include: \"**/*.md\"\n    extractor: markdown\n",
			want: "must start with '/'",
		},
		{
			name: "unknown extractor",
			yaml: "sources:\n  - dir: /tmp\n    library: /cap\n    include: \"**/*.md\"\n    extractor: pdf\n",
			want: "unknown extractor",
		},
		{
			name: "duplicate library",
			yaml: "sources:\n  - dir: /tmp/a\n    library: /cap\n    include: \"**/*.md\"\n    extractor: markdown\n  - dir: /tmp/b\n    library: /cap\n    include: \"**/*.md\"\n    extractor: markdown\n",
			want: "duplicate library",
		},
		{
			name: "bad live timeout",
			yaml: "live:\n  enabled: true\n  timeout: whenever\n",
			want: "invalid timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.yaml)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:3001", cfg.Server.Address())
}

func TestAdapterTTLFallback(t *testing.T) {
	a := AdapterConfig{}
	assert.Equal(t, time.Hour, a.TTL(time.Hour))

	a.CacheTTL = "15m"
	assert.Equal(t, 15*time.Minute, a.TTL(time.Hour))
}
