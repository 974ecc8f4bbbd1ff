package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"numpy", "numpy"},
		{"PyYAML", "pyyaml"},
		{"typing_extensions", "typing-extensions"},
		{"ruamel.yaml", "ruamel-yaml"},
		{"foo--bar__baz", "foo-bar-baz"},
		{"Sphinx", "sphinx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalName(tt.in), tt.in)
	}
}

func TestRequirementPinned(t *testing.T) {
	tests := []struct {
		name     string
		specs    []Specifier
		wantVer  string
		wantBool bool
	}{
		{"exact pin", []Specifier{{Op: "==", Version: "1.26.0"}}, "1.26.0", true},
		{"arbitrary equality", []Specifier{{Op: "===", Version: "1.0+local"}}, "1.0+local", true},
		{"wildcard is not a pin", []Specifier{{Op: "==", Version: "1.26.*"}}, "", false},
		{"range", []Specifier{{Op: ">=", Version: "1.17.2"}}, "", false},
		{"bare", nil, "", false},
		{"pin among others", []Specifier{{Op: ">=", Version: "1.0"}, {Op: "==", Version: "1.2"}}, "1.2", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ver, ok := Requirement{Specifiers: tt.specs}.Pinned()
			assert.Equal(t, tt.wantBool, ok)
			assert.Equal(t, tt.wantVer, ver)
		})
	}
}

func TestRequirementString(t *testing.T) {
	req := Requirement{
		Name:       "black",
		Extras:     []string{"jupyter"},
		Specifiers: []Specifier{{Op: "==", Version: "21.4b0"}},
	}
	assert.Equal(t, "black[jupyter]==21.4b0", req.String())

	urlReq := Requirement{Name: "requests", URL: "https://example.com/requests.whl"}
	assert.Equal(t, "requests @ https://example.com/requests.whl", urlReq.String())
}

func TestFindingsCounts(t *testing.T) {
	fs := Findings{
		{Severity: SeverityError},
		{Severity: SeverityWarning},
		{Severity: SeverityWarning},
	}
	assert.Equal(t, 1, fs.Errors())
	assert.Equal(t, 2, fs.Warnings())
}

func TestConfigLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reqlint.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
format = "json"
strict = true
disable = ["REQ102", "REQ103"]
cache_ttl_hours = 6
index_url = "https://mirror.example.com"
timeout_seconds = 5
log_level = "debug"
`), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "json", cfg.OutputFormat)
	assert.True(t, cfg.Strict)
	assert.Equal(t, []string{"REQ102", "REQ103"}, cfg.DisabledRules)
	assert.Equal(t, 6*time.Hour, cfg.CacheTTL)
	assert.Equal(t, "https://mirror.example.com", cfg.IndexURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)

	assert.True(t, cfg.RuleDisabled("REQ102"))
	assert.False(t, cfg.RuleDisabled("REQ001"))
}

func TestConfigLoadFileMissing(t *testing.T) {
	cfg := DefaultConfig()

	// The default-path file is optional
	assert.NoError(t, cfg.LoadFile(DefaultConfigFile))

	// An explicitly requested file is not
	assert.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "absent.toml")))
}
