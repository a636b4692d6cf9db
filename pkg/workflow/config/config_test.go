package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luomsis/agent4everything/pkg/workflow/config"
)

// TestNew verifies Config creation from maps.
func TestNew(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{"nil map", nil},
		{"empty map", map[string]any{}},
		{"with values", map[string]any{"key": "value"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(tt.data)
			assert.NotNil(t, cfg.Raw())
		})
	}
}

// TestString verifies string extraction with defaults.
func TestString(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		key        string
		defaultVal string
		want       string
	}{
		{"key exists", map[string]any{"name": "alice"}, "name", "default", "alice"},
		{"key missing", map[string]any{"other": "value"}, "name", "default", "default"},
		{"empty string", map[string]any{"name": ""}, "name", "default", ""},
		{"wrong type int", map[string]any{"name": 123}, "name", "default", "default"},
		{"wrong type bool", map[string]any{"name": true}, "name", "default", "default"},
		{"nil map", nil, "name", "default", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(tt.data)
			got := cfg.String(tt.key, tt.defaultVal)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestString_DottedPath verifies nested map traversal.
func TestString_DottedPath(t *testing.T) {
	cfg := config.New(map[string]any{
		"database": map[string]any{
			"path": "data.db",
		},
		"flat.key": "literal",
	})

	assert.Equal(t, "data.db", cfg.String("database.path", "fallback"))
	assert.Equal(t, "fallback", cfg.String("database.missing", "fallback"))
	assert.Equal(t, "fallback", cfg.String("missing.path", "fallback"))

	// A literal dotted key wins over path traversal.
	assert.Equal(t, "literal", cfg.String("flat.key", "fallback"))
}

// TestBool verifies bool extraction with defaults.
func TestBool(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		key        string
		defaultVal bool
		want       bool
	}{
		{"true value", map[string]any{"enabled": true}, "enabled", false, true},
		{"false value", map[string]any{"enabled": false}, "enabled", true, false},
		{"key missing", map[string]any{}, "enabled", true, true},
		{"wrong type", map[string]any{"enabled": "yes"}, "enabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(tt.data)
			got := cfg.Bool(tt.key, tt.defaultVal)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestInt verifies int extraction with numeric conversions.
func TestInt(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		key        string
		defaultVal int
		want       int
	}{
		{"int value", map[string]any{"count": 42}, "count", 0, 42},
		{"int64 value", map[string]any{"count": int64(7)}, "count", 0, 7},
		{"whole float64", map[string]any{"count": float64(9)}, "count", 0, 9},
		{"fractional float64", map[string]any{"count": 9.5}, "count", 3, 3},
		{"key missing", map[string]any{}, "count", 5, 5},
		{"wrong type", map[string]any{"count": "42"}, "count", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(tt.data)
			got := cfg.Int(tt.key, tt.defaultVal)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestDuration verifies duration extraction with various input types.
func TestDuration(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		key        string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"string duration", map[string]any{"timeout": "30s"}, "timeout", 10 * time.Second, 30 * time.Second},
		{"string complex duration", map[string]any{"timeout": "1h30m"}, "timeout", 10 * time.Second, 90 * time.Minute},
		{"int seconds", map[string]any{"timeout": 60}, "timeout", 10 * time.Second, 60 * time.Second},
		{"int64 seconds", map[string]any{"timeout": int64(45)}, "timeout", 10 * time.Second, 45 * time.Second},
		{"float64 seconds", map[string]any{"timeout": 30.5}, "timeout", 10 * time.Second, 30*time.Second + 500*time.Millisecond},
		{"time.Duration directly", map[string]any{"timeout": 5 * time.Minute}, "timeout", 10 * time.Second, 5 * time.Minute},
		{"key missing", map[string]any{}, "timeout", 10 * time.Second, 10 * time.Second},
		{"invalid string", map[string]any{"timeout": "invalid"}, "timeout", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(tt.data)
			got := cfg.Duration(tt.key, tt.defaultVal)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestStringSlice verifies string slice extraction.
func TestStringSlice(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		key        string
		defaultVal []string
		want       []string
	}{
		{"string slice", map[string]any{"tags": []string{"a", "b"}}, "tags", nil, []string{"a", "b"}},
		{"any slice of strings", map[string]any{"tags": []any{"a", "b"}}, "tags", nil, []string{"a", "b"}},
		{"any slice with non-string", map[string]any{"tags": []any{"a", 1}}, "tags", []string{"x"}, []string{"x"}},
		{"key missing", map[string]any{}, "tags", []string{"x"}, []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(tt.data)
			got := cfg.StringSlice(tt.key, tt.defaultVal)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestHas verifies key existence checks.
func TestHas(t *testing.T) {
	cfg := config.New(map[string]any{
		"present": "yes",
		"nested":  map[string]any{"key": 1},
	})

	assert.True(t, cfg.Has("present"))
	assert.True(t, cfg.Has("nested.key"))
	assert.False(t, cfg.Has("absent"))
	assert.False(t, cfg.Has("nested.absent"))
}

// TestFromYAML verifies YAML parsing.
func TestFromYAML(t *testing.T) {
	data := []byte(`
name: pipeline
database:
  path: data.db
llm:
  max_tokens: 2048
`)

	cfg, err := config.FromYAML(data)
	require.NoError(t, err)

	assert.Equal(t, "pipeline", cfg.String("name", ""))
	assert.Equal(t, "data.db", cfg.String("database.path", ""))
	assert.Equal(t, 2048, cfg.Int("llm.max_tokens", 0))
}

// TestFromYAML_Invalid verifies YAML parse errors are returned.
func TestFromYAML_Invalid(t *testing.T) {
	_, err := config.FromYAML([]byte("{not: valid: yaml"))
	assert.Error(t, err)
}

// TestFromJSON verifies JSON parsing.
func TestFromJSON(t *testing.T) {
	data := []byte(`{"name": "pipeline", "store": {"path": "docs.db"}}`)

	cfg, err := config.FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, "pipeline", cfg.String("name", ""))
	assert.Equal(t, "docs.db", cfg.String("store.path", ""))
}

// TestFromFile verifies format detection by extension.
func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("name: from-yaml"), 0o644))

	jsonPath := filepath.Join(dir, "cfg.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name": "from-json"}`), 0o644))

	yamlCfg, err := config.FromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "from-yaml", yamlCfg.String("name", ""))

	jsonCfg, err := config.FromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "from-json", jsonCfg.String("name", ""))
}

// TestFromFile_UnsupportedExtension verifies unknown formats error.
func TestFromFile_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = 'x'"), 0o644))

	_, err := config.FromFile(path)
	assert.Error(t, err)
}

// TestFromFile_Missing verifies missing files error.
func TestFromFile_Missing(t *testing.T) {
	_, err := config.FromFile("/nonexistent/cfg.yaml")
	assert.Error(t, err)
}
