package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/docvars/internal/vars"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ".fern-build", cfg.BuildDir)
	assert.Equal(t, []string{"pages", "fern"}, cfg.ContentRoots)
	assert.Equal(t, []string{".md", ".mdx"}, cfg.Extensions)
	assert.Equal(t, "fern generate --docs", cfg.Generator.Command)
	assert.Equal(t, "Hermes-3-Llama-3.1-70B", cfg.Models["TEXT_MODEL"])
	assert.Equal(t, "Hermes3Llama3170B", cfg.Models["RUST_MODEL"])
	assert.Len(t, cfg.Models, 5)
	require.NoError(t, cfg.Validate())

	// Mutating one config must not leak into the next.
	cfg.Models["EXTRA"] = "x"
	cfg.ContentRoots[0] = "changed"
	fresh := DefaultConfig()
	assert.NotContains(t, fresh.Models, "EXTRA")
	assert.Equal(t, "pages", fresh.ContentRoots[0])
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".docvars.yml")

	original := DefaultConfig()
	original.BuildDir = "out"
	original.Models["EMBEDDING_MODEL"] = "bge-large"
	original.Exclude = []string{"**/drafts/**"}
	original.Script.Output = "fern/models.js"
	original.Clean = true

	require.NoError(t, original.Save(path))

	loaded, err := Load(path, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileModelsMergeWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".docvars.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  CODE_MODEL: Qwen2.5-Coder-14B-Instruct
  EMBEDDING_MODEL: bge-large
generator:
  command: npx fern-api generate --docs
`), 0o644))

	cfg, err := Load(path, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Qwen2.5-Coder-14B-Instruct", cfg.Models["CODE_MODEL"])
	assert.Equal(t, "bge-large", cfg.Models["EMBEDDING_MODEL"])
	assert.Equal(t, "Hermes-3-Llama-3.1-70B", cfg.Models["TEXT_MODEL"])
	assert.Equal(t, "npx fern-api generate --docs", cfg.Generator.Command)
	assert.Equal(t, ".fern-build", cfg.BuildDir)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".docvars.yml")
	require.NoError(t, os.WriteFile(path, []byte("models: [unclosed"), 0o644))

	_, err := Load(path, nil, nil)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCVARS_MODEL_CODE_MODEL", "from-env")
	t.Setenv("DOCVARS_BUILD_DIR", "env-build")
	t.Setenv("DOCVARS_GENERATOR_COMMAND", "mkdocs build")
	t.Setenv("DOCVARS_SCRIPT_DELAY_MS", "250")

	cfg, err := Load("", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Models["CODE_MODEL"])
	assert.Equal(t, "env-build", cfg.BuildDir)
	assert.Equal(t, "mkdocs build", cfg.Generator.Command)
	assert.Equal(t, 250, cfg.Script.DelayMS)
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".docvars.yml")
	require.NoError(t, os.WriteFile(path, []byte("build_dir: file-build\nmodels:\n  TEXT_MODEL: from-file\n"), 0o644))
	t.Setenv("DOCVARS_BUILD_DIR", "env-build")
	t.Setenv("DOCVARS_MODEL_TEXT_MODEL", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("build-dir", "", "")
	flags.Bool("skip-generate", false, "")
	flags.String("config", "", "")
	require.NoError(t, flags.Parse([]string{"--build-dir", "flag-build", "--config", "ignored.yml"}))

	cfg, err := Load(path, flags, map[string]string{"models.TEXT_MODEL": "from-var"})
	require.NoError(t, err)
	assert.Equal(t, "flag-build", cfg.BuildDir)
	assert.Equal(t, "from-var", cfg.Models["TEXT_MODEL"])
	assert.False(t, cfg.Generator.Skip, "unset flags must not override")
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"DOCVARS_MODEL_TEXT_MODEL":   "models.TEXT_MODEL",
		"DOCVARS_BUILD_DIR":          "build_dir",
		"DOCVARS_CLEAN":              "clean",
		"DOCVARS_GENERATOR_SKIP":     "generator.skip",
		"DOCVARS_SCRIPT_OUTPUT":      "script.output",
		"DOCVARS_WATCH_DEBOUNCE_MS":  "watch.debounce_ms",
		"DOCVARS_MODEL_lower_case_1": "models.lower_case_1",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestParseVars(t *testing.T) {
	got, err := ParseVars([]string{"TEXT_MODEL=gpt", "EMPTY=", "URL=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"models.TEXT_MODEL": "gpt",
		"models.EMPTY":      "",
		"models.URL":        "a=b",
	}, got)

	_, err = ParseVars([]string{"NOEQUALS"})
	assert.Error(t, err)

	_, err = ParseVars([]string{"BAD NAME=x"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "no models", modify: func(c *Config) { c.Models = nil }, wantErr: true},
		{name: "bad model name", modify: func(c *Config) { c.Models["has-dash"] = "x" }, wantErr: true},
		{name: "empty build dir", modify: func(c *Config) { c.BuildDir = "" }, wantErr: true},
		{name: "build dir is project dir", modify: func(c *Config) { c.BuildDir = "." }, wantErr: true},
		{name: "no extensions", modify: func(c *Config) { c.Extensions = nil }, wantErr: true},
		{name: "extension without dot", modify: func(c *Config) { c.Extensions = []string{"md"} }, wantErr: true},
		{name: "empty generator", modify: func(c *Config) { c.Generator.Command = "" }, wantErr: true},
		{name: "empty generator skipped", modify: func(c *Config) {
			c.Generator.Command = ""
			c.Generator.Skip = true
		}},
		{name: "negative delay", modify: func(c *Config) { c.Script.DelayMS = -1 }, wantErr: true},
		{name: "zero debounce", modify: func(c *Config) { c.Watch.DebounceMS = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildPath(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ".fern-build", cfg.BuildPath())

	cfg.ProjectDir = "/srv/docs"
	assert.Equal(t, filepath.Join("/srv/docs", ".fern-build"), cfg.BuildPath())

	cfg.BuildDir = "/tmp/out"
	assert.Equal(t, "/tmp/out", cfg.BuildPath())
}

func TestTable(t *testing.T) {
	cfg := DefaultConfig()
	table, err := cfg.Table()
	require.NoError(t, err)
	assert.Equal(t, "Model: Hermes-3-Llama-3.1-70B", table.Expand("Model: {{TEXT_MODEL}}"))
}

func TestDetectContentRoots(t *testing.T) {
	dir := t.TempDir()
	roots, layout := DetectContentRoots(dir)
	assert.Empty(t, roots)
	assert.Empty(t, layout)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "fern"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fern", "docs.yml"), nil, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pages"), 0o755))

	roots, layout = DetectContentRoots(dir)
	assert.Equal(t, []string{"pages", "fern"}, roots)
	assert.Equal(t, "Fern", layout)
}

func TestValidatePair(t *testing.T) {
	assert.NoError(t, validatePair(""))
	assert.NoError(t, validatePair("TEXT_MODEL=gpt"))
	assert.Error(t, validatePair("TEXT_MODEL"))
	assert.ErrorIs(t, validatePair("bad name=x"), vars.ErrInvalidName)
}
