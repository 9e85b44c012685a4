package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/docvars/internal/generator"
	"github.com/ziadkadry99/docvars/internal/vars"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DOCVARS_"

// flagKeys maps command-line flag names onto config keys. Flags not listed
// here are not configuration and are ignored by Load.
var flagKeys = map[string]string{
	"project-dir":   "project_dir",
	"build-dir":     "build_dir",
	"clean":         "clean",
	"exclude":       "exclude",
	"extensions":    "extensions",
	"generator":     "generator.command",
	"skip-generate": "generator.skip",
	"script-output": "script.output",
	"minify":        "script.minify",
	"delay":         "script.delay_ms",
	"debounce":      "watch.debounce_ms",
}

// Load builds the configuration from, in increasing priority: defaults, the
// YAML file at path (if it exists), DOCVARS_* environment variables, flags
// that were explicitly set, and overrides (flattened keys such as
// "models.TEXT_MODEL").
func Load(path string, flags *pflag.FlagSet, overrides map[string]string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// DOCVARS_MODEL_TEXT_MODEL -> models.TEXT_MODEL, DOCVARS_BUILD_DIR -> build_dir,
	// DOCVARS_GENERATOR_COMMAND -> generator.command.
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	if len(overrides) > 0 {
		m := make(map[string]interface{}, len(overrides))
		for key, val := range overrides {
			m[key] = val
		}
		if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
			return nil, fmt.Errorf("loading overrides: %w", err)
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	if name, ok := strings.CutPrefix(s, "MODEL_"); ok {
		return "models." + name
	}
	s = strings.ToLower(s)
	for _, section := range []string{"generator", "script", "watch"} {
		if rest, ok := strings.CutPrefix(s, section+"_"); ok {
			return section + "." + rest
		}
	}
	return s
}

// ParseVars turns NAME=value pairs into model overrides suitable for Load.
func ParseVars(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid variable %q: expected NAME=value", pair)
		}
		if !vars.ValidName(name) {
			return nil, fmt.Errorf("invalid variable %q: %w", pair, vars.ErrInvalidName)
		}
		out["models."+name] = value
	}
	return out, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("models must define at least one variable")
	}
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !vars.ValidName(name) {
			return fmt.Errorf("invalid model variable %q: %w", name, vars.ErrInvalidName)
		}
	}

	if c.BuildDir == "" {
		return fmt.Errorf("build_dir is required")
	}
	if filepath.Clean(c.BuildPath()) == filepath.Clean(c.ProjectPath()) {
		return fmt.Errorf("build_dir must differ from project_dir")
	}

	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid extension %q: must start with a dot", ext)
		}
	}

	if !c.Generator.Skip {
		if _, err := generator.ParseCommand(c.Generator.Command); err != nil {
			return err
		}
	}

	if c.Script.DelayMS < 0 {
		return fmt.Errorf("script.delay_ms must be non-negative")
	}
	if c.Watch.DebounceMS <= 0 {
		return fmt.Errorf("watch.debounce_ms must be positive")
	}

	return nil
}

// Table returns the replacement table described by Models.
func (c *Config) Table() (*vars.Table, error) {
	return vars.NewTable(c.Models)
}

// ProjectPath returns the project directory, defaulting to ".".
func (c *Config) ProjectPath() string {
	if c.ProjectDir == "" {
		return "."
	}
	return c.ProjectDir
}

// BuildPath returns the build directory. Relative values are resolved
// against the project directory.
func (c *Config) BuildPath() string {
	if filepath.IsAbs(c.BuildDir) {
		return c.BuildDir
	}
	return filepath.Join(c.ProjectPath(), c.BuildDir)
}
