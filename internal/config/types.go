package config

// Config is the top-level docvars configuration, corresponding to .docvars.yml.
type Config struct {
	// Models is the replacement table shared by every component.
	Models       map[string]string `yaml:"models" koanf:"models"`
	ProjectDir   string            `yaml:"project_dir" koanf:"project_dir"`
	BuildDir     string            `yaml:"build_dir" koanf:"build_dir"`
	ContentRoots []string          `yaml:"content_roots" koanf:"content_roots"`
	Extensions   []string          `yaml:"extensions" koanf:"extensions"`
	Exclude      []string          `yaml:"exclude" koanf:"exclude"`
	Clean        bool              `yaml:"clean" koanf:"clean"`
	Generator    GeneratorConfig   `yaml:"generator" koanf:"generator"`
	Script       ScriptConfig      `yaml:"script" koanf:"script"`
	Watch        WatchConfig       `yaml:"watch" koanf:"watch"`
}

// GeneratorConfig describes the external documentation generator.
type GeneratorConfig struct {
	// Command is a shell-quoted command line, e.g. "fern generate --docs".
	Command string `yaml:"command" koanf:"command"`
	Skip    bool   `yaml:"skip" koanf:"skip"`
}

// ScriptConfig controls the generated browser script.
type ScriptConfig struct {
	// Output is the script path relative to the build directory. Empty
	// disables script generation during build.
	Output  string `yaml:"output" koanf:"output"`
	Minify  bool   `yaml:"minify" koanf:"minify"`
	DelayMS int    `yaml:"delay_ms" koanf:"delay_ms"`
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" koanf:"debounce_ms"`
}
