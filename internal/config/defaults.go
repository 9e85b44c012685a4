package config

// DefaultModels is the replacement table used when the config file does not
// override it.
var DefaultModels = map[string]string{
	"TEXT_MODEL": "Hermes-3-Llama-3.1-70B",
	"CODE_MODEL": "Hermes-3-Llama-3.1-70B",
	"JS_MODEL":   "Hermes3Llama3170B",
	"GO_MODEL":   "Hermes3Llama3170B",
	"RUST_MODEL": "Hermes3Llama3170B",
}

// DefaultContentRoots are the directories scanned for content files when
// present in the build directory.
var DefaultContentRoots = []string{"pages", "fern"}

// DefaultExtensions are the content file suffixes.
var DefaultExtensions = []string{".md", ".mdx"}

const (
	DefaultConfigFile = ".docvars.yml"
	DefaultBuildDir   = ".fern-build"
	DefaultGenerator  = "fern generate --docs"
	DefaultScriptPath = "fern/models.js"
	DefaultDelayMS    = 100
	DefaultDebounceMS = 100
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	models := make(map[string]string, len(DefaultModels))
	for k, v := range DefaultModels {
		models[k] = v
	}
	return &Config{
		Models:       models,
		ProjectDir:   ".",
		BuildDir:     DefaultBuildDir,
		ContentRoots: append([]string(nil), DefaultContentRoots...),
		Extensions:   append([]string(nil), DefaultExtensions...),
		Generator: GeneratorConfig{
			Command: DefaultGenerator,
		},
		Script: ScriptConfig{
			DelayMS: DefaultDelayMS,
		},
		Watch: WatchConfig{
			DebounceMS: DefaultDebounceMS,
		},
	}
}
