package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/docvars/internal/vars"
)

// siteMarkers are paths whose presence identifies a docs project layout.
var siteMarkers = []struct {
	Path string
	Name string
}{
	{Path: "fern/fern.config.json", Name: "Fern"},
	{Path: "fern/docs.yml", Name: "Fern"},
	{Path: "pages", Name: "pages directory"},
}

// DetectContentRoots returns the default content roots that exist under dir,
// along with a human-readable description of the detected layout.
func DetectContentRoots(dir string) (roots []string, layout string) {
	for _, m := range siteMarkers {
		if _, err := os.Stat(filepath.Join(dir, m.Path)); err == nil && layout == "" {
			layout = m.Name
		}
	}
	for _, root := range DefaultContentRoots {
		if info, err := os.Stat(filepath.Join(dir, root)); err == nil && info.IsDir() {
			roots = append(roots, root)
		}
	}
	return roots, layout
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to docvars! Let's configure your docs project.")
	fmt.Println()

	cfg := DefaultConfig()

	roots, layout := DetectContentRoots(".")
	if layout != "" {
		fmt.Printf("Detected layout: %s (content roots: %s)\n\n", layout, strings.Join(roots, ", "))
	}

	// 1. Build directory.
	buildPrompt := promptui.Prompt{
		Label:   "Build directory",
		Default: cfg.BuildDir,
	}
	buildDir, err := buildPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("build dir: %w", err)
	}
	cfg.BuildDir = buildDir

	// 2. Generator.
	genPrompt := promptui.Prompt{
		Label:   "Generator command",
		Default: cfg.Generator.Command,
	}
	command, err := genPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("generator command: %w", err)
	}
	cfg.Generator.Command = command

	// 3. Browser script.
	scriptPrompt := promptui.Select{
		Label: "Generate the in-browser replacement script during build?",
		Items: []string{"yes", "no"},
	}
	idx, _, err := scriptPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("script selection: %w", err)
	}
	if idx == 0 {
		cfg.Script.Output = DefaultScriptPath
	}

	// 4. Model table.
	tablePrompt := promptui.Select{
		Label: "Model table",
		Items: []string{
			"keep defaults and add more",
			"start empty",
		},
	}
	idx, _, err = tablePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("table selection: %w", err)
	}
	if idx == 1 {
		cfg.Models = map[string]string{}
	}

	for {
		varPrompt := promptui.Prompt{
			Label:    "Add variable NAME=value (blank to finish)",
			Validate: validatePair,
		}
		pair, err := varPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("variable: %w", err)
		}
		if strings.TrimSpace(pair) == "" {
			break
		}
		name, value, _ := strings.Cut(strings.TrimSpace(pair), "=")
		cfg.Models[name] = value
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePair(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	name, _, ok := strings.Cut(input, "=")
	if !ok {
		return fmt.Errorf("expected NAME=value")
	}
	if !vars.ValidName(name) {
		return vars.ErrInvalidName
	}
	return nil
}
