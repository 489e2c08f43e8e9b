package main

import (
	"fmt"
	"path/filepath"

	"resume-builder/internal/app"
	pkgconfig "resume-builder/pkg/config"
)

// ctlConfig is the part of the server configuration the CLI shares: where
// drafts live and how exports run. Other sections are ignored.
type ctlConfig struct {
	Drafts app.DraftsConfig `yaml:"drafts"`
	Export app.ExportConfig `yaml:"export"`
}

func (c *ctlConfig) Validate() error {
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// loadConfig reads the server config at path when it exists and falls back
// to the server defaults when it does not.
func loadConfig(path string) (*ctlConfig, error) {
	def := app.NewDefaultConfig()
	cfg := &ctlConfig{Drafts: def.Drafts, Export: def.Export}
	if err := pkgconfig.LoadOptional(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// draftsDir picks the drafts directory: an explicit --drafts wins, then the
// config's fs directory, then the flag's default.
func draftsDir(cfg *ctlConfig, flagDir string, flagSet bool) string {
	if !flagSet && cfg.Drafts.Backend == app.DraftsFS && cfg.Drafts.Dir != "" {
		return cfg.Drafts.Dir
	}
	return flagDir
}

// outputPath is where an export lands when --out is not given. Titles may
// contain path separators; only the base name is used.
func outputPath(out, fileName string) string {
	if out != "" {
		return out
	}
	return filepath.Base(fileName)
}
