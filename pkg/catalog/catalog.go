// Package catalog discovers firmware board variants from per-board
// declarative metadata documents under a boards root directory.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// CommonDir is the shared-resources subdirectory under the boards root.
// It holds no board metadata and is excluded from discovery.
const CommonDir = "common"

// Loader discovers and loads board metadata documents.
type Loader struct {
	// BoardsDir is the root directory containing one subdirectory
	// per board family.
	BoardsDir string

	// ConfigName is the metadata filename inside each board
	// subdirectory (config.json by default).
	ConfigName string

	validate *validator.Validate
}

// NewLoader creates a loader for the given boards root directory.
// configName falls back to "config.json" when empty.
func NewLoader(boardsDir, configName string) *Loader {
	if configName == "" {
		configName = "config.json"
	}
	return &Loader{
		BoardsDir:  boardsDir,
		ConfigName: configName,
		validate:   validator.New(),
	}
}

// Collect returns every variant declared across all board
// subdirectories, in directory iteration order. A board with a
// missing metadata document is skipped with a warning; a board whose
// document fails to parse or validate is skipped with an error
// diagnostic. Discovery never aborts for one bad board. Diagnostics
// go to the log stream only, keeping stdout clean for catalog output.
func (l *Loader) Collect() ([]Variant, error) {
	entries, err := os.ReadDir(l.BoardsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read boards directory %s: %w", l.BoardsDir, err)
	}

	var variants []Variant
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == CommonDir {
			continue
		}

		cfgPath := filepath.Join(l.BoardsDir, entry.Name(), l.ConfigName)
		cfg, err := l.load(cfgPath)
		if err != nil {
			if os.IsNotExist(err) {
				log.Warn().Str("board", entry.Name()).Str("path", cfgPath).Msg("board config missing, skipping")
			} else {
				log.Error().Err(err).Str("board", entry.Name()).Msg("failed to parse board config, skipping")
			}
			continue
		}

		for _, build := range cfg.Builds {
			variants = append(variants, Variant{Board: entry.Name(), Name: build.Name})
		}
	}

	return variants, nil
}

// LoadBoard loads and validates the metadata document for one board.
// Unlike Collect, failures here are returned to the caller: this is
// the orchestration path where a bad document is fatal.
func (l *Loader) LoadBoard(boardType string) (*BoardConfig, error) {
	return l.load(filepath.Join(l.BoardsDir, boardType, l.ConfigName))
}

// ConfigPath returns the metadata document path for one board.
func (l *Loader) ConfigPath(boardType string) string {
	return filepath.Join(l.BoardsDir, boardType, l.ConfigName)
}

func (l *Loader) load(path string) (*BoardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg BoardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if err := l.validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid board config %s: %w", path, err)
	}

	return &cfg, nil
}
