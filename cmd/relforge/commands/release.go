package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/verdure/relforge/pkg/boardtype"
	"github.com/verdure/relforge/pkg/catalog"
	"github.com/verdure/relforge/pkg/release"
	"github.com/verdure/relforge/pkg/sdkconfig"
	"github.com/verdure/relforge/pkg/stores"
	"github.com/verdure/relforge/pkg/toolchain"
	"github.com/verdure/relforge/pkg/version"
)

// paths of the shared toolchain documents, relative to the project
// root.
func boardsDir() string     { return filepath.Join(projectDir, "main", "boards") }
func rootCMakePath() string { return filepath.Join(projectDir, "CMakeLists.txt") }
func mainCMakePath() string { return filepath.Join(projectDir, "main", "CMakeLists.txt") }
func releasesDir() string   { return filepath.Join(projectDir, "releases") }

// runList implements catalog-only mode. Variant output goes to stdout;
// all diagnostics stay on stderr so JSON output is never corrupted.
func runList(_ context.Context) error {
	loader := catalog.NewLoader(boardsDir(), configName)
	variants, err := loader.Collect()
	if err != nil {
		return err
	}

	if jsonOutput {
		if variants == nil {
			variants = []catalog.Variant{}
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(variants)
	}

	for _, v := range variants {
		fmt.Printf("%s: %s\n", v.Board, v.Name)
	}
	return nil
}

// newOrchestrator wires the shared document handles, the toolchain,
// and the optional history store. The returned cleanup closes the
// store.
func newOrchestrator(ctx context.Context) (*release.Orchestrator, func(), error) {
	rules := sdkconfig.BuiltinRules()
	if rulesFile != "" {
		extra, err := sdkconfig.LoadRules(rulesFile)
		if err != nil {
			return nil, nil, err
		}
		rules = append(rules, extra...)
	}

	symbols, err := boardtype.LoadSymbolMap(mainCMakePath())
	if err != nil {
		return nil, nil, err
	}

	orch := &release.Orchestrator{
		Catalog:     catalog.NewLoader(boardsDir(), configName),
		Symbols:     symbols,
		Tagger:      version.NewTagger(rootCMakePath()),
		Toolchain:   toolchain.NewIDF(projectDir),
		ReleasesDir: releasesDir(),
		Suffix:      tagSuffix,
		Rules:       rules,
	}

	cleanup := func() {}
	if historyPath != "" {
		store, err := stores.Open(ctx, historyPath)
		if err != nil {
			return nil, nil, err
		}
		orch.History = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close history store")
			}
		}
	}

	return orch, cleanup, nil
}

// runRelease implements the orchestrated build modes (one board type
// or all of them).
func runRelease(ctx context.Context, boardArg string) error {
	orch, cleanup, err := newOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := orch.Run(ctx, boardArg, nameFilter); err != nil {
		return err
	}

	log.Info().Msg("release complete")
	return nil
}

// runPackageCurrent packages the current build directory contents
// without orchestrating a build.
func runPackageCurrent(ctx context.Context) error {
	orch, cleanup, err := newOrchestrator(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	return orch.PackageCurrent(ctx)
}
