// Package release sequences per-variant firmware builds into versioned
// archive artifacts, with idempotent skip behavior and a guaranteed
// rollback of the temporary version tag on every exit path.
package release

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/verdure/relforge/pkg/boardtype"
	"github.com/verdure/relforge/pkg/catalog"
	"github.com/verdure/relforge/pkg/sdkconfig"
	"github.com/verdure/relforge/pkg/toolchain"
	"github.com/verdure/relforge/pkg/version"
)

// History records release runs and produced artifacts. Recording is
// best-effort audit metadata: failures are logged, never fatal, and
// artifact existence on disk remains the sole idempotency signal.
type History interface {
	StartRun(ctx context.Context, scope string) (string, error)
	FinishRun(ctx context.Context, runID string, runErr error) error
	RecordArtifact(ctx context.Context, runID, variant, version, path string) error
}

// Orchestrator drives the per-variant release sequence. All shared
// mutable toolchain state (the version document, the live sdkconfig)
// is reached through explicit handles; execution is strictly
// sequential, one variant and one board type at a time.
type Orchestrator struct {
	// Catalog loads board metadata documents.
	Catalog *catalog.Loader

	// Symbols maps board types to toolchain configuration symbols.
	Symbols *boardtype.SymbolMap

	// Tagger applies the reversible version suffix.
	Tagger *version.Tagger

	// Toolchain is the external build tool boundary.
	Toolchain toolchain.Toolchain

	// ReleasesDir is where archive artifacts are written.
	ReleasesDir string

	// Suffix is the version tag appended for this release channel.
	Suffix string

	// Rules is the auto-select expansion table.
	Rules []sdkconfig.Rule

	// History is the optional release audit store; nil disables it.
	History History

	runID string
}

// Run releases the requested board type, or every discovered board
// type when boardArg is "all", each processed independently but
// sequentially. The first failure anywhere stops everything. The name
// filter applies only to the explicitly requested board type.
func (o *Orchestrator) Run(ctx context.Context, boardArg, filterName string) (err error) {
	if boardArg != "all" && !o.Symbols.HasBoardType(boardArg) {
		return NewPreconditionError(fmt.Sprintf("board type %s not found in component configuration", boardArg))
	}

	o.startHistory(ctx, boardArg)
	defer func() { o.finishHistory(ctx, err) }()

	var boardTypes []string
	if boardArg == "all" {
		variants, cerr := o.Catalog.Collect()
		if cerr != nil {
			return cerr
		}
		seen := make(map[string]struct{})
		for _, v := range variants {
			if _, ok := seen[v.Board]; !ok {
				seen[v.Board] = struct{}{}
				boardTypes = append(boardTypes, v.Board)
			}
		}
		sort.Strings(boardTypes)
	} else {
		boardTypes = []string{boardArg}
	}

	for _, bt := range boardTypes {
		if !o.Symbols.HasBoardType(bt) {
			return NewPreconditionError(fmt.Sprintf("board type %s not found in component configuration", bt))
		}
		filter := ""
		if bt == boardArg {
			filter = filterName
		}
		if err := o.ReleaseBoard(ctx, bt, filter); err != nil {
			return err
		}
	}

	return nil
}

// ReleaseBoard builds and packages every variant of one board type,
// optionally restricted to a single variant name. A board without a
// metadata document is skipped with a warning; everything else that
// goes wrong aborts the run.
func (o *Orchestrator) ReleaseBoard(ctx context.Context, boardType, filterName string) error {
	cfg, err := o.Catalog.LoadBoard(boardType)
	if err != nil {
		if isNotExist(err) {
			log.Warn().Str("board", boardType).Str("path", o.Catalog.ConfigPath(boardType)).Msg("board config missing, skipping board")
			return nil
		}
		return err
	}

	base, err := o.Tagger.Current()
	if err != nil {
		return err
	}
	tagged := base + o.Suffix
	log.Info().Str("board", boardType).Str("version", tagged).Msg("releasing board")

	builds := cfg.Builds
	if filterName != "" {
		builds = nil
		for _, b := range cfg.Builds {
			if b.Name == filterName {
				builds = append(builds, b)
			}
		}
		if len(builds) == 0 {
			return NewPreconditionError(fmt.Sprintf("variant %s not found for board type %s", filterName, boardType))
		}
	}

	for _, build := range builds {
		if err := o.releaseVariant(ctx, boardType, cfg.Target, build, tagged); err != nil {
			return err
		}
	}

	return nil
}

// releaseVariant runs the full sequence for one build descriptor:
// naming invariant, idempotent skip check, symbol resolution, config
// expansion, then the tagged build with the version patch scoped
// around the toolchain invocations.
func (o *Orchestrator) releaseVariant(ctx context.Context, boardType, target string, build catalog.BuildSpec, tagged string) error {
	if !strings.HasPrefix(build.Name, boardType) {
		return NewPreconditionError(
			fmt.Sprintf("build name %s must start with board type %s", build.Name, boardType))
	}

	artifact := ArtifactPath(o.ReleasesDir, build.Name, tagged)
	if _, err := os.Stat(artifact); err == nil {
		log.Info().Str("variant", build.Name).Str("artifact", artifact).Msg("artifact already exists, skipping")
		return nil
	}

	symbol, ok := o.Symbols.SymbolFor(boardType)
	if !ok {
		return NewPreconditionError(
			fmt.Sprintf("no configuration symbol for board type %s", boardType)).WithVariant(build.Name)
	}

	entries := append([]string{symbol + "=y"}, build.SdkconfigAppend...)
	expanded := sdkconfig.Expand(entries, o.Rules)

	log.Info().
		Str("variant", build.Name).
		Str("target", target).
		Str("version", tagged).
		Strs("sdkconfig", expanded).
		Msg("building variant")

	err := o.Tagger.WithTag(o.Suffix, func() error {
		if err := o.Toolchain.SelectTarget(ctx, target); err != nil {
			return NewToolchainError("set-target failed", err).WithVariant(build.Name)
		}
		if err := o.Toolchain.AppendConfig(expanded); err != nil {
			return NewToolchainError("failed to append sdkconfig overrides", err).WithVariant(build.Name)
		}
		if err := o.Toolchain.Build(ctx, build.Name, boardType); err != nil {
			return NewToolchainError("build failed", err).WithVariant(build.Name)
		}
		if err := o.Toolchain.MergeBinaries(ctx); err != nil {
			return NewToolchainError("merge-bin failed", err).WithVariant(build.Name)
		}
		if err := ZipArtifact(o.Toolchain.MergedBinaryPath(), artifact); err != nil {
			return NewPackagingError("failed to package artifact", err).WithVariant(build.Name)
		}
		return nil
	})
	if err != nil {
		return err
	}

	o.recordArtifact(ctx, build.Name, tagged, artifact)
	return nil
}

// PackageCurrent packages whatever the toolchain's build directory
// already contains, without orchestrating a build. The version patch
// is scoped around version-string extraction and archiving only.
func (o *Orchestrator) PackageCurrent(ctx context.Context) (err error) {
	o.startHistory(ctx, "package-current")
	defer func() { o.finishHistory(ctx, err) }()

	if err := o.Toolchain.MergeBinaries(ctx); err != nil {
		return NewToolchainError("merge-bin failed", err)
	}

	buildDir := filepath.Dir(o.Toolchain.MergedBinaryPath())
	boardType, err := toolchain.CurrentBoardType(buildDir)
	if err != nil {
		return &Error{Class: ErrorClassPrecondition, Message: "could not determine board type of current build", Err: err}
	}

	return o.Tagger.WithTag(o.Suffix, func() error {
		tagged, err := o.Tagger.Current()
		if err != nil {
			return err
		}
		artifact := ArtifactPath(o.ReleasesDir, boardType, tagged)
		if err := ZipArtifact(o.Toolchain.MergedBinaryPath(), artifact); err != nil {
			return NewPackagingError("failed to package artifact", err)
		}
		o.recordArtifact(ctx, boardType, tagged, artifact)
		return nil
	})
}

func (o *Orchestrator) startHistory(ctx context.Context, scope string) {
	if o.History == nil {
		return
	}
	id, err := o.History.StartRun(ctx, scope)
	if err != nil {
		log.Warn().Err(err).Msg("failed to record release run")
		return
	}
	o.runID = id
}

func (o *Orchestrator) finishHistory(ctx context.Context, runErr error) {
	if o.History == nil || o.runID == "" {
		return
	}
	if err := o.History.FinishRun(ctx, o.runID, runErr); err != nil {
		log.Warn().Err(err).Msg("failed to finalize release run record")
	}
}

func (o *Orchestrator) recordArtifact(ctx context.Context, variant, version, path string) {
	if o.History == nil || o.runID == "" {
		return
	}
	if err := o.History.RecordArtifact(ctx, o.runID, variant, version, path); err != nil {
		log.Warn().Err(err).Msg("failed to record artifact")
	}
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
