package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// IDF drives the ESP-IDF build tool (idf.py) in a project directory.
// The tool owns a single shared build directory and a single live
// sdkconfig, so invocations must stay strictly sequential.
type IDF struct {
	// ProjectDir is the toolchain working directory (the project
	// root containing sdkconfig and build/).
	ProjectDir string

	// Command is the tool entry point, "idf.py" unless overridden.
	Command string
}

// NewIDF creates an IDF toolchain rooted at projectDir.
func NewIDF(projectDir string) *IDF {
	return &IDF{ProjectDir: projectDir, Command: "idf.py"}
}

// SelectTarget runs set-target for the given chip. Any IDF_TARGET
// environment override is cleared first so the chip from the board
// metadata wins.
func (t *IDF) SelectTarget(ctx context.Context, chip string) error {
	os.Unsetenv("IDF_TARGET")
	log.Info().Str("target", chip).Msg("selecting target chip")
	return t.run(ctx, "set-target", "set-target", chip)
}

// AppendConfig appends raw KEY=value lines to the live sdkconfig.
func (t *IDF) AppendConfig(entries []string) error {
	path := filepath.Join(t.ProjectDir, "sdkconfig")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return &Error{Op: "append-config", ExitCode: -1, Err: err}
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, "\n# Appended by relforge"); err != nil {
		return &Error{Op: "append-config", ExitCode: -1, Err: err}
	}
	for _, entry := range entries {
		if _, err := fmt.Fprintln(f, entry); err != nil {
			return &Error{Op: "append-config", ExitCode: -1, Err: err}
		}
	}

	log.Info().Int("entries", len(entries)).Str("path", path).Msg("appended sdkconfig overrides")
	return nil
}

// Build compiles the firmware with BOARD_NAME and BOARD_TYPE defines.
func (t *IDF) Build(ctx context.Context, boardName, boardType string) error {
	return t.run(ctx, "build",
		"-DBOARD_NAME="+boardName,
		"-DBOARD_TYPE="+boardType,
		"build")
}

// MergeBinaries runs merge-bin and verifies the merged binary exists
// afterwards. The exit status and the artifact presence are checked
// independently.
func (t *IDF) MergeBinaries(ctx context.Context) error {
	if err := t.run(ctx, "merge-bin", "merge-bin"); err != nil {
		return err
	}

	merged := t.MergedBinaryPath()
	info, err := os.Stat(merged)
	if err != nil {
		return &Error{Op: "merge-bin", ExitCode: -1,
			Err: fmt.Errorf("expected artifact %s missing: %w", merged, err)}
	}

	log.Info().Str("path", merged).Int64("bytes", info.Size()).Msg("merged binary produced")
	return nil
}

// MergedBinaryPath returns build/merged-binary.bin under the project
// directory.
func (t *IDF) MergedBinaryPath() string {
	return filepath.Join(t.ProjectDir, "build", "merged-binary.bin")
}

// run invokes the tool and blocks until it exits. The tool's output
// streams pass through to the operator; only the exit code is
// observed. There is no timeout: a hung build hangs the run.
func (t *IDF) run(ctx context.Context, op string, args ...string) error {
	started := time.Now()
	log.Info().Str("command", t.Command).Strs("args", args).Msg("invoking toolchain")

	cmd := exec.CommandContext(ctx, t.Command, args...)
	cmd.Dir = t.ProjectDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	log.Debug().Str("op", op).Dur("duration", time.Since(started)).Err(err).Msg("toolchain invocation finished")
	if err == nil {
		return nil
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		return &Error{Op: op, ExitCode: exitErr.ExitCode(), Err: err}
	}
	return &Error{Op: op, ExitCode: -1, Err: err}
}
