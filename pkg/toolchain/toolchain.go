// Package toolchain wraps the external firmware build toolchain. The
// orchestrator only observes exit codes and the presence of expected
// output artifacts; everything else belongs to the tool.
package toolchain

import (
	"context"
	"fmt"
)

// Toolchain is the narrow interface the release orchestrator drives.
// Calls block until the underlying external process exits.
type Toolchain interface {
	// SelectTarget configures the toolchain for the given chip.
	SelectTarget(ctx context.Context, chip string) error

	// AppendConfig extends the live build configuration state with
	// raw KEY=value lines. The file is owned by the toolchain
	// between invocations; this only appends.
	AppendConfig(entries []string) error

	// Build compiles the firmware with the board name and board
	// type passed as extra defines.
	Build(ctx context.Context, boardName, boardType string) error

	// MergeBinaries merges the build output into a single binary
	// artifact. Failure covers both a non-zero exit and a missing
	// merged binary afterwards.
	MergeBinaries(ctx context.Context) error

	// MergedBinaryPath is where MergeBinaries leaves its artifact.
	MergedBinaryPath() string
}

// Error wraps a failed toolchain operation.
type Error struct {
	// Op is the toolchain operation that failed (e.g., "build").
	Op string

	// ExitCode is the external process exit code, or -1 when the
	// process did not run or did not exit normally.
	ExitCode int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("toolchain %s failed (exit %d): %v", e.Op, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("toolchain %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}
