// Package version manages the temporary, reversible version suffix
// applied to the project's root CMakeLists document around a build.
package version

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// declPrefix anchors the version declaration line. The document is
// treated as plain text; only lines starting with this prefix are
// touched.
const declPrefix = "set(PROJECT_VER"

// BackupSuffix is appended to the document path for the backup copy
// taken before patching.
const BackupSuffix = ".relforge.bak"

// Tagger patches and restores the version declaration of one
// CMakeLists document. The original content is a resource: every
// Patch must be paired with a Restore on all exit paths, which
// WithTag enforces.
type Tagger struct {
	// Path is the version declaration document, normally the
	// project root CMakeLists.txt.
	Path string
}

// NewTagger creates a tagger over the document at path.
func NewTagger(path string) *Tagger {
	return &Tagger{Path: path}
}

func (t *Tagger) backupPath() string {
	return t.Path + BackupSuffix
}

// Current returns the version string from the first version
// declaration line of the document.
func (t *Tagger) Current() (string, error) {
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", t.Path, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, declPrefix) {
			continue
		}
		fields := strings.Split(line, `"`)
		if len(fields) < 2 {
			return "", fmt.Errorf("malformed version declaration in %s: %q", t.Path, line)
		}
		return fields[1], nil
	}
	return "", fmt.Errorf("no version declaration found in %s", t.Path)
}

// Patch rewrites every version declaration line with the suffix
// appended inside the quotes, after first taking a backup copy of the
// document. If the rewrite fails the backup is restored and removed
// before the error is returned, so the live document is never left
// partially written.
func (t *Tagger) Patch(suffix string) error {
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", t.Path, err)
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", t.Path, err)
	}

	if err := os.WriteFile(t.backupPath(), data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write backup %s: %w", t.backupPath(), err)
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, declPrefix) {
			continue
		}
		fields := strings.Split(line, `"`)
		if len(fields) < 2 {
			continue
		}
		ver := fields[1]
		lines[i] = fmt.Sprintf(`set(PROJECT_VER "%s%s")`, ver, suffix)
		log.Info().Str("from", ver).Str("to", ver+suffix).Msg("patched project version")
	}

	if err := os.WriteFile(t.Path, []byte(strings.Join(lines, "\n")), info.Mode().Perm()); err != nil {
		if restoreErr := t.Restore(); restoreErr != nil {
			log.Error().Err(restoreErr).Msg("failed to restore version document after write failure")
		}
		return fmt.Errorf("failed to rewrite %s: %w", t.Path, err)
	}

	return nil
}

// Restore overwrites the live document from the backup copy and
// removes the backup. Without a backup it is a no-op.
func (t *Tagger) Restore() error {
	data, err := os.ReadFile(t.backupPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read backup %s: %w", t.backupPath(), err)
	}

	info, err := os.Stat(t.Path)
	mode := os.FileMode(0644)
	if err == nil {
		mode = info.Mode().Perm()
	}

	if err := os.WriteFile(t.Path, data, mode); err != nil {
		return fmt.Errorf("failed to restore %s: %w", t.Path, err)
	}
	if err := os.Remove(t.backupPath()); err != nil {
		return fmt.Errorf("failed to remove backup %s: %w", t.backupPath(), err)
	}

	log.Debug().Str("path", t.Path).Msg("version document restored")
	return nil
}

// WithTag runs fn with the version declaration patched, restoring the
// document on every exit path. A restore failure after a successful fn
// is returned; when both fail the fn error takes precedence and the
// restore failure is logged.
func (t *Tagger) WithTag(suffix string, fn func() error) (err error) {
	if err := t.Patch(suffix); err != nil {
		return err
	}
	defer func() {
		restoreErr := t.Restore()
		if restoreErr == nil {
			return
		}
		if err == nil {
			err = restoreErr
		} else {
			log.Error().Err(restoreErr).Msg("failed to restore version document")
		}
	}()
	return fn()
}
