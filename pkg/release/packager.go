package release

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ArtifactName is the fixed internal name of the binary inside every
// release archive.
const ArtifactName = "merged-binary.bin"

// ArtifactPath returns the expected archive path for a variant and
// tagged version: <releasesDir>/v<version>_<name>.zip. Its existence
// is the sole idempotency signal for the skip check.
func ArtifactPath(releasesDir, name, version string) string {
	return filepath.Join(releasesDir, fmt.Sprintf("v%s_%s.zip", version, name))
}

// ZipArtifact writes the merged binary at src into a release archive
// at dest, deflate-compressed, under the fixed internal name. An
// existing archive at dest is replaced.
func ZipArtifact(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open merged binary %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create releases directory: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", dest, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   ArtifactName,
		Method: zip.Deflate,
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("failed to create archive entry: %w", err)
	}
	if _, err := io.Copy(w, in); err != nil {
		zw.Close()
		return fmt.Errorf("failed to write archive entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive %s: %w", dest, err)
	}

	log.Info().Str("archive", dest).Msg("release archive written")
	return nil
}
