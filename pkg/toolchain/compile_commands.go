package toolchain

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// compileCommand is one entry of the compilation database the
// toolchain writes into the build directory.
type compileCommand struct {
	File    string `json:"file"`
	Command string `json:"command"`
}

// CurrentBoardType reads the board type the build directory was last
// configured for, by extracting the BOARD_TYPE define from the
// compilation database entry of the application's main source file.
// Returns an error when the database is absent or carries no such
// define.
func CurrentBoardType(buildDir string) (string, error) {
	path := filepath.Join(buildDir, "compile_commands.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	var commands []compileCommand
	if err := json.Unmarshal(data, &commands); err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", path, err)
	}

	const marker = `-DBOARD_TYPE=\"`
	for _, cc := range commands {
		if !strings.HasSuffix(cc.File, "main.cc") {
			continue
		}
		_, rest, found := strings.Cut(cc.Command, marker)
		if !found {
			continue
		}
		boardType, _, found := strings.Cut(rest, `\"`)
		if !found {
			continue
		}
		return strings.TrimSpace(boardType), nil
	}

	return "", fmt.Errorf("no BOARD_TYPE define found in %s", path)
}
