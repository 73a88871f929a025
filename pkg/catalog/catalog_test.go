package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeBoard(t *testing.T, root, board, config string) {
	t.Helper()
	dir := filepath.Join(root, board)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create board dir: %v", err)
	}
	if config == "" {
		return
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(config), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestLoader_Collect(t *testing.T) {
	root := t.TempDir()

	writeBoard(t, root, "bread-compact", `{
		"target": "esp32s3",
		"builds": [
			{"name": "bread-compact-wifi"},
			{"name": "bread-compact-ml307", "sdkconfig_append": ["CONFIG_A=y"]}
		]
	}`)
	writeBoard(t, root, "lichuang-dev", `{
		"target": "esp32s3",
		"builds": [{"name": "lichuang-dev"}]
	}`)
	writeBoard(t, root, "no-config", "")
	writeBoard(t, root, "bad-json", `{"target": "esp32",`)
	writeBoard(t, root, "common", `{"target": "esp32", "builds": [{"name": "common-x"}]}`)

	loader := NewLoader(root, "")
	variants, err := loader.Collect()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(variants) != 3 {
		t.Fatalf("expected 3 variants, got %d: %v", len(variants), variants)
	}

	for _, v := range variants {
		if v.Board == CommonDir {
			t.Errorf("shared directory %q must never appear as a board", CommonDir)
		}
		if !strings.HasPrefix(v.Name, v.Board) {
			t.Errorf("variant name %q does not start with board %q", v.Name, v.Board)
		}
	}
}

func TestLoader_CollectValidation(t *testing.T) {
	tests := []struct {
		name   string
		config string
		want   int
	}{
		{
			name:   "missing target is skipped",
			config: `{"builds": [{"name": "b-x"}]}`,
			want:   0,
		},
		{
			name:   "build without name is skipped",
			config: `{"target": "esp32", "builds": [{}]}`,
			want:   0,
		},
		{
			name:   "no builds is valid, zero variants",
			config: `{"target": "esp32"}`,
			want:   0,
		},
		{
			name:   "valid board",
			config: `{"target": "esp32", "builds": [{"name": "b-x"}]}`,
			want:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeBoard(t, root, "b", tt.config)

			variants, err := NewLoader(root, "config.json").Collect()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(variants) != tt.want {
				t.Errorf("expected %d variants, got %d", tt.want, len(variants))
			}
		})
	}
}

func TestLoader_LoadBoard(t *testing.T) {
	root := t.TempDir()
	writeBoard(t, root, "my-board", `{
		"target": "esp32c3",
		"builds": [{"name": "my-board-lite", "sdkconfig_append": ["CONFIG_X=y", "CONFIG_Y=n"]}]
	}`)

	loader := NewLoader(root, "config.json")

	cfg, err := loader.LoadBoard("my-board")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Target != "esp32c3" {
		t.Errorf("expected target esp32c3, got %s", cfg.Target)
	}
	if len(cfg.Builds) != 1 || len(cfg.Builds[0].SdkconfigAppend) != 2 {
		t.Errorf("unexpected builds: %+v", cfg.Builds)
	}

	if _, err := loader.LoadBoard("absent"); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error for absent board, got %v", err)
	}
}

func TestLoader_AlternateConfigName(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "b")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := `{"target": "esp32", "builds": [{"name": "b-alt"}]}`
	if err := os.WriteFile(filepath.Join(dir, "alt.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	variants, err := NewLoader(root, "alt.json").Collect()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(variants) != 1 || variants[0].Name != "b-alt" {
		t.Errorf("unexpected variants: %v", variants)
	}
}
