package version

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCMake = `cmake_minimum_required(VERSION 3.16)

set(PROJECT_VER "1.8.2")

include($ENV{IDF_PATH}/tools/cmake/project.cmake)
project(firmware)
`

func writeCMake(t *testing.T, content string) *Tagger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "CMakeLists.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return NewTagger(path)
}

func TestTagger_Current(t *testing.T) {
	tagger := writeCMake(t, sampleCMake)

	ver, err := tagger.Current()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ver != "1.8.2" {
		t.Errorf("expected version 1.8.2, got %s", ver)
	}
}

func TestTagger_CurrentMissingDeclaration(t *testing.T) {
	tagger := writeCMake(t, "project(firmware)\n")
	if _, err := tagger.Current(); err == nil {
		t.Error("expected error for document without version declaration")
	}
}

func TestTagger_PatchRestoreRoundTrip(t *testing.T) {
	tagger := writeCMake(t, sampleCMake)

	if err := tagger.Patch("-verdure"); err != nil {
		t.Fatalf("patch failed: %v", err)
	}

	patched, err := os.ReadFile(tagger.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(patched), `set(PROJECT_VER "1.8.2-verdure")`) {
		t.Errorf("patched document missing tagged version:\n%s", patched)
	}

	ver, err := tagger.Current()
	if err != nil {
		t.Fatal(err)
	}
	if ver != "1.8.2-verdure" {
		t.Errorf("expected tagged version, got %s", ver)
	}

	if err := tagger.Restore(); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	restored, err := os.ReadFile(tagger.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(restored) != sampleCMake {
		t.Errorf("document not byte-identical after restore:\n%s", restored)
	}
	if _, err := os.Stat(tagger.Path + BackupSuffix); !os.IsNotExist(err) {
		t.Errorf("backup should be removed after restore, stat err = %v", err)
	}
}

func TestTagger_RestoreWithoutBackup(t *testing.T) {
	tagger := writeCMake(t, sampleCMake)
	if err := tagger.Restore(); err != nil {
		t.Errorf("restore without backup should be a no-op, got %v", err)
	}
}

func TestTagger_WithTagRestoresOnFailure(t *testing.T) {
	tagger := writeCMake(t, sampleCMake)
	wantErr := errors.New("build exploded")

	err := tagger.WithTag("-verdure", func() error {
		ver, verErr := tagger.Current()
		if verErr != nil {
			t.Fatal(verErr)
		}
		if ver != "1.8.2-verdure" {
			t.Errorf("expected patched version inside scope, got %s", ver)
		}
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped failure, got %v", err)
	}

	restored, readErr := os.ReadFile(tagger.Path)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if string(restored) != sampleCMake {
		t.Errorf("document must be reverted even when the scoped operation fails:\n%s", restored)
	}
}

func TestTagger_WithTagRestoresOnSuccess(t *testing.T) {
	tagger := writeCMake(t, sampleCMake)

	if err := tagger.WithTag("-rc1", func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ver, err := tagger.Current()
	if err != nil {
		t.Fatal(err)
	}
	if ver != "1.8.2" {
		t.Errorf("expected original version after scope, got %s", ver)
	}
}

func TestTagger_PatchMissingDocument(t *testing.T) {
	tagger := NewTagger(filepath.Join(t.TempDir(), "absent.txt"))
	if err := tagger.Patch("-x"); err == nil {
		t.Error("expected error for missing document")
	}
}
