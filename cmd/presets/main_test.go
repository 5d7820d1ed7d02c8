package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInstallFailedDownloadKeepsExisting(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "presets")
	writeFile(t, filepath.Join(out, "hills.yaml"), "seed: 3\n")

	_, err := install(context.Background(), filepath.Join(root, "missing"), out)
	if err == nil {
		t.Fatal("install from a missing source should fail")
	}
	if _, err := os.Stat(filepath.Join(out, "hills.yaml")); err != nil {
		t.Errorf("existing preset lost after failed download: %v", err)
	}
	assertNoStaging(t, root)
}

func TestInstallInvalidPresetsKeepExisting(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeFile(t, filepath.Join(src, "broken.yaml"), "chunk_size: -1\n")
	out := filepath.Join(root, "presets")
	writeFile(t, filepath.Join(out, "hills.yaml"), "seed: 3\n")

	if _, err := install(context.Background(), src, out); err == nil {
		t.Fatal("install should refuse a source without valid presets")
	}
	if _, err := os.Stat(filepath.Join(out, "hills.yaml")); err != nil {
		t.Errorf("existing preset lost: %v", err)
	}
	assertNoStaging(t, root)
}

func TestInstallReplacesOutput(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeFile(t, filepath.Join(src, "islands.yaml"), "generation_mode: sub\nsub_chunk_height: 4\n")
	writeFile(t, filepath.Join(src, "broken.yaml"), "octaves: 0\n")
	out := filepath.Join(root, "presets")
	writeFile(t, filepath.Join(out, "stale.yaml"), "seed: 1\n")

	valid, err := install(context.Background(), src, out)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if valid != 1 {
		t.Errorf("valid = %d, want 1", valid)
	}
	if _, err := os.Stat(filepath.Join(out, "islands.yaml")); err != nil {
		t.Errorf("downloaded preset missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "stale.yaml")); !os.IsNotExist(err) {
		t.Error("old preset survived the swap")
	}
	if fi, err := os.Lstat(out); err != nil || !fi.IsDir() {
		t.Errorf("output is not a plain directory: %v", err)
	}
	assertNoStaging(t, root)
}

func assertNoStaging(t *testing.T, root string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(root, ".presets-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("staging directories left behind: %v", matches)
	}
}
