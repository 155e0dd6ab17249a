package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCopyTree_NonDestructive(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, filepath.Join(src, "README.md"), "template readme")
	writeFile(t, filepath.Join(src, "src", "main.ts"), "console.log('hi')")
	writeFile(t, filepath.Join(src, ".env.example"), "PORT=8000\n")
	writeFile(t, filepath.Join(dst, "README.md"), "user readme")

	stats, err := CopyTree(src, dst)
	if err != nil {
		t.Fatalf("CopyTree: %v", err)
	}
	if stats.Copied != 2 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want 2 copied 1 skipped", stats)
	}

	got, _ := os.ReadFile(filepath.Join(dst, "README.md"))
	if string(got) != "user readme" {
		t.Errorf("existing file overwritten: %q", got)
	}
	got, _ = os.ReadFile(filepath.Join(dst, "src", "main.ts"))
	if string(got) != "console.log('hi')" {
		t.Errorf("nested file = %q", got)
	}
	if !IsFile(filepath.Join(dst, ".env.example")) {
		t.Error("dotfile not copied")
	}
}

func TestCopyTree_MissingSource(t *testing.T) {
	if _, err := CopyTree(filepath.Join(t.TempDir(), "nope"), t.TempDir()); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestExistsAndRemoveTree(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")
	writeFile(t, filepath.Join(dir, "a", "b.txt"), "x")

	ok, err := Exists(dir)
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	if !IsDir(dir) || IsFile(dir) {
		t.Error("IsDir/IsFile mismatch")
	}
	if err := RemoveTree(dir); err != nil {
		t.Fatalf("RemoveTree: %v", err)
	}
	if err := RemoveTree(dir); err != nil {
		t.Fatalf("RemoveTree on missing path: %v", err)
	}
	ok, _ = Exists(dir)
	if ok {
		t.Error("directory still exists")
	}
}

func TestReadWriteText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "file.txt")
	_, found, err := ReadText(path)
	if err != nil || found {
		t.Fatalf("ReadText missing = %v, %v", found, err)
	}
	if err := WriteText(path, "hello"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	content, found, err := ReadText(path)
	if err != nil || !found || content != "hello" {
		t.Errorf("ReadText = %q, %v, %v", content, found, err)
	}
}
