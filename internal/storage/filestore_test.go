package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pngstash/pngstash/pkg/png"
)

func buildFile(t *testing.T, types ...string) *png.File {
	t.Helper()
	chunks := make([]png.Chunk, 0, len(types))
	for _, typ := range types {
		ct, err := png.ParseChunkType(typ)
		if err != nil {
			t.Fatalf("parsing chunk type %q: %v", typ, err)
		}
		chunks = append(chunks, png.NewChunk(ct, []byte("data for "+typ)))
	}
	return png.FromChunks(chunks)
}

func writePNG(t *testing.T, f *png.File) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.png")
	if err := os.WriteFile(path, f.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestLoad_RoundTrip(t *testing.T) {
	f := buildFile(t, "IHDR", "IDAT", "IEND")
	path := writePNG(t, f)

	loaded, err := NewFileStore(Options{}).Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(loaded.Bytes(), f.Bytes()) {
		t.Error("loaded file differs from what was written")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.png")

	_, err := NewFileStore(Options{}).Load(path)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestLoad_Directory(t *testing.T) {
	_, err := NewFileStore(Options{}).Load(t.TempDir())
	if err == nil {
		t.Fatal("expected an error for a directory path")
	}
}

func TestLoad_InvalidSignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	if err := os.WriteFile(path, []byte("definitely not a png"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := NewFileStore(Options{}).Load(path)
	if !errors.Is(err, png.ErrInvalidSignature) {
		t.Errorf("error = %v, want wrapped ErrInvalidSignature", err)
	}
}

func TestLoad_RespectsChunkLimit(t *testing.T) {
	path := writePNG(t, buildFile(t, "IHDR"))

	_, err := NewFileStore(Options{MaxChunkBytes: 4}).Load(path)
	if !errors.Is(err, png.ErrChunkTooLarge) {
		t.Errorf("error = %v, want wrapped ErrChunkTooLarge", err)
	}

	if _, err := NewFileStore(Options{}).Load(path); err != nil {
		t.Errorf("unexpected error under default limits: %v", err)
	}
}

func TestSave_WritesAndReloads(t *testing.T) {
	store := NewFileStore(Options{})
	f := buildFile(t, "IHDR", "IEND")
	path := filepath.Join(t.TempDir(), "out.png")

	if err := store.Save(path, f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(loaded.Bytes(), f.Bytes()) {
		t.Error("reloaded file differs from what was saved")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("file mode = %o, want 644", perm)
	}
}

func TestSave_OverwritesInPlace(t *testing.T) {
	store := NewFileStore(Options{})
	path := writePNG(t, buildFile(t, "IHDR"))

	updated := buildFile(t, "IHDR", "stSh")
	if err := store.Save(path, updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded.Chunks()) != 2 {
		t.Errorf("len(Chunks()) = %d after overwrite, want 2", len(loaded.Chunks()))
	}
}

func TestSave_BackupKeepsOldContent(t *testing.T) {
	store := NewFileStore(Options{Backup: true})
	original := buildFile(t, "IHDR")
	path := writePNG(t, original)

	if err := store.Save(path, buildFile(t, "IHDR", "stSh")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if !bytes.Equal(bak, original.Bytes()) {
		t.Error("backup content differs from the pre-save file")
	}
}

func TestSave_BackupSkippedForNewFile(t *testing.T) {
	store := NewFileStore(Options{Backup: true})
	path := filepath.Join(t.TempDir(), "fresh.png")

	if err := store.Save(path, buildFile(t, "IHDR")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Error("a backup was created for a previously absent destination")
	}
}

func TestSave_NoBackupByDefault(t *testing.T) {
	store := NewFileStore(Options{})
	path := writePNG(t, buildFile(t, "IHDR"))

	if err := store.Save(path, buildFile(t, "IHDR", "stSh")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Error("a backup was created without the backup option")
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	store := NewFileStore(Options{})
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")

	if err := store.Save(path, buildFile(t, "IHDR")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, ".pngstash-*"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}
