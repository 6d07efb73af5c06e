package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photo-gallery/internal/database"
)

func writeJPEG(t *testing.T, path string, shade uint8) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: uint8(x * 16), B: uint8(y * 16), A: 255})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatal(err)
	}
}

// setupLibrary creates two folders of photos and an empty database dir.
func setupLibrary(t *testing.T) (root, dbDir string) {
	t.Helper()

	root = t.TempDir()
	writeJPEG(t, filepath.Join(root, "Holiday", "a.jpg"), 10)
	writeJPEG(t, filepath.Join(root, "Holiday", "b.jpg"), 20)
	writeJPEG(t, filepath.Join(root, "Pets", "c.jpg"), 30)
	return root, t.TempDir()
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestIndexCommand(t *testing.T) {
	root, dbDir := setupLibrary(t)

	out, err := runCmd(t, "index", "--database-dir", dbDir, "--images-dirs", root)
	if err != nil {
		t.Fatalf("index failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Indexed 3 files: 3 new") {
		t.Errorf("Unexpected index output: %q", out)
	}

	// A second run finds nothing new
	out, err = runCmd(t, "index", "--database-dir", dbDir, "--images-dirs", root)
	if err != nil {
		t.Fatalf("second index failed: %v", err)
	}
	if !strings.Contains(out, "0 new") {
		t.Errorf("Expected no new images on re-index, got %q", out)
	}

	db, err := database.New(context.Background(), filepath.Join(dbDir, "gallery.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	last, err := db.GetLastIndexed(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if last.IsZero() {
		t.Error("Expected last indexed time to be recorded")
	}
}

func TestRunIndexCancelled(t *testing.T) {
	root, dbDir := setupLibrary(t)

	db, err := database.New(context.Background(), filepath.Join(dbDir, "gallery.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	if _, err := runIndex(ctx, db, []string{root}, false, &out, false); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	last, err := db.GetLastIndexed(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !last.IsZero() {
		t.Error("A cancelled scan must not record a last indexed time")
	}
}

func TestStatusAndFolders(t *testing.T) {
	root, dbDir := setupLibrary(t)
	flags := []string{"--database-dir", dbDir, "--images-dirs", root}

	if _, err := runCmd(t, append([]string{"index"}, flags...)...); err != nil {
		t.Fatalf("index failed: %v", err)
	}

	out, err := runCmd(t, append([]string{"status"}, flags...)...)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "Images:") || !strings.Contains(out, "3") {
		t.Errorf("Unexpected status output: %q", out)
	}

	out, err = runCmd(t, append([]string{"folders", "list"}, flags...)...)
	if err != nil {
		t.Fatalf("folders list failed: %v", err)
	}
	if !strings.Contains(out, "holiday") || !strings.Contains(out, "pets") {
		t.Errorf("Expected both folders in %q", out)
	}

	out, err = runCmd(t, append([]string{"folders", "delete", "pets"}, flags...)...)
	if err != nil {
		t.Fatalf("folders delete failed: %v", err)
	}
	if !strings.Contains(out, "Deleted 1 image records") {
		t.Errorf("Unexpected delete output: %q", out)
	}

	if _, err := runCmd(t, append([]string{"folders", "delete", "pets"}, flags...)...); err == nil {
		t.Error("Deleting a missing folder should fail")
	}
	if _, err := runCmd(t, append([]string{"folders", "delete", "../etc"}, flags...)...); err == nil {
		t.Error("Invalid folder names should be rejected")
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := runCmd(t, "reset"); err == nil {
		t.Error("Expected an error for an unknown command")
	}
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Error("A buffer is never a terminal")
	}
}
