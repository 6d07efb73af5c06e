package media

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photo-gallery/internal/mediatypes"
	"photo-gallery/internal/transcoder"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

// =============================================================================
// Hashing
// =============================================================================

func TestHashFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// Larger than one chunk so the streaming loop runs more than once
	content := bytes.Repeat([]byte("gallery"), 2000)
	path := filepath.Join(dir, "a.bin")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	sum := sha256.Sum256(content)
	want := hex.EncodeToString(sum[:])

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile() failed: %v", err)
	}
	if got != want {
		t.Errorf("HashFile() = %s, want %s", got, want)
	}

	again, _ := HashFile(path)
	if again != got {
		t.Error("HashFile() is not stable across calls")
	}

	copyPath := filepath.Join(dir, "copy.bin")
	if err := os.WriteFile(copyPath, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if other, _ := HashFile(copyPath); other != got {
		t.Error("identical bytes at different paths should hash the same")
	}
}

func TestHashFileMissing(t *testing.T) {
	t.Parallel()

	if _, err := HashFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestHashReaderEmpty(t *testing.T) {
	t.Parallel()

	got, err := HashReader(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("HashReader(empty) = %s", got)
	}
}

// =============================================================================
// Metadata extraction
// =============================================================================

func TestExtractInfo(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "Summer Trip")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "Beach_abc123.PNG")
	writePNG(t, path, 32, 16)

	info := ExtractInfo(path)
	if info.Stem != "Beach_abc123" {
		t.Errorf("Stem = %q", info.Stem)
	}
	if info.Extension != "png" {
		t.Errorf("Extension = %q, want png", info.Extension)
	}
	if info.Folder != "Summer Trip" {
		t.Errorf("Folder = %q", info.Folder)
	}
	if info.Width != 32 || info.Height != 16 {
		t.Errorf("dimensions = %dx%d, want 32x16", info.Width, info.Height)
	}
	if info.Format != mediatypes.FormatPNG {
		t.Errorf("Format = %v, want png", info.Format)
	}
}

func TestExtractInfoCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	info := ExtractInfo(path)
	if info.Width != 0 || info.Height != 0 {
		t.Errorf("corrupt file dimensions = %dx%d, want 0x0", info.Width, info.Height)
	}
	if info.Extension != "jpg" {
		t.Errorf("Extension = %q", info.Extension)
	}
}

// =============================================================================
// Folder and identity rules
// =============================================================================

func TestSanitizeFolderName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Summer Trip", "summer-trip"},
		{"Tom & Jerry (2020)", "tom--jerry-2020"},
		{`a#b,c"d.e;f:g'h`, "abcdefgh"},
		{"already-clean", "already-clean"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeFolderName(tt.in); got != tt.want {
			t.Errorf("SanitizeFolderName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEmbeddedHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stem   string
		want   string
		wantOK bool
	}{
		{"photo_0123456789abcdef0123", "0123456789abcdef", true},
		{"photo_abc", "abc", true},
		{"photo", "", false},
		{"my_photo_abc", "", false},
	}

	for _, tt := range tests {
		got, ok := EmbeddedHash(tt.stem)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("EmbeddedHash(%q) = %q, %v; want %q, %v", tt.stem, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestValidateHash(t *testing.T) {
	t.Parallel()

	valid := []string{"abcd1234", strings.Repeat("a", 128)}
	invalid := []string{"", "short", strings.Repeat("a", 129), "abcd-1234", "../../../etc"}

	for _, h := range valid {
		if err := ValidateHash(h); err != nil {
			t.Errorf("ValidateHash(%q) = %v, want nil", h, err)
		}
	}
	for _, h := range invalid {
		if err := ValidateHash(h); !errors.Is(err, ErrBadRequest) {
			t.Errorf("ValidateHash(%q) = %v, want ErrBadRequest", h, err)
		}
	}
}

func TestValidateFolder(t *testing.T) {
	t.Parallel()

	if err := ValidateFolder("summer-trip"); err != nil {
		t.Errorf("ValidateFolder(valid) = %v", err)
	}
	for _, f := range []string{"", "..", "a/b", `a\b`, strings.Repeat("x", 256)} {
		if err := ValidateFolder(f); !errors.Is(err, ErrBadRequest) {
			t.Errorf("ValidateFolder(%q) = %v, want ErrBadRequest", f, err)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrNotFound, http.StatusNotFound},
		{transcoder.ErrNotFound, http.StatusNotFound},
		{ErrBadRequest, http.StatusBadRequest},
		{transcoder.ErrUnsupportedFormat, http.StatusBadRequest},
		{transcoder.ErrDecode, http.StatusInternalServerError},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
