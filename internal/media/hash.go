package media

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"photo-gallery/internal/filesystem"
	"photo-gallery/internal/logging"
)

// hashChunkSize is the read buffer used when streaming a file into the digest.
const hashChunkSize = 4096

// HashFile returns the lowercase hex SHA-256 digest of the file at path.
// The file is streamed in fixed-size chunks so memory use does not grow
// with file size.
func HashFile(path string) (string, error) {
	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close %s after hashing: %v", path, err)
		}
	}()

	return HashReader(f)
}

// HashReader returns the lowercase hex SHA-256 digest of everything read from r.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, onlyReader{r}, buf); err != nil {
		return "", fmt.Errorf("failed to read content for hashing: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// onlyReader hides WriterTo/ReaderFrom so io.CopyBuffer uses buf.
type onlyReader struct {
	io.Reader
}
