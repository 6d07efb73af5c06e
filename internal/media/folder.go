package media

import (
	"fmt"
	"strings"
)

// EmbeddedHashPrefixLen is how many characters of a filename-embedded
// hash are compared against stored hashes during a fast skip.
const EmbeddedHashPrefixLen = 16

var folderReplacer = strings.NewReplacer(
	" ", "-",
	"/", "",
	"#", "",
	"&", "",
	"(", "",
	")", "",
	",", "",
	`"`, "",
	".", "",
	";", "",
	":", "",
	"'", "",
)

// SanitizeFolderName lowercases name, turns spaces into hyphens and strips
// characters that are awkward in URLs and cache keys.
func SanitizeFolderName(name string) string {
	return folderReplacer.Replace(strings.ToLower(name))
}

// EmbeddedHash returns the hash fragment of a stem shaped like
// "<name>_<hash>", truncated to EmbeddedHashPrefixLen. ok is false when the
// stem does not split into exactly two parts.
func EmbeddedHash(stem string) (prefix string, ok bool) {
	parts := strings.Split(stem, "_")
	if len(parts) != 2 {
		return "", false
	}
	return HashPrefix(parts[1]), true
}

// HashPrefix truncates hash to EmbeddedHashPrefixLen characters.
func HashPrefix(hash string) string {
	if len(hash) > EmbeddedHashPrefixLen {
		return hash[:EmbeddedHashPrefixLen]
	}
	return hash
}

// ValidateHash checks that hash is alphanumeric and 8 to 128 characters.
func ValidateHash(hash string) error {
	if len(hash) < 8 || len(hash) > 128 {
		return fmt.Errorf("%w: hash must be 8 to 128 characters", ErrBadRequest)
	}
	for _, r := range hash {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlnum {
			return fmt.Errorf("%w: hash must be alphanumeric", ErrBadRequest)
		}
	}
	return nil
}

// ValidateFolder rejects empty names, names over 255 bytes and anything
// that could escape a directory.
func ValidateFolder(folder string) error {
	switch {
	case folder == "":
		return fmt.Errorf("%w: folder name is required", ErrBadRequest)
	case len(folder) > 255:
		return fmt.Errorf("%w: folder name too long", ErrBadRequest)
	case strings.Contains(folder, ".."), strings.ContainsAny(folder, `/\`):
		return fmt.Errorf("%w: invalid folder name", ErrBadRequest)
	}
	return nil
}
