package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/flytam/filenamify"
)

// PhotoExt is the extension given to every saved photo, regardless of the
// content type the server reports.
const PhotoExt = ".jpg"

// MaxStemLen is the longest stem, in bytes, that still fits PhotoExt within
// the usual 255 byte filename limit.
const MaxStemLen = 255 - len(PhotoExt)

// IsDir returns true if a directory with the given path exists.
func IsDir(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && info.IsDir()
}

// ResolveDir returns the absolute form of dir. An empty dir means the
// platform's temporary directory. It returns an error if the directory does
// not exist; it never creates one.
func ResolveDir(dir string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	if !IsDir(abs) {
		return "", fmt.Errorf("output directory does not exist: %s", abs)
	}

	return abs, nil
}

// CheckStem returns an error if s cannot be used verbatim as the stem of a
// filename on this platform: if it is empty, "." or "..", longer than
// MaxStemLen bytes, or contains a path separator or NUL. On Windows it must
// also survive filenamify unchanged, which rules out reserved characters and
// device names such as "con".
func CheckStem(s string) error {
	return checkStem(runtime.GOOS, s)
}

func checkStem(goos string, s string) error {
	switch {
	case s == "":
		return fmt.Errorf("empty filename stem")
	case s == "." || s == "..":
		return fmt.Errorf("filename stem is a relative path: %q", s)
	case len(s) > MaxStemLen:
		return fmt.Errorf("filename stem too long: have=%d max=%d", len(s), MaxStemLen)
	case strings.ContainsAny(s, "/\x00"):
		return fmt.Errorf("filename stem contains a separator or NUL: %q", s)
	}

	if goos != "windows" {
		return nil
	}

	// MaxLength counts runes; the byte check above already bounds the stem.
	safe, err := filenamify.Filenamify(s, filenamify.Options{MaxLength: MaxStemLen})
	if err != nil {
		return err
	}
	if safe != s {
		return fmt.Errorf("unsafe filename stem: have=%q safe=%q", s, safe)
	}

	return nil
}

// PhotoPath returns the absolute path that the photo of the given identifier
// is saved to: <dir>/<identifier>.jpg, with dir resolved by ResolveDir().
func PhotoPath(dir string, identifier string) (string, error) {
	err := CheckStem(identifier)
	if err != nil {
		return "", err
	}

	abs, err := ResolveDir(dir)
	if err != nil {
		return "", err
	}

	return filepath.Join(abs, identifier+PhotoExt), nil
}
