// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// dirPerm is used for every directory created in an output tree.
const dirPerm = 0o750

// markdownExts lists recognised Markdown extensions (compared lower-cased).
var markdownExts = []string{".md", ".markdown"}

// IsMarkdownFile reports whether name has a Markdown extension.
// The comparison is case-insensitive: "README.MD" is a Markdown file.
func IsMarkdownFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range markdownExts {
		if ext == e {
			return true
		}
	}
	return false
}

// IsRemoteLink reports whether an entry-file link target points outside the
// local filesystem.
func IsRemoteLink(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "//")
}

// IsExternalImage reports whether an image src must be left alone instead of
// being copied next to the rendered page.
//
// Examples:
//   - "http://x/a.png", "https://x/a.png" -> true
//   - "data:image/png;base64,..." -> true
//   - "blob:..." -> true
//   - "//cdn/a.png" -> true
//   - "images/a.png", "./a.png" -> false
func IsExternalImage(src string) bool {
	return strings.HasPrefix(src, "http") ||
		strings.HasPrefix(src, "data:image/") ||
		strings.HasPrefix(src, "blob:") ||
		strings.HasPrefix(src, "//")
}

// IsPathUnderDir reports whether path is dir itself or lies beneath it.
// Both arguments are cleaned before comparison; no symlinks are resolved.
func IsPathUnderDir(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// EnsureDir creates dir and any missing parents. It is a no-op when dir
// already exists.
func EnsureDir(fsys afero.Fs, dir string) error {
	if err := fsys.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// WriteTempFile creates a temporary file in dir with the given content and
// extension. An empty dir uses the system temp directory.
// Returns the file path and a cleanup function to remove the file.
//
// The file lives on the real filesystem because it is handed to an external
// browser process.
func WriteTempFile(dir, content, extension string) (path string, cleanup func(), err error) {
	if err := ValidateExtension(extension); err != nil {
		return "", nil, err
	}

	tmpFile, err := os.CreateTemp(dir, "bookforge-*."+extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, writeErr := tmpFile.WriteString(content); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", closeErr)
	}

	return path, cleanup, nil
}

// ValidateExtension checks that the extension is safe for use in temp file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "bookforge" -> false (name)
//   - "./book.yaml" -> true (relative path)
//   - "/etc/bookforge/book.yaml" -> true (absolute)
//   - "C:\books\book.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
