// Package hints builds actionable suffixes for CLI error messages.
// Every hint is formatted as "\n  hint: <text>" so it can be appended to
// err.Error() as-is.
package hints

import (
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/alnah/bookforge/internal/fileutil"
)

// IsInContainer reports whether the process runs inside Docker, which
// creates /.dockerenv in every container.
var IsInContainer = func() bool {
	return fileutil.FileExists(afero.NewOsFs(), "/.dockerenv")
}

// ForBrowserConnect suggests the environment variables that usually fix a
// failed Chrome launch.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use an installed Chrome")
	}

	return formatHints(hints)
}

// ForTimeout suggests a longer page-load timeout for large books.
func ForTimeout() string {
	return format("for large books, raise pdf.timeout or use --timeout")
}

// ForConfigNotFound suggests --config and, when one was searched, the
// per-user config location.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/bookforge.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(toSlash(p), "/bookforge/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns a hint for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForNoDocuments explains where documents are looked for.
func ForNoDocuments(input string) string {
	return format("no Markdown files found in " + input + "; add README.md, SUMMARY.md or index.md with a link list, or pass --input")
}

// ForEncoding lists common encoding labels.
func ForEncoding() string {
	return format("use a WHATWG label such as utf-8, latin1, windows-1252, shift_jis or gbk")
}

// ForHighlightStyle lists the available highlight styles.
func ForHighlightStyle(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
