// Package config loads and validates bookforge.yaml.
//
// Values are layered: DefaultConfig, then the YAML file decoded over it, then
// environment and command-line overrides applied by the CLI. Keys the file
// omits keep their defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/alnah/bookforge/internal/fileutil"
	"github.com/alnah/bookforge/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
)

// AppName names the per-user config directory.
const AppName = "bookforge"

// DefaultName is the config name looked up when none is given.
const DefaultName = "bookforge"

// Defaults shared with the CLI.
const (
	DefaultInput          = "./docs"
	DefaultTitle          = "GitBook"
	DefaultEncoding       = "utf-8"
	DefaultHighlightStyle = "github"
	DefaultPageSize       = "a4"
	DefaultOrientation    = "portrait"
	DefaultMargin         = 0.8
	DefaultTimeout        = 60 * time.Second
)

// Field limits.
const (
	MaxPathLength          = 4096
	MaxTitleLength         = 200
	MaxEncodingLength      = 40  // "windows-1252", "iso-8859-15"
	MaxStyleLength         = 50  // chroma style names
	MaxPageSizeLength      = 10  // "letter", "a4", "legal"
	MaxOrientationLength   = 10  // "portrait", "landscape"
	MaxIgnorePatternLength = 255 // one path segment
	MaxIgnorePatterns      = 100
	MaxWorkers             = 256
	MaxTimeout             = 10 * time.Minute
)

// Margin bounds in inches.
const (
	MinMargin = 0.25
	MaxMargin = 3.0
)

// DefaultIgnorePatterns are the directory names skipped during scans.
var DefaultIgnorePatterns = []string{"node_modules", ".git", "dist", "build"}

// Config holds everything a build reads.
type Config struct {
	Input    string         `yaml:"input"`  // Source directory
	Output   string         `yaml:"output"` // Empty = per-command default
	Title    string         `yaml:"title"`
	Parser   ParserConfig   `yaml:"parser"`
	Markdown MarkdownConfig `yaml:"markdown"`
	PDF      PDFConfig      `yaml:"pdf"`
	Assets   AssetsConfig   `yaml:"assets"`
}

// ParserConfig controls document discovery and decoding.
type ParserConfig struct {
	Encoding       string   `yaml:"encoding"`       // WHATWG label, e.g. "utf-8", "latin1"
	IgnorePatterns []string `yaml:"ignorePatterns"` // Directory-name substrings to skip
	Workers        int      `yaml:"workers"`        // 0 = GOMAXPROCS
}

// MarkdownConfig controls Markdown rendering.
type MarkdownConfig struct {
	UnsafeHTML     bool   `yaml:"unsafeHTML"` // Pass raw HTML through
	HardWraps      bool   `yaml:"hardWraps"`  // Newlines become <br>
	HighlightStyle string `yaml:"highlightStyle"`
}

// PDFConfig controls the printed book.
type PDFConfig struct {
	PageSize    string        `yaml:"pageSize"`    // letter, a4, legal
	Orientation string        `yaml:"orientation"` // portrait, landscape
	Margin      float64       `yaml:"margin"`      // inches
	PageNumbers bool          `yaml:"pageNumbers"`
	Timeout     time.Duration `yaml:"timeout"` // Per page load
}

// AssetsConfig points at a directory overriding embedded templates and styles.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = embedded assets only
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Input: DefaultInput,
		Title: DefaultTitle,
		Parser: ParserConfig{
			Encoding:       DefaultEncoding,
			IgnorePatterns: append([]string(nil), DefaultIgnorePatterns...),
		},
		Markdown: MarkdownConfig{HighlightStyle: DefaultHighlightStyle},
		PDF: PDFConfig{
			PageSize:    DefaultPageSize,
			Orientation: DefaultOrientation,
			Margin:      DefaultMargin,
			PageNumbers: true,
			Timeout:     DefaultTimeout,
		},
	}
}

// Validate reports the first invalid field by its YAML path.
// LoadConfig calls it; callers building a Config by hand should too.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"input", c.Input, MaxPathLength},
		{"output", c.Output, MaxPathLength},
		{"title", c.Title, MaxTitleLength},
		{"parser.encoding", c.Parser.Encoding, MaxEncodingLength},
		{"markdown.highlightStyle", c.Markdown.HighlightStyle, MaxStyleLength},
		{"pdf.pageSize", c.PDF.PageSize, MaxPageSizeLength},
		{"pdf.orientation", c.PDF.Orientation, MaxOrientationLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	if len(c.Parser.IgnorePatterns) > MaxIgnorePatterns {
		return invalid("parser.ignorePatterns", "at most %d entries, got %d", MaxIgnorePatterns, len(c.Parser.IgnorePatterns))
	}
	for i, p := range c.Parser.IgnorePatterns {
		if err := validateFieldLength(fmt.Sprintf("parser.ignorePatterns[%d]", i), p, MaxIgnorePatternLength); err != nil {
			return err
		}
	}
	if c.Parser.Workers < 0 || c.Parser.Workers > MaxWorkers {
		return invalid("parser.workers", "must be between 0 and %d, got %d", MaxWorkers, c.Parser.Workers)
	}

	if c.PDF.PageSize != "" {
		switch strings.ToLower(c.PDF.PageSize) {
		case "letter", "a4", "legal":
		default:
			return invalid("pdf.pageSize", "%q (must be letter, a4, or legal)", c.PDF.PageSize)
		}
	}
	if c.PDF.Orientation != "" {
		switch strings.ToLower(c.PDF.Orientation) {
		case "portrait", "landscape":
		default:
			return invalid("pdf.orientation", "%q (must be portrait or landscape)", c.PDF.Orientation)
		}
	}
	if c.PDF.Margin != 0 && (c.PDF.Margin < MinMargin || c.PDF.Margin > MaxMargin) {
		return invalid("pdf.margin", "must be between %.2f and %.2f inches, got %.2f", MinMargin, MaxMargin, c.PDF.Margin)
	}
	if c.PDF.Timeout < 0 || c.PDF.Timeout > MaxTimeout {
		return invalid("pdf.timeout", "must be between 0 and %s, got %s", MaxTimeout, c.PDF.Timeout)
	}

	return nil
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...))
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// SearchDirs returns the directories searched for a config name: the
// working directory, then $XDG_CONFIG_HOME/bookforge (or the platform
// equivalent).
func SearchDirs() []string {
	dirs := []string{"."}
	if userDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userDir, AppName))
	}
	return dirs
}

// LoadConfig loads configuration from a file path or config name on the OS
// filesystem. See Load.
func LoadConfig(nameOrPath string) (*Config, error) {
	return Load(afero.NewOsFs(), nameOrPath, SearchDirs())
}

// Load reads nameOrPath from fsys and decodes it over DefaultConfig.
// A value containing a path separator is a file path. Anything else is a
// config name tried as <name>.yaml then <name>.yml in each of dirs.
// A missing file is an error; there is no silent fallback to defaults.
func Load(fsys afero.Fs, nameOrPath string, dirs []string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(fsys, nameOrPath, dirs)
		if err != nil {
			return nil, err
		}
	}

	data, err := afero.ReadFile(fsys, configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}

	return cfg, nil
}

// NotFoundError lists every path tried while resolving a config name.
type NotFoundError struct {
	Name  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q (tried %s)", ErrConfigNotFound, e.Name, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrConfigNotFound }

// resolveConfigPath searches dirs in order, .yaml before .yml.
func resolveConfigPath(fsys afero.Fs, name string, dirs []string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	tried := make([]string, 0, len(extensions)*len(dirs))

	for _, dir := range dirs {
		for _, ext := range extensions {
			candidate := filepath.Join(dir, name+ext)
			if fileutil.FileExists(fsys, candidate) {
				return candidate, nil
			}
			tried = append(tried, candidate)
		}
	}

	return "", &NotFoundError{Name: name, Tried: tried}
}

// Dump renders c as YAML.
func (c *Config) Dump() ([]byte, error) {
	return yamlutil.Marshal(c)
}
