package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/bookforge/internal/config"
)

// envPrefix starts every environment variable the CLI reads.
const envPrefix = "BOOKFORGE_"

// Environment variables, applied over the config file and under flags.
const (
	envConfig         = "BOOKFORGE_CONFIG"          // config name or path
	envInput          = "BOOKFORGE_INPUT"           // source directory
	envOutput         = "BOOKFORGE_OUTPUT"          // output directory
	envTitle          = "BOOKFORGE_TITLE"           // book title
	envEncoding       = "BOOKFORGE_ENCODING"        // source encoding label
	envWorkers        = "BOOKFORGE_WORKERS"         // concurrent loads
	envHighlightStyle = "BOOKFORGE_HIGHLIGHT_STYLE" // chroma style
	envPageSize       = "BOOKFORGE_PAGE_SIZE"       // letter, a4, legal
	envTimeout        = "BOOKFORGE_TIMEOUT"         // page load timeout
	envAssetPath      = "BOOKFORGE_ASSET_PATH"      // custom assets directory
)

// knownEnvVars lists valid BOOKFORGE_* variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	envConfig:         true,
	envInput:          true,
	envOutput:         true,
	envTitle:          true,
	envEncoding:       true,
	envWorkers:        true,
	envHighlightStyle: true,
	envPageSize:       true,
	envTimeout:        true,
	envAssetPath:      true,
}

// warnUnknownEnvVars logs a warning for each unrecognized BOOKFORGE_* variable.
func warnUnknownEnvVars(env *Environment, logger *log.Logger) {
	for _, kv := range env.Environ() {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			logger.Warn("unknown environment variable (typo?)", "name", name)
		}
	}
}

// applyEnvConfig overrides cfg with every BOOKFORGE_* variable that is set.
// Unparseable numbers and durations are logged and ignored.
func applyEnvConfig(env *Environment, cfg *config.Config, logger *log.Logger) {
	setString := func(name string, dst *string) {
		if v := env.Getenv(name); v != "" {
			*dst = v
		}
	}

	setString(envInput, &cfg.Input)
	setString(envOutput, &cfg.Output)
	setString(envTitle, &cfg.Title)
	setString(envEncoding, &cfg.Parser.Encoding)
	setString(envHighlightStyle, &cfg.Markdown.HighlightStyle)
	setString(envPageSize, &cfg.PDF.PageSize)
	setString(envAssetPath, &cfg.Assets.BasePath)

	if v := env.Getenv(envWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Parser.Workers = n
		} else {
			logger.Warn("ignoring environment variable", "name", envWorkers, "value", v)
		}
	}

	if v := env.Getenv(envTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.PDF.Timeout = d
		} else {
			logger.Warn("ignoring environment variable", "name", envTimeout, "value", v)
		}
	}
}
