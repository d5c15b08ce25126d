package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"

	"github.com/alnah/bookforge/internal/config"
	"github.com/alnah/bookforge/internal/fileutil"
)

// errNotReady is returned by doctor when PDF output cannot work.
var errNotReady = errors.New("environment not ready for PDF output")

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	Config   string     `json:"config,omitempty"` // Resolved config file
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

func (a *app) doctorCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that PDF output can run here",
		Long: `Check for a Chrome or Chromium binary, container and CI sandbox settings,
a writable temp directory and the config file in use. Exits 1 when PDF
output cannot work.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := a.runDoctor(cmd.Context())

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				printDoctorResult(cmd.OutOrStdout(), result)
			}

			if result.Status == statusErrors {
				return errNotReady
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	return cmd
}

// runDoctor performs all diagnostic checks.
func (a *app) runDoctor(ctx context.Context) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  a.env.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: a.env.Getenv("ROD_BROWSER_BIN"),
		},
	}

	a.checkEnvironment(result)
	a.checkChrome(ctx, result)
	a.checkConfig(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkChrome locates the browser the rasterizer would launch.
func (a *app) checkChrome(ctx context.Context, result *doctorResult) {
	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, chromePath, "--version").Output() // #nosec G204 -- path from ROD_BROWSER_BIN or launcher lookup
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	// Same conditions the rasterizer uses to pass --no-sandbox.
	result.Chrome.Sandbox = a.env.Getenv("CI") != "true" &&
		result.Env.NoSandbox == "" &&
		result.Env.BrowserBin == ""
}

// checkEnvironment detects container and CI environments.
func (a *app) checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = a.isContainer()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if a.env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox == "" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer reports whether the process runs in a container and which
// signal gave it away.
func (a *app) isContainer() (bool, string) {
	if fileutil.FileExists(a.env.FS, "/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := a.env.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if a.env.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkConfig reports which config file a build would read.
func (a *app) checkConfig(result *doctorResult) {
	name, explicit := a.configName()
	cfg, err := config.Load(a.env.FS, name, a.env.ConfigDirs)
	var notFound *config.NotFoundError
	switch {
	case err == nil:
		result.Config = name
		if verr := cfg.Validate(); verr != nil {
			result.Errors = append(result.Errors, verr.Error())
		}
	case !explicit && errors.As(err, &notFound):
		// No config file is fine; defaults apply.
	default:
		result.Errors = append(result.Errors, err.Error())
	}
}

// checkSystem verifies the rasterizer can write its intermediate file.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	_, cleanup, err := fileutil.WriteTempFile(tmpDir, "doctor", "txt")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	cleanup()
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	ok := successStyle.Render("[OK]")
	warn := dimStyle.Render("[WARN]")
	bad := errorStyle.Render("[ERROR]")

	fmt.Fprintln(w, titleStyle.Render(appName+" doctor"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleStyle.Render("Chrome/Chromium"))
	if r.Chrome.Found {
		fmt.Fprintf(w, "  %s Found at %s\n", ok, r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  %s Version: %s\n", ok, r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintf(w, "  %s Sandbox: enabled\n", ok)
		} else {
			fmt.Fprintf(w, "  %s Sandbox: disabled\n", ok)
		}
	} else {
		fmt.Fprintf(w, "  %s Not found\n", bad)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleStyle.Render("Environment"))
	fmt.Fprintf(w, "  %s Platform: %s/%s\n", ok, r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  %s Container: detected (%s)\n", ok, r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintf(w, "  %s CI: detected\n", ok)
	}
	if r.Config != "" {
		fmt.Fprintf(w, "  %s Config: %s\n", ok, r.Config)
	} else {
		fmt.Fprintf(w, "  %s Config: none (defaults)\n", ok)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleStyle.Render("System"))
	if r.System.TempWritable {
		fmt.Fprintf(w, "  %s Temp directory: writable\n", ok)
	} else {
		fmt.Fprintf(w, "  %s Temp directory: not writable\n", bad)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, msg := range r.Warnings {
			fmt.Fprintf(w, "  %s %s\n", warn, msg)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, msg := range r.Errors {
			fmt.Fprintf(w, "  %s %s\n", bad, msg)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to build PDF books")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
