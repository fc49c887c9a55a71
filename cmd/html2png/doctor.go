package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/cobra"

	"github.com/alnah/go-html2png/internal/hints"
)

// errDoctorFailed makes the command exit 1 when a check failed.
var errDoctorFailed = errors.New("doctor found errors")

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status     string         `json:"status"` // "ready", "warnings", "errors"
	Chrome     chromeInfo     `json:"chrome"`
	Rasterizer rasterizerInfo `json:"rasterizer"`
	Env        envInfo        `json:"environment"`
	System     systemInfo     `json:"system"`
	Warnings   []string       `json:"warnings,omitempty"`
	Errors     []string       `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// rasterizerInfo holds pdftocairo detection results.
type rasterizerInfo struct {
	Binary string `json:"binary"`
	Found  bool   `json:"found"`
	Path   string `json:"path,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	Container  bool   `json:"container"`
	CI         bool   `json:"ci"`
	NoSandbox  string `json:"rod_no_sandbox"`
	BrowserBin string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool   `json:"temp_writable"`
	Root         string `json:"root"`
	RootExists   bool   `json:"root_exists"`
}

// Lookups used by the checks. Tests replace them.
var (
	lookChrome = launcher.LookPath
	lookPath   = exec.LookPath
)

func newDoctorCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that Chrome and pdftocairo are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := runDoctor(a.cfg.Rasterizer.Binary, a.root)

			if jsonOutput {
				enc := json.NewEncoder(a.env.Stdout)
				enc.SetIndent("", "  ")
				_ = enc.Encode(result)
			} else {
				printDoctorResult(a.env.Stdout, result)
			}

			if result.Status == "errors" {
				return errDoctorFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	return cmd
}

// runDoctor performs all diagnostic checks.
func runDoctor(binary, root string) *doctorResult {
	if binary == "" {
		binary = "pdftocairo"
	}
	result := &doctorResult{
		Status:     "ready",
		Rasterizer: rasterizerInfo{Binary: binary},
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
		System: systemInfo{Root: root},
	}

	checkChrome(result)
	checkRasterizer(result)
	checkEnvironment(result)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = lookChrome()
		if !found {
			// Rod can download Chromium on first run, so this is not fatal.
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; it will be downloaded on first run. Set ROD_BROWSER_BIN to use an installed browser")
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

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- browser path from env or rod lookup
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkRasterizer locates the pdftocairo binary.
func checkRasterizer(result *doctorResult) {
	path, err := lookPath(result.Rasterizer.Binary)
	if err != nil {
		hint := strings.TrimPrefix(hints.ForRasterizerNotFound(result.Rasterizer.Binary), "\n  hint: ")
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s not found; %s", result.Rasterizer.Binary, hint))
		return
	}
	result.Rasterizer.Found = true
	result.Rasterizer.Path = path
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container = hints.IsInContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// checkSystem verifies the temp directory and the project root.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	f, err := os.CreateTemp(tmpDir, "html2png-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		name := f.Name()
		_ = f.Close()
		_ = os.Remove(name)
		result.System.TempWritable = true
	}

	if info, err := os.Stat(result.System.Root); err == nil && info.IsDir() {
		result.System.RootExists = true
	} else {
		abs, _ := filepath.Abs(result.System.Root)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Project root not found: %s", abs))
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "html2png doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Rasterizer")
	if r.Rasterizer.Found {
		fmt.Fprintf(w, "  [OK] %s at %s\n", r.Rasterizer.Binary, r.Rasterizer.Path)
	} else {
		fmt.Fprintf(w, "  [ERROR] %s not found\n", r.Rasterizer.Binary)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintln(w, "  [OK] Container: detected")
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	if r.System.RootExists {
		fmt.Fprintf(w, "  [OK] Project root: %s\n", r.System.Root)
	} else {
		fmt.Fprintf(w, "  [WARN] Project root: %s not found\n", r.System.Root)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
