package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-html2png/internal/assets"
	"github.com/alnah/go-html2png/internal/fileutil"
	"github.com/alnah/go-html2png/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength      = 4096 // Root, template dir, rasterizer binary
	MaxNameLength      = 100  // Profile and ignore entry names
	MaxFormatLength    = 10   // "letter", "a4", "tabloid"
	MaxMarginLength    = 20   // "0.5in", "12.7mm"
	MaxDurationLength  = 20   // "500ms", "1m30s"
	MaxFragmentLength  = 200  // Transient stderr fragment
	MaxTitleLength     = 100  // Dashboard page title
	MaxProfiles        = 64
	MaxIgnoreEntries   = 256
	MaxTransientErrors = 32
)

// AppDirName is the directory under os.UserConfigDir searched for configs.
const AppDirName = "go-html2png"

// Config holds all configuration for a conversion or dashboard run.
type Config struct {
	Root       string                   `yaml:"root"`
	Ignore     []string                 `yaml:"ignore"`
	Profiles   map[string]ProfileConfig `yaml:"profiles"`
	Rasterizer RasterizerConfig         `yaml:"rasterizer"`
	Wait       WaitConfig               `yaml:"wait"`
	Render     RenderConfig             `yaml:"render"`
	Crop       CropConfig               `yaml:"crop"`
	Dashboard  DashboardConfig          `yaml:"dashboard"`
}

// ProfileConfig is the YAML form of a conversion profile.
type ProfileConfig struct {
	Format          string       `yaml:"format"`
	Landscape       bool         `yaml:"landscape"`
	PrintBackground bool         `yaml:"printBackground"`
	Scale           float64      `yaml:"scale"`
	Margin          MarginConfig `yaml:"margin"`
	DPI             int          `yaml:"dpi"`
	Crop            bool         `yaml:"crop"`
}

// MarginConfig holds CSS lengths per edge.
type MarginConfig struct {
	Top    string `yaml:"top"`
	Bottom string `yaml:"bottom"`
	Left   string `yaml:"left"`
	Right  string `yaml:"right"`
}

// RasterizerConfig configures the PDF to PNG step.
// MaxAttempts 0 means the built-in value.
type RasterizerConfig struct {
	Binary          string   `yaml:"binary"`
	TransientErrors []string `yaml:"transientErrors"`
	MaxAttempts     int      `yaml:"maxAttempts"`
	Backoff         string   `yaml:"backoff"` // step added per retry; "0s" retries at once
}

// WaitConfig configures polling for files written by external tools.
// Attempts 0 means the built-in value.
type WaitConfig struct {
	Attempts int    `yaml:"attempts"`
	Interval string `yaml:"interval"`
	Settle   string `yaml:"settle"` // pause before cropping; "0s" disables it
}

// RenderConfig configures the browser render stage.
type RenderConfig struct {
	Timeout string `yaml:"timeout"` // per document; "0s" means the built-in value
	Idle    string `yaml:"idle"`    // network quiet period after load; "0s" skips it
}

// CropConfig configures border trimming.
type CropConfig struct {
	Tolerance *int `yaml:"tolerance"` // 0-255 distance from the corner color
}

// ToleranceValue returns the tolerance, or def when unset.
func (c CropConfig) ToleranceValue(def uint8) uint8 {
	if c.Tolerance == nil {
		return def
	}
	return uint8(*c.Tolerance) // #nosec G115 -- validated to 0-255
}

// DashboardConfig configures the tree command.
type DashboardConfig struct {
	Output      string `yaml:"output"`
	Title       string `yaml:"title"`
	TemplateDir string `yaml:"templateDir"` // empty = embedded template
}

// BackoffStep returns the parsed rasterizer backoff.
func (c RasterizerConfig) BackoffStep() time.Duration { return parseDuration(c.Backoff) }

// IntervalDuration returns the parsed poll interval.
func (c WaitConfig) IntervalDuration() time.Duration { return parseDuration(c.Interval) }

// SettleDuration returns the parsed settle delay.
func (c WaitConfig) SettleDuration() time.Duration { return parseDuration(c.Settle) }

// TimeoutDuration returns the parsed render timeout.
func (c RenderConfig) TimeoutDuration() time.Duration { return parseDuration(c.Timeout) }

// IdleDuration returns the parsed idle period.
func (c RenderConfig) IdleDuration() time.Duration { return parseDuration(c.Idle) }

// parseDuration parses a duration already checked by Validate.
// Invalid values read as zero, which callers treat as "use the default".
func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("root", c.Root, MaxPathLength); err != nil {
		return err
	}

	if len(c.Ignore) > MaxIgnoreEntries {
		return fmt.Errorf("%w: ignore has %d entries (max %d)", ErrInvalidValue, len(c.Ignore), MaxIgnoreEntries)
	}
	for i, name := range c.Ignore {
		if err := validateFieldLength(fmt.Sprintf("ignore[%d]", i), name, MaxNameLength); err != nil {
			return err
		}
	}

	// Validate profiles
	if len(c.Profiles) > MaxProfiles {
		return fmt.Errorf("%w: %d profiles (max %d)", ErrInvalidValue, len(c.Profiles), MaxProfiles)
	}
	for name, p := range c.Profiles {
		if err := p.validate(name); err != nil {
			return err
		}
	}

	// Validate rasterizer fields
	if err := validateFieldLength("rasterizer.binary", c.Rasterizer.Binary, MaxPathLength); err != nil {
		return err
	}
	if len(c.Rasterizer.TransientErrors) > MaxTransientErrors {
		return fmt.Errorf("%w: rasterizer.transientErrors has %d entries (max %d)",
			ErrInvalidValue, len(c.Rasterizer.TransientErrors), MaxTransientErrors)
	}
	for i, frag := range c.Rasterizer.TransientErrors {
		if err := validateFieldLength(fmt.Sprintf("rasterizer.transientErrors[%d]", i), frag, MaxFragmentLength); err != nil {
			return err
		}
	}
	if c.Rasterizer.MaxAttempts < 0 || c.Rasterizer.MaxAttempts > 10 {
		return fmt.Errorf("%w: rasterizer.maxAttempts must be between 0 and 10, got %d", ErrInvalidValue, c.Rasterizer.MaxAttempts)
	}
	if err := validateDuration("rasterizer.backoff", c.Rasterizer.Backoff); err != nil {
		return err
	}

	// Validate wait fields
	if c.Wait.Attempts < 0 || c.Wait.Attempts > 1000 {
		return fmt.Errorf("%w: wait.attempts must be between 0 and 1000, got %d", ErrInvalidValue, c.Wait.Attempts)
	}
	if err := validateDuration("wait.interval", c.Wait.Interval); err != nil {
		return err
	}
	if err := validateDuration("wait.settle", c.Wait.Settle); err != nil {
		return err
	}

	// Validate render fields
	if err := validateDuration("render.timeout", c.Render.Timeout); err != nil {
		return err
	}
	if err := validateDuration("render.idle", c.Render.Idle); err != nil {
		return err
	}

	if t := c.Crop.Tolerance; t != nil && (*t < 0 || *t > 255) {
		return fmt.Errorf("%w: crop.tolerance must be between 0 and 255, got %d", ErrInvalidValue, *t)
	}

	// Validate dashboard fields
	if err := validateFieldLength("dashboard.output", c.Dashboard.Output, MaxPathLength); err != nil {
		return err
	}
	if strings.ContainsAny(c.Dashboard.Output, `/\`) {
		return fmt.Errorf("%w: dashboard.output must be a file name, got %q", ErrInvalidValue, c.Dashboard.Output)
	}
	if err := validateFieldLength("dashboard.title", c.Dashboard.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("dashboard.templateDir", c.Dashboard.TemplateDir, MaxPathLength); err != nil {
		return err
	}

	return nil
}

func (p ProfileConfig) validate(name string) error {
	field := "profiles." + name
	if name == "" {
		return fmt.Errorf("%w: empty profile name", ErrInvalidValue)
	}
	if err := validateFieldLength(field, name, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength(field+".format", p.Format, MaxFormatLength); err != nil {
		return err
	}
	for edge, m := range map[string]string{
		"top": p.Margin.Top, "bottom": p.Margin.Bottom, "left": p.Margin.Left, "right": p.Margin.Right,
	} {
		if err := validateFieldLength(field+".margin."+edge, m, MaxMarginLength); err != nil {
			return err
		}
	}
	// Scale, DPI and margin syntax are checked when the registry is built.
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateDuration accepts an empty value or a non-negative Go duration.
func validateDuration(fieldName, value string) error {
	if value == "" {
		return nil
	}
	if err := validateFieldLength(fieldName, value, MaxDurationLength); err != nil {
		return err
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %q is not a duration", ErrInvalidValue, fieldName, value)
	}
	if d < 0 {
		return fmt.Errorf("%w: %s: must not be negative, got %s", ErrInvalidValue, fieldName, value)
	}
	return nil
}

// DefaultConfig returns the built-in configuration.
// It panics if the embedded YAML is invalid, which a test guards against.
func DefaultConfig() *Config {
	var cfg Config
	if err := yamlutil.UnmarshalStrict(assets.DefaultConfig(), &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return &cfg
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Sections the file leaves unset keep their built-in values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := yamlutil.DecodeFile(configPath, &cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	cfg.fillDefaults(DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// fillDefaults copies every unset field from def.
func (c *Config) fillDefaults(def *Config) {
	if c.Root == "" {
		c.Root = def.Root
	}
	if c.Ignore == nil {
		c.Ignore = def.Ignore
	}
	if len(c.Profiles) == 0 {
		c.Profiles = def.Profiles
	}

	r := &c.Rasterizer
	if r.Binary == "" {
		r.Binary = def.Rasterizer.Binary
	}
	if r.TransientErrors == nil {
		r.TransientErrors = def.Rasterizer.TransientErrors
	}
	if r.MaxAttempts == 0 {
		r.MaxAttempts = def.Rasterizer.MaxAttempts
	}
	if r.Backoff == "" {
		r.Backoff = def.Rasterizer.Backoff
	}

	if c.Wait.Attempts == 0 {
		c.Wait.Attempts = def.Wait.Attempts
	}
	if c.Wait.Interval == "" {
		c.Wait.Interval = def.Wait.Interval
	}
	if c.Wait.Settle == "" {
		c.Wait.Settle = def.Wait.Settle
	}

	if c.Render.Timeout == "" {
		c.Render.Timeout = def.Render.Timeout
	}
	if c.Render.Idle == "" {
		c.Render.Idle = def.Render.Idle
	}

	if c.Crop.Tolerance == nil && def.Crop.Tolerance != nil {
		t := *def.Crop.Tolerance
		c.Crop.Tolerance = &t
	}

	if c.Dashboard.Output == "" {
		c.Dashboard.Output = def.Dashboard.Output
	}
	if c.Dashboard.Title == "" {
		c.Dashboard.Title = def.Dashboard.Title
	}
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <UserConfigDir>/go-html2png/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppDirName, name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
