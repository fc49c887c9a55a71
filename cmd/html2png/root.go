package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	html2png "github.com/alnah/go-html2png"
	"github.com/alnah/go-html2png/internal/config"
	"github.com/alnah/go-html2png/internal/console"
	"github.com/alnah/go-html2png/internal/hints"
)

// ErrUsage reports an invalid flag value.
var ErrUsage = errors.New("invalid usage")

// app is the state shared by all commands once flags are parsed.
type app struct {
	env    *Environment
	flags  commonFlags
	cfg    *config.Config
	root   string
	logger *slog.Logger
}

func newRootCmd(env *Environment) *cobra.Command {
	a := &app{env: env}
	var convert convertFlags

	cmd := &cobra.Command{
		Use:   "html2png",
		Short: "Convert HTML documents to PDF and cropped PNG pages",
		Long: `html2png renders every HTML document of a project folder to PDF with
headless Chrome, rasterizes each PDF to PNG pages with pdftocairo and trims
the white borders of every page.

Each top-level folder (Use-Cases, Wireframes, ...) is bound to a conversion
profile in the configuration. Run without a subcommand to convert.`,
		Example: `  # Pick a folder interactively
  html2png

  # Convert one folder without prompting
  html2png convert --folder Wireframes

  # Build index.html linking every generated file
  html2png tree`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runConvert(cmd.Context(), convert)
		},
	}

	addCommonFlags(cmd.PersistentFlags(), &a.flags)
	addConvertFlags(cmd.Flags(), &convert)

	cmd.SetIn(env.Stdin)
	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)

	cmd.AddCommand(
		newConvertCmd(a),
		newTreeCmd(a),
		newWatchCmd(a),
		newDoctorCmd(a),
		newConfigCmd(a),
	)
	return cmd
}

// setup loads .env, builds the logger and resolves config and root.
// Precedence: flags > environment > config file > built-in defaults.
func (a *app) setup() error {
	// Load .env file if present (ignore errors)
	_ = godotenv.Load()

	level := slog.LevelInfo
	switch {
	case a.flags.verbose:
		level = slog.LevelDebug
	case a.flags.quiet:
		level = slog.LevelWarn
	}
	a.logger = console.New(a.env.Stdout, &console.Options{
		Level:   level,
		NoColor: a.flags.noColor || os.Getenv("NO_COLOR") != "",
	})
	warnUnknownEnvVars(a.logger)

	env := loadEnvConfig()

	cfg, err := loadConfig(firstNonEmpty(a.flags.config, env.ConfigPath))
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.root = firstNonEmpty(a.flags.root, env.Root, cfg.Root, ".")
	a.logger.Debug("configuration loaded", "root", a.root)
	return nil
}

// loadConfig returns the built-in config for an empty name.
func loadConfig(nameOrPath string) (*config.Config, error) {
	if nameOrPath == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(nameOrPath)
	if errors.Is(err, config.ErrConfigNotFound) {
		return nil, withHint(err, hints.ForConfigNotFound(searchedPaths(err)))
	}
	return cfg, err
}

// searchedPaths extracts the "tried a, b" list from a not-found error.
func searchedPaths(err error) []string {
	msg := err.Error()
	i := strings.Index(msg, "tried ")
	if i < 0 {
		return nil
	}
	return strings.Split(msg[i+len("tried "):], ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ignoreSet returns the configured ignore list.
func (a *app) ignoreSet() html2png.IgnoreSet {
	return html2png.NewIgnoreSet(a.cfg.Ignore...)
}

// registry builds the profile registry from the config.
func (a *app) registry() (*html2png.Registry, error) {
	profiles := make([]html2png.ConversionProfile, 0, len(a.cfg.Profiles))
	for name, p := range a.cfg.Profiles {
		profiles = append(profiles, html2png.ConversionProfile{
			Name: name,
			Layout: html2png.PageLayout{
				Format:          p.Format,
				Landscape:       p.Landscape,
				PrintBackground: p.PrintBackground,
				Scale:           p.Scale,
				Margin: html2png.Margins{
					Top:    p.Margin.Top,
					Bottom: p.Margin.Bottom,
					Left:   p.Margin.Left,
					Right:  p.Margin.Right,
				},
			},
			DPI:  p.DPI,
			Crop: p.Crop,
		})
	}
	return html2png.NewRegistry(profiles...)
}

// folderPath resolves a folder name under the project root.
func (a *app) folderPath(folder string) string {
	return filepath.Join(a.root, folder)
}

// describe formats a profile for the debug log.
func describe(p html2png.ConversionProfile) string {
	return fmt.Sprintf("%s (%s, scale %.1f, %d DPI, crop %v)", p.Name, p.Layout.Format, p.Layout.Scale, p.DPI, p.Crop)
}
