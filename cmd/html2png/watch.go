package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	html2png "github.com/alnah/go-html2png"
	"github.com/alnah/go-html2png/internal/hints"
)

func newWatchCmd(a *app) *cobra.Command {
	var f watchFlags

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Convert HTML documents of one folder as they change",
		Long: `Watches a profile folder and converts every HTML document that is
created or saved, once it has been quiet for the debounce period. The
browser stays open until the command is interrupted.`,
		Example: `  html2png watch --folder Wireframes
  html2png watch --folder Wireframes --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runWatch(cmd.Context(), f)
		},
	}
	addWatchFlags(cmd.Flags(), &f)
	return cmd
}

// runWatch converts changed documents until ctx is cancelled.
func (a *app) runWatch(ctx context.Context, f watchFlags) error {
	debounce := html2png.DefaultDebounce
	if f.debounce != "" {
		d, err := time.ParseDuration(f.debounce)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: --debounce %q", ErrUsage, f.debounce)
		}
		debounce = d
	}

	reg, err := a.registry()
	if err != nil {
		return err
	}
	folder, err := a.selectFolder(reg, f.folder)
	if errors.Is(err, html2png.ErrNoFolders) {
		return withHint(err, hints.ForProfiles(reg.Categories()))
	}
	if err != nil {
		return err
	}
	profile, err := reg.Lookup(folder)
	if err != nil {
		return err
	}

	session, err := a.newDriver(profile).Start(ctx)
	if err != nil {
		return withHint(err, hints.ForBrowserConnect())
	}
	defer func() {
		if err := session.Close(); err != nil {
			a.logger.Debug("browser close failed", "error", err)
		}
	}()

	w := &html2png.Watcher{
		Root:      a.folderPath(folder),
		Ignore:    a.ignoreSet(),
		Debounce:  debounce,
		Processor: session,
		Logger:    a.logger,
		OnResult: func(r html2png.ConversionResult) {
			if !r.Failed() {
				a.logger.Debug("converted", "path", r.Source.Path, "pages", len(r.Pages))
			}
		},
	}
	return w.Run(ctx)
}
