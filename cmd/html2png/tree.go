package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/alnah/go-html2png/internal/assets"
	"github.com/alnah/go-html2png/internal/dashboard"
)

func newTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Generate index.html linking every file of the project",
		Long: `Scans the project root and writes a dashboard page with one card per
folder and one button per generated file (PDF, PNG, PNG2, ...).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTree(cmd.Context())
		},
	}
}

// runTree writes the dashboard. An empty project only logs a warning.
func (a *app) runTree(ctx context.Context) error {
	resolver, err := assets.NewAssetResolver(a.cfg.Dashboard.TemplateDir)
	if err != nil {
		return err
	}

	ignore := a.ignoreSet()
	g := &dashboard.Generator{
		Root:      a.root,
		Output:    a.cfg.Dashboard.Output,
		Title:     a.cfg.Dashboard.Title,
		Ignore:    ignore.Match,
		Templates: resolver,
		Logger:    a.logger,
	}
	if _, err := g.Generate(ctx); err != nil && !errors.Is(err, dashboard.ErrEmptyTree) {
		return err
	}
	return nil
}
