package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	html2png "github.com/alnah/go-html2png"
	"github.com/alnah/go-html2png/internal/hints"
)

func newConvertCmd(a *app) *cobra.Command {
	var f convertFlags

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert the HTML documents of one folder",
		Long: `Lists the top-level folders of the project root that have a profile,
asks which one to convert, then renders every HTML document below it to PDF
and PNG pages.`,
		Example: `  html2png convert
  html2png convert --folder Use-Cases --root ./docs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runConvert(cmd.Context(), f)
		},
	}
	addConvertFlags(cmd.Flags(), &f)
	return cmd
}

// runConvert selects a folder and runs the batch over its documents.
func (a *app) runConvert(ctx context.Context, f convertFlags) error {
	reg, err := a.registry()
	if err != nil {
		return err
	}

	folder, err := a.selectFolder(reg, f.folder)
	if errors.Is(err, html2png.ErrNoFolders) {
		a.logger.Warn("No configured folders found in " + a.root + hints.ForProfiles(reg.Categories()))
		return nil
	}
	if err != nil {
		return err
	}

	profile, err := reg.Lookup(folder)
	if err != nil {
		return err
	}

	docs, err := html2png.Locate(a.folderPath(folder), a.ignoreSet())
	if err != nil {
		return err
	}

	summary := a.newDriver(profile).Run(ctx, docs)
	return a.runError(ctx, summary)
}

// selectFolder returns the folder named by the flag or asks for one.
func (a *app) selectFolder(reg *html2png.Registry, flagValue string) (string, error) {
	folders, err := html2png.EligibleFolders(a.root, reg, a.ignoreSet())
	if err != nil {
		return "", err
	}

	if flagValue != "" {
		for _, f := range folders {
			if f == flagValue {
				return f, nil
			}
		}
		a.logger.Warn("Invalid choice")
		return "", withHint(fmt.Errorf("%w: %q", html2png.ErrInvalidSelection, flagValue), hints.ForProfiles(folders))
	}

	return a.promptFolder(folders)
}

// promptFolder prints the numbered folder list and reads a choice.
func (a *app) promptFolder(folders []string) (string, error) {
	out := a.env.Stdout
	fmt.Fprintln(out, "Available folders:")
	for i, f := range folders {
		fmt.Fprintf(out, "  [%d] %s\n", i+1, f)
	}
	fmt.Fprint(out, "Enter folder number: ")

	line, err := bufio.NewReader(a.env.Stdin).ReadString('\n')
	if err != nil && line == "" {
		a.logger.Warn("Invalid choice")
		return "", fmt.Errorf("%w: no input", html2png.ErrInvalidSelection)
	}

	choice := strings.TrimSpace(line)
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(folders) {
		a.logger.Warn("Invalid choice")
		return "", fmt.Errorf("%w: %q", html2png.ErrInvalidSelection, choice)
	}
	return folders[n-1], nil
}
