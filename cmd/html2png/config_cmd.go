package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-html2png/internal/yamlutil"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Prints the configuration after the config file, environment and
built-in defaults have been merged. The output is a valid config file.`,
		Example: `  html2png config > html2png.yaml
  html2png config --config team`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *a.cfg
			cfg.Root = a.root

			out, err := yamlutil.Marshal(&cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			_, err = a.env.Stdout.Write(out)
			return err
		},
	}
}
