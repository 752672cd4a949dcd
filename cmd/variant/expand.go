package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"variant-studio/internal/app"
	"variant-studio/internal/catalog"
)

func newExpandCmd(root *rootOptions) *cobra.Command {
	var (
		prompt string
		n      int
	)

	cmd := &cobra.Command{
		Use:   "expand [prompt]",
		Short: "Print prompt variants without rendering images",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := promptFrom(prompt, args)
			if p == "" {
				return errors.New("a prompt is required")
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			a, err := app.Build(cfg, root.logger(cmd, cfg), app.BuildOptions{})
			if err != nil {
				return err
			}

			for _, v := range a.Expander.Expand(cmd.Context(), p, catalog.ClampCount(n)) {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "text prompt (or pass it as arguments)")
	cmd.Flags().IntVarP(&n, "num", "n", 3, "number of variants")

	return cmd
}
