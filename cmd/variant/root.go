package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"variant-studio/internal/app"
	"variant-studio/internal/config"
)

type rootOptions struct {
	outputDir string
	backend   string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "variant",
		Short:         "Generate image variations of a text prompt",
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for generated images (default OUTPUT_DIR)")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "image backend: huggingface or gemini (default IMAGE_BACKEND)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(newGenerateCmd(opts), newExpandCmd(opts))
	return root
}

// loadConfig reads the environment and applies command line overrides.
func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{Backend: o.backend})
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if o.outputDir != "" {
		cfg.OutputDir = o.outputDir
	}
	return cfg, nil
}

func (o *rootOptions) logger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	if !o.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return app.NewLogger(cfg, cmd.ErrOrStderr())
}

func promptFrom(flag string, args []string) string {
	if p := strings.TrimSpace(flag); p != "" {
		return p
	}
	return strings.TrimSpace(strings.Join(args, " "))
}
