package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"variant-studio/internal/app"
	"variant-studio/internal/catalog"
	"variant-studio/internal/studio"
)

type generateOptions struct {
	prompt    string
	style     string
	tone      string
	numImages int
	size      int
	flat      bool
	asJSON    bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Expand a prompt into variants and render one image per variant",
		Example: `  variant generate --prompt "a red fox in snow" --style watercolor --tone warm -n 2 --size 256
  variant generate a lighthouse at dusk --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.prompt, "prompt", "p", "", "text prompt (or pass it as arguments)")
	cmd.Flags().StringVarP(&opts.style, "style", "s", "", "background style")
	cmd.Flags().StringVarP(&opts.tone, "tone", "t", "", "tone")
	cmd.Flags().IntVarP(&opts.numImages, "num", "n", catalog.DefaultNumImages, "number of images")
	cmd.Flags().IntVar(&opts.size, "size", catalog.DefaultImageSize, "edge length in pixels")
	cmd.Flags().BoolVar(&opts.flat, "flat", false, "write into the output directory without a batch folder")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")

	return cmd
}

type generateOutput struct {
	BatchID   string   `json:"batch_id,omitempty"`
	Variants  []string `json:"variants"`
	Paths     []string `json:"paths"`
	Requested int      `json:"requested"`
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions, args []string) error {
	req := catalog.Normalize(catalog.Options{
		Prompt:          promptFrom(opts.prompt, args),
		BackgroundStyle: opts.style,
		Tone:            opts.tone,
		NumImages:       opts.numImages,
		ImageSize:       opts.size,
	})
	if req.Prompt == "" {
		return errors.New("a prompt is required")
	}

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if opts.flat {
		cfg.FlatLayout = true
	}

	bar := progressbar.NewOptions(req.NumImages,
		progressbar.OptionSetDescription("rendering"),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(cmd.ErrOrStderr(), "\n")
		}),
	)

	a, err := app.Build(cfg, root.logger(cmd, cfg), app.BuildOptions{
		OnResult: func(index int, path string, ok bool) {
			_ = bar.Add(1)
		},
	})
	if err != nil {
		return err
	}

	res, err := a.Studio.Generate(cmd.Context(), studio.Request{
		Prompt:          req.Prompt,
		BackgroundStyle: req.BackgroundStyle,
		Tone:            req.Tone,
		NumImages:       req.NumImages,
		ImageSize:       req.ImageSize,
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(generateOutput{
			BatchID:   res.BatchID,
			Variants:  res.Variants,
			Paths:     res.Paths,
			Requested: res.Requested,
		})
	}

	for _, p := range res.Paths {
		fmt.Fprintln(out, p)
	}
	if len(res.Paths) == 0 {
		return errors.New("no images were generated")
	}
	if res.Partial() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d of %d images were generated\n", len(res.Paths), res.Requested)
	}
	return nil
}
