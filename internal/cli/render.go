package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/galvo/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	config      string // render parameter file
	noSort      bool   // keep the path order of each frame
	noCenter    bool   // keep frame positions instead of centering
	concurrency int    // frames rendered at once (0 = one per CPU)
	cache       cacheFlags
}

// renderCommand creates the render command. It reads every *.json frame of
// the input directory in name order and writes one ILDA stream.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <input-dir> <output.ild>",
		Short: "Render a directory of frames into an ILDA stream",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "render parameter file (TOML)")
	cmd.Flags().BoolVar(&opts.noSort, "no-sort", false, "keep the path order of each frame")
	cmd.Flags().BoolVar(&opts.noCenter, "no-center", false, "keep frame positions instead of centering")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "frames rendered at once (default: one per CPU)")
	addCacheFlags(cmd, &opts.cache)

	return cmd
}

// runRender executes the pipeline and writes the stream to output.
// Nothing is written when any frame fails.
func (c *CLI) runRender(ctx context.Context, input, output string, opts renderOpts) error {
	params, err := loadParams(opts.config)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := pipeline.Options{
		InputDir:    input,
		Params:      params,
		NoSort:      opts.noSort,
		NoCenter:    opts.noCenter,
		Concurrency: opts.concurrency,
		Refresh:     opts.cache.refresh,
		Logger:      c.Logger,
	}

	var spinner *Spinner
	if !c.quiet {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", input))
		popts.OnFrame = spinner.SetProgress
		spinner.Start()
	}

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, popts)
	if err != nil {
		if ctx.Err() != nil {
			if spinner != nil {
				spinner.Stop()
			}
			return ctx.Err()
		}
		if spinner != nil {
			spinner.StopWithError("Render failed")
		}
		return err
	}
	if spinner != nil {
		spinner.Stop()
	}

	if err := pipeline.WriteFile(output, res.Encoded); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Wrote %d frames to %s", len(res.Rendered), output))

	if c.quiet {
		return nil
	}

	printSuccess("Render complete")
	printFile(output)
	printStats(len(res.Rendered), res.CacheHits, res.Duration(params))
	for _, info := range res.Infos {
		if info.Rescaled() {
			printWarning("Frame %d scaled to %.2f%% to fit", info.Index, info.Scale*100)
		}
	}
	printNewline()
	printRenderStats(res.Stats)
	printNewline()
	printNextStep("Inspect", appName+" inspect "+output)

	return nil
}
