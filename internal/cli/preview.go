package cli

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		run      runFlags
		out      string
		category string
	)

	cmd := &cobra.Command{
		Use:   "preview <design>...",
		Short: "Render a low-resolution image of the whole roll",
		Long: `Render the whole roll at preview resolution into a single image.

Designs use the same path[:category[:copies]] syntax as build. Batches at or
above the preview item limit are refused; build them instead.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeDesignArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts, err := c.options(cmd, &run)
			if err != nil {
				return err
			}
			designs, err := parseDesignArgs(args, category)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, run.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			img, res, err := runner.Preview(ctx, toInputs(designs), opts)
			if res != nil {
				printSkipped(res.Skipped)
			}
			if err != nil {
				return err
			}
			if err := imaging.Save(img, out); err != nil {
				return fmt.Errorf("save preview: %w", err)
			}

			printSuccess("Preview %s", StyleHighlight.Render(out))
			printDetail("%d items, %dx%d px", len(res.Items), img.Bounds().Dx(), img.Bounds().Dy())
			printLength(res.Summary)
			return nil
		},
	}

	run.register(cmd)
	cmd.Flags().StringVarP(&out, "output", "o", "preview.png", "output image")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category for designs given without one")

	return cmd
}
