package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gangsheet/pkg/catalog"
)

// buildOpts holds the flags of the build command.
type buildOpts struct {
	run      runFlags
	out      outputFlags
	category string
	pick     bool
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build <design>...",
		Short: "Lay out designs on a roll and write the pages",
		Long: `Lay out designs on a roll and write the pages.

Each design is path[:category[:copies]]. A directory stands for every image
in it. The category is a tag such as "back" or a label such as
"Frontal (7 cm)"; see "gangsheet categories". Designs that cannot be used
are skipped with a warning and the rest of the batch is still built.

The output is a zip archive (default) or, when -o names a directory, plain
PNG files. Either way it holds page_01.png, page_02.png, ..., a preview.png
for small batches, manifest.json and summary.txt.`,
		Example: `  gangsheet build shirt.png:back:12 logo.png:front-7:40
  gangsheet build ./backs:back:2 -o order-118/
  gangsheet build logo.png --pick --publish s3://prints/orders`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeDesignArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.out.validate(); err != nil {
				return err
			}
			return c.runBuild(cmd, args, &opts)
		},
	}

	opts.run.register(cmd)
	opts.out.register(cmd)
	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "category for designs given without one")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose the category interactively for designs given without one")

	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, args []string, opts *buildOpts) error {
	ctx := cmd.Context()

	runOpts, err := c.options(cmd, &opts.run)
	if err != nil {
		return err
	}
	designs, err := parseDesignArgs(args, opts.category)
	if err != nil {
		return err
	}
	if opts.pick {
		if err := pickMissing(designs, runOpts.Catalog()); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, opts.run.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	_, err = c.execute(ctx, runner, toInputs(designs), runOpts, &opts.out)
	return err
}

// pickMissing asks for the category of every design that has none.
func pickMissing(designs []designArg, cat *catalog.Catalog) error {
	for i := range designs {
		if designs[i].Label != "" {
			continue
		}
		c, err := pickCategory(cat.Entries(), designs[i].Path)
		if err != nil {
			return err
		}
		designs[i].Label = string(c)
	}
	return nil
}
