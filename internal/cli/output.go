package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gangsheet/pkg/errors"
	"github.com/matzehuels/gangsheet/pkg/pipeline"
	"github.com/matzehuels/gangsheet/pkg/sink"
	"github.com/matzehuels/gangsheet/pkg/storage"
)

// output is the destination of a build: a zip archive or a directory of
// PNG files, chosen by the path's extension.
type output struct {
	path string
	sink sink.Sink
	file *os.File // nil for directories
}

func isZip(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}

// openOutput creates the destination. Directories are created as needed.
func openOutput(path string) (*output, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "output path cannot be empty")
	}
	if !isZip(path) {
		d, err := sink.NewDir(path)
		if err != nil {
			return nil, err
		}
		return &output{path: path, sink: d}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &output{path: path, sink: sink.NewZip(f), file: f}, nil
}

// Close finishes the archive. For an empty run the half-written archive is
// removed so nothing printable-looking is left behind.
func (o *output) Close(empty bool) error {
	err := o.sink.Close()
	if o.file != nil {
		if cerr := o.file.Close(); err == nil {
			err = cerr
		}
		if empty {
			os.Remove(o.path)
		}
	}
	return err
}

// outputFlags control where a build goes.
type outputFlags struct {
	out     string
	publish string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "output", "o", defaultOutput, "output .zip archive or directory")
	cmd.Flags().StringVar(&f.publish, "publish", "", "upload the archive to s3://bucket/prefix")
}

func (f *outputFlags) validate() error {
	if f.publish == "" {
		return nil
	}
	if err := errors.ValidatePublishURL(f.publish); err != nil {
		return err
	}
	if !isZip(f.out) {
		return errors.New(errors.ErrCodeInvalidInput, "--publish needs a .zip output, got %s", f.out)
	}
	return nil
}

// execute runs the montage into the output and reports the result.
func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, inputs []pipeline.Input, opts pipeline.Options, f *outputFlags) (*pipeline.Result, error) {
	out, err := openOutput(f.out)
	if err != nil {
		return nil, err
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Reading %d designs...", len(inputs)))
	untrack := track(spinner)
	spinner.Start()

	res, err := runner.Execute(ctx, inputs, out.sink, opts)

	untrack()
	spinner.Stop()
	if cerr := out.Close(err != nil || res.Empty()); err == nil && cerr != nil {
		err = fmt.Errorf("finish %s: %w", f.out, cerr)
	}
	if err != nil {
		return res, err
	}

	printSkipped(res.Skipped)
	if res.Empty() {
		printWarning("Nothing to print: every design was skipped")
		return res, nil
	}

	printSuccess("Built %s", StyleHighlight.Render(f.out))
	printRunStats(res)
	printLength(res.Summary)
	if res.Preview != nil {
		printFile(sink.PNGName(pipeline.PreviewName))
	}
	for _, p := range res.Pages {
		printFile(sink.PNGName(p.Name()))
	}
	prog.done("Montage complete")

	if f.publish != "" {
		if err := c.publish(ctx, f, res.RunID); err != nil {
			return res, err
		}
	}
	return res, nil
}

// publish uploads the finished archive.
func (c *CLI) publish(ctx context.Context, f *outputFlags, runID string) error {
	cfg, err := storage.ConfigFromEnv().WithURL(f.publish)
	if err != nil {
		return err
	}
	s3, err := storage.NewS3(ctx, cfg)
	if err != nil {
		return err
	}

	file, err := os.Open(f.out)
	if err != nil {
		return err
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Uploading archive...")
	spinner.Start()
	obj, err := s3.Publish(ctx, archiveName(runID), file, info.Size())
	spinner.Stop()
	if err != nil {
		return err
	}

	printSuccess("Published s3://%s/%s", obj.Bucket, obj.Key)
	if obj.URL != "" {
		printDetail("%s", StyleLink.Render(obj.URL))
	}
	return nil
}

// archiveName is the object name of a published run.
func archiveName(runID string) string {
	return "montage-" + runID + ".zip"
}
