package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/matzehuels/gangsheet/pkg/asset"
	"github.com/matzehuels/gangsheet/pkg/catalog"
	"github.com/matzehuels/gangsheet/pkg/compose"
	"github.com/matzehuels/gangsheet/pkg/layout"
	"github.com/matzehuels/gangsheet/pkg/observability"
	"github.com/matzehuels/gangsheet/pkg/page"
	"github.com/matzehuels/gangsheet/pkg/sink"
)

// lookup resolves placement indexes to the items' assets.
func lookup(items []catalog.Item) compose.Lookup {
	return func(i int) *asset.Asset { return items[i].Asset }
}

// RenderPages composes the final-tier pages one at a time and writes each
// to out before starting the next, so at most one page buffer is alive.
// Cancellation is checked between pages and aborts the run.
func (r *Runner) RenderPages(ctx context.Context, roll layout.Roll, pages []page.Page, items []catalog.Item, out sink.Sink, opts Options) error {
	r.applyLogger(&opts)
	find := lookup(items)
	width := roll.CanvasWidth()
	final, _ := opts.Tiers.Lookup(opts.FinalTier)

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		img := compose.Page(p, width, find)
		err := out.WritePage(ctx, p.Name(), img)
		observability.Pipeline().OnPage(ctx, p.Name(), p.Height, time.Since(start), err)
		if err != nil {
			return fmt.Errorf("write %s: %w", p.Name(), err)
		}

		opts.Logger.Info("wrote page",
			"page", p.Name(),
			"items", len(p.Placements),
			"length_cm", fmt.Sprintf("%.1f", final.Units(p.Height)),
			"duration", time.Since(start))
		if p.Overflows(opts.PageHeight()) {
			opts.Logger.Warn("page exceeds page length",
				"page", p.Name(),
				"length_cm", fmt.Sprintf("%.1f", final.Units(p.Height)),
				"limit_cm", opts.PageLength)
		}
	}
	return nil
}

// RenderPreview packs items at the preview tier and composes the whole roll
// into one image. The image is nil when items is empty.
func (r *Runner) RenderPreview(ctx context.Context, items []catalog.Item, opts Options) (*image.NRGBA, layout.Roll, error) {
	roll, err := r.Pack(ctx, items, opts.PreviewTier, opts)
	if err != nil {
		return nil, layout.Roll{}, err
	}
	return compose.Roll(roll, lookup(items)), roll, nil
}

// writeSideFiles stores manifest.json and summary.txt.
func writeSideFiles(ctx context.Context, out sink.Sink, res *Result, opts Options) error {
	manifest, err := json.MarshalIndent(NewManifest(res, opts), "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := out.WriteFile(ctx, ManifestName, manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	text := res.Summary.String()
	for _, s := range res.Skipped {
		text += "  skipped " + s.String() + "\n"
	}
	if err := out.WriteFile(ctx, SummaryName, []byte(text)); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
