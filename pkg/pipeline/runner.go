package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/gangsheet/pkg/cache"
	"github.com/matzehuels/gangsheet/pkg/errors"
	"github.com/matzehuels/gangsheet/pkg/observability"
	"github.com/matzehuels/gangsheet/pkg/page"
	"github.com/matzehuels/gangsheet/pkg/session"
	"github.com/matzehuels/gangsheet/pkg/sink"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating run logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store run results. Multiple goroutines can safely use the same
// Runner with different inputs and options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If logger is nil, log output is discarded.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete montage and streams its outputs into out:
// preview.png (small batches only), page_01.png ... page_NN.png,
// manifest.json and summary.txt. The caller closes out.
//
// Rejected requests are reported in Result.Skipped. When nothing survives,
// the result is empty, nothing is written and the error is nil.
func (r *Runner) Execute(ctx context.Context, inputs []Input, out sink.Sink, opts Options) (res *Result, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	start := time.Now()
	res = &Result{RunID: uuid.NewString()}
	defer func() {
		res.Stats.Total = time.Since(start)
		observability.Pipeline().OnRunComplete(ctx, len(res.Items), len(res.Pages), len(res.Skipped), res.Stats.Total, err)
	}()

	// Stage 1: Decode and expand
	batch, info, err := r.Prepare(ctx, inputs, opts)
	if err != nil {
		return res, fmt.Errorf("prepare: %w", err)
	}
	res.Items, res.Skipped, res.CacheInfo = batch.Items, batch.Skipped, info
	res.Stats.DecodeTime = time.Since(start)

	opts.Logger.Info("prepared designs",
		"requests", len(inputs),
		"items", len(res.Items),
		"skipped", len(res.Skipped),
		"cached", info.AssetHits,
		"duration", res.Stats.DecodeTime)

	if res.Empty() {
		opts.Logger.Warn("no printable designs", "code", errors.ErrCodeEmptyResult, "skipped", len(res.Skipped))
		return res, nil
	}

	// Stage 2: Preview
	if opts.WantsPreview(len(res.Items)) {
		previewStart := time.Now()
		img, roll, err := r.RenderPreview(ctx, res.Items, opts)
		if err != nil {
			return res, fmt.Errorf("preview: %w", err)
		}
		if err := out.WritePage(ctx, PreviewName, img); err != nil {
			return res, fmt.Errorf("write preview: %w", err)
		}
		res.Preview = &roll
		res.Stats.PreviewTime = time.Since(previewStart)
	} else {
		opts.Logger.Debug("skipping preview", "items", len(res.Items), "limit", opts.PreviewMaxItems)
	}

	// Stage 3: Pack final tier and paginate
	packStart := time.Now()
	roll, hit, err := r.PackWithCacheInfo(ctx, res.Items, opts.FinalTier, opts)
	if err != nil {
		return res, fmt.Errorf("pack: %w", err)
	}
	res.Final = roll
	res.CacheInfo.LayoutHit = hit
	res.Pages = page.Split(roll, opts.PageHeight())
	res.Stats.PackTime = time.Since(packStart)

	for _, i := range roll.Oversized {
		opts.Logger.Warn("design wider than roll",
			"code", errors.ErrCodeOversizedItem,
			"name", res.Items[i].Name,
			"category", res.Items[i].Category)
	}

	// Stage 4: Compose pages
	composeStart := time.Now()
	if err := r.RenderPages(ctx, roll, res.Pages, res.Items, out, opts); err != nil {
		return res, fmt.Errorf("compose: %w", err)
	}
	res.Stats.ComposeTime = time.Since(composeStart)

	final, _ := opts.Tiers.Lookup(opts.FinalTier)
	res.Summary = NewSummary(roll, final, res.Pages, opts.PageHeight(), len(res.Skipped))
	if err := writeSideFiles(ctx, out, res, opts); err != nil {
		return res, err
	}

	opts.Logger.Info("montage complete",
		"length_cm", fmt.Sprintf("%.1f", res.Summary.Length),
		"pages", res.Summary.Pages,
		"duration", time.Since(start))

	return res, nil
}

// ExecuteSession runs the montage for every entry accumulated in s. The
// session is not modified; callers reset it when the batch is done.
func (r *Runner) ExecuteSession(ctx context.Context, s *session.Session, out sink.Sink, opts Options) (*Result, error) {
	return r.Execute(ctx, InputsFromSession(s), out, opts)
}

// Preview decodes inputs and renders only the preview-tier roll. Batches at
// or above the preview item limit are refused, and a batch with nothing
// printable fails with EMPTY_RESULT. The result is returned in both cases so
// callers can report the rejections.
func (r *Runner) Preview(ctx context.Context, inputs []Input, opts Options) (*image.NRGBA, *Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	batch, info, err := r.Prepare(ctx, inputs, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("prepare: %w", err)
	}
	res := &Result{RunID: uuid.NewString(), Items: batch.Items, Skipped: batch.Skipped, CacheInfo: info}
	if res.Empty() {
		return nil, res, errors.New(errors.ErrCodeEmptyResult, "no printable designs (%d skipped)", len(res.Skipped))
	}
	if len(res.Items) >= opts.PreviewMaxItems {
		return nil, res, errors.New(errors.ErrCodeInvalidRequest,
			"%d items is above the preview limit of %d", len(res.Items), opts.PreviewMaxItems-1)
	}

	img, roll, err := r.RenderPreview(ctx, res.Items, opts)
	if err != nil {
		return nil, res, fmt.Errorf("preview: %w", err)
	}
	res.Preview = &roll

	t, _ := opts.Tiers.Lookup(opts.PreviewTier)
	res.Summary = NewSummary(roll, t, nil, 0, len(res.Skipped))
	return img, res, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
