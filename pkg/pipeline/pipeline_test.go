package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/gangsheet/pkg/cache"
	"github.com/matzehuels/gangsheet/pkg/catalog"
	"github.com/matzehuels/gangsheet/pkg/errors"
	"github.com/matzehuels/gangsheet/pkg/session"
	"github.com/matzehuels/gangsheet/pkg/sink"
	"github.com/matzehuels/gangsheet/pkg/tier"
)

// =============================================================================
// Fixtures
// =============================================================================

// smallOptions keeps test canvases tiny: a 20 cm roll at 1 and 2 px/cm, a
// 4 cm "logo" category and a 30 cm "wide" one that never fits the roll.
func smallOptions() Options {
	return Options{
		RollWidth:  20,
		Spacing:    Centimetres(1),
		PageLength: 10,
		Tiers: tier.Set{
			{Name: tier.Preview, PixelsPerUnit: 1},
			{Name: tier.Final, PixelsPerUnit: 2},
		},
		Categories: []catalog.Entry{
			{Category: "logo", Width: 4, Aliases: []string{"Logo (4 cm)"}},
			{Category: "wide", Width: 30},
		},
	}
}

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	data, err := sink.EncodePNG(imaging.New(w, h, c))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return data
}

var red = color.NRGBA{R: 255, A: 255}

// =============================================================================
// Options
// =============================================================================

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}

	if opts.RollWidth != DefaultRollWidth || opts.SpacingCM() != DefaultSpacing || opts.PageLength != DefaultPageLength {
		t.Errorf("geometry = %v/%v/%v, want defaults", opts.RollWidth, opts.SpacingCM(), opts.PageLength)
	}
	if opts.PreviewMaxItems != DefaultPreviewMaxItems {
		t.Errorf("PreviewMaxItems = %d, want %d", opts.PreviewMaxItems, DefaultPreviewMaxItems)
	}
	if opts.Catalog() == nil {
		t.Fatal("Catalog() should be built after validation")
	}
	if w, _ := opts.Catalog().Width(catalog.Back); w != 22.5 {
		t.Errorf("back width = %v, want 22.5", w)
	}

	geo := opts.Geometry(tier.Final)
	if geo.Width != 6496 || geo.Spacing != 59 {
		t.Errorf("final geometry = %d/%d, want 6496/59", geo.Width, geo.Spacing)
	}
	if got := opts.PageHeight(); got != 11811 {
		t.Errorf("PageHeight() = %d, want 11811", got)
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call error: %v", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"negative roll width", func(o *Options) { o.RollWidth = -1 }},
		{"negative spacing", func(o *Options) { o.Spacing = Centimetres(-0.5) }},
		{"unknown preview tier", func(o *Options) { o.PreviewTier = "draft" }},
		{"unknown final tier", func(o *Options) { o.FinalTier = "print" }},
		{"bad tier", func(o *Options) { o.Tiers = tier.Set{{Name: "final", PixelsPerUnit: 0}} }},
		{"negative preview limit", func(o *Options) { o.PreviewMaxItems = -1 }},
		{"negative asset limit", func(o *Options) { o.MaxAssetBytes = -1 }},
		{"bad category", func(o *Options) { o.Categories = []catalog.Entry{{Category: "x", Width: -2}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := smallOptions()
			tt.modify(&opts)
			err := opts.ValidateAndSetDefaults()
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestPageHeightUnbounded(t *testing.T) {
	opts := smallOptions()
	opts.PageLength = -1
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if got := opts.PageHeight(); got != 0 {
		t.Errorf("PageHeight() = %d, want 0", got)
	}
}

func TestWantsPreview(t *testing.T) {
	opts := Options{PreviewMaxItems: 300}
	tests := []struct {
		n    int
		want bool
	}{
		{0, false},
		{1, true},
		{299, true},
		{300, false},
		{1000, false},
	}
	for _, tt := range tests {
		if got := opts.WantsPreview(tt.n); got != tt.want {
			t.Errorf("WantsPreview(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}

	opts.SkipPreview = true
	if opts.WantsPreview(1) {
		t.Error("SkipPreview should disable the preview")
	}
}

// =============================================================================
// Config files
// =============================================================================

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"run.toml": `
roll_width = 58
page_length = 150

[[categories]]
category = "sleeve"
width = 9
aliases = ["Manga (9 cm)"]
`,
		"run.yaml": `
roll_width: 58
page_length: 150
categories:
  - category: sleeve
    width: 9
    aliases: ["Manga (9 cm)"]
`,
		"run.json": `{"roll_width": 58, "page_length": 150,
 "categories": [{"category": "sleeve", "width": 9, "aliases": ["Manga (9 cm)"]}]}`,
	}

	want := []catalog.Entry{{Category: "sleeve", Width: 9, Aliases: []string{"Manga (9 cm)"}}}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			opts, err := LoadOptions(path)
			if err != nil {
				t.Fatalf("LoadOptions() error: %v", err)
			}
			if opts.RollWidth != 58 || opts.PageLength != 150 {
				t.Errorf("geometry = %v/%v, want 58/150", opts.RollWidth, opts.PageLength)
			}
			if diff := cmp.Diff(want, opts.Categories); diff != "" {
				t.Errorf("categories mismatch (-want +got):\n%s", diff)
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				t.Fatalf("loaded options invalid: %v", err)
			}
			if got, err := opts.Catalog().Parse("manga (9 CM)"); err != nil || got != "sleeve" {
				t.Errorf("Parse(alias) = %q, %v", got, err)
			}
		})
	}
}

func TestLoadZeroSpacing(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"run.toml": "spacing = 0.0\n",
		"run.yaml": "spacing: 0\n",
		"run.json": `{"spacing": 0}`,
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			opts, err := LoadOptions(path)
			if err != nil {
				t.Fatalf("LoadOptions() error: %v", err)
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				t.Fatalf("ValidateAndSetDefaults() error: %v", err)
			}
			if got := opts.SpacingCM(); got != 0 {
				t.Errorf("SpacingCM() = %v, want 0", got)
			}
			if got := opts.Geometry(tier.Final).Spacing; got != 0 {
				t.Errorf("final spacing = %d px, want 0", got)
			}
		})
	}

	// Unset still means the default.
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if got := opts.Geometry(tier.Final).Spacing; got != 59 {
		t.Errorf("default final spacing = %d px, want 59", got)
	}
}

func TestLoadExampleConfigs(t *testing.T) {
	tests := []struct {
		file       string
		rollWidth  float64
		categories int
		unbounded  bool
	}{
		{"gangsheet.toml", 58, 4, false},
		{"gangsheet.yaml", 30, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			opts, err := LoadOptions(filepath.Join("..", "..", "examples", "config", tt.file))
			if err != nil {
				t.Fatalf("LoadOptions() error: %v", err)
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				t.Fatalf("ValidateAndSetDefaults() error: %v", err)
			}
			if opts.RollWidth != tt.rollWidth {
				t.Errorf("RollWidth = %v, want %v", opts.RollWidth, tt.rollWidth)
			}
			if n := len(opts.Catalog().Entries()); n != tt.categories {
				t.Errorf("categories = %d, want %d", n, tt.categories)
			}
			if got := opts.PageHeight() == 0; got != tt.unbounded {
				t.Errorf("unbounded pages = %v, want %v", got, tt.unbounded)
			}
		})
	}
}

func TestLoadOptionsErrors(t *testing.T) {
	dir := t.TempDir()
	ini := filepath.Join(dir, "run.ini")
	broken := filepath.Join(dir, "broken.toml")
	os.WriteFile(ini, []byte("x=1"), 0o644)
	os.WriteFile(broken, []byte("roll_width = ="), 0o644)

	for _, path := range []string{ini, broken, filepath.Join(dir, "missing.yaml")} {
		if _, err := LoadOptions(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("LoadOptions(%s) error = %v, want %s", filepath.Base(path), err, errors.ErrCodeInvalidConfig)
		}
	}
}

// =============================================================================
// Prepare
// =============================================================================

func TestPrepareRejections(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	good := pngBytes(t, 10, 10, red)

	inputs := []Input{
		{Name: "a.png", Data: good, Label: "Logo (4 cm)", Copies: 2},
		{Name: "zero.png", Data: good, Label: "logo", Copies: 0},
		{Name: "sleeve.png", Data: good, Label: "sleeve", Copies: 1},
		{Name: "garbage.png", Data: []byte("not an image"), Label: "logo", Copies: 1},
		{Name: "clear.png", Data: pngBytes(t, 10, 10, color.NRGBA{}), Label: "logo", Copies: 1},
		{Name: "b.png", Data: good, Category: "logo", Copies: 1},
		{Name: "nothing.png", Label: "logo", Copies: 1},
	}

	batch, info, err := r.Prepare(ctx, inputs, smallOptions())
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}

	if len(batch.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(batch.Items))
	}
	var requests []int
	for _, it := range batch.Items {
		requests = append(requests, it.Request)
	}
	if diff := cmp.Diff([]int{0, 0, 5}, requests); diff != "" {
		t.Errorf("item requests mismatch (-want +got):\n%s", diff)
	}

	want := []struct {
		index int
		code  errors.Code
	}{
		{1, errors.ErrCodeInvalidRequest},
		{2, errors.ErrCodeInvalidCategory},
		{3, errors.ErrCodeDecodeFailure},
		{4, errors.ErrCodeEmptyAsset},
		{6, errors.ErrCodeInvalidRequest},
	}
	if len(batch.Skipped) != len(want) {
		t.Fatalf("skipped = %v, want %d entries", batch.Skipped, len(want))
	}
	for i, w := range want {
		s := batch.Skipped[i]
		if s.Index != w.index || !errors.Is(s.Err, w.code) {
			t.Errorf("skipped[%d] = #%d %v, want #%d %s", i, s.Index, s.Err, w.index, w.code)
		}
		if s.Name != inputs[w.index].Name {
			t.Errorf("skipped[%d].Name = %q, want %q", i, s.Name, inputs[w.index].Name)
		}
	}

	// a.png and b.png share bytes: decoded once, reused once.
	if info.AssetMisses != 2 || info.AssetHits != 1 {
		t.Errorf("cache info = %+v, want 2 misses (a, clear) and 1 hit", info)
	}
	if batch.Items[0].Asset != batch.Items[2].Asset {
		t.Error("identical uploads should share one decoded asset")
	}
}

func TestPrepareCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(nil, nil, nil)
	_, _, err := r.Prepare(ctx, []Input{{Name: "a.png", Data: []byte("x"), Label: "logo", Copies: 1}}, smallOptions())
	if err != context.Canceled {
		t.Errorf("Prepare() error = %v, want context.Canceled", err)
	}
}

// =============================================================================
// Scale and Pack
// =============================================================================

func TestScale(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	batch, _, err := r.Prepare(context.Background(), []Input{
		{Name: "tall.png", Data: pngBytes(t, 10, 25, red), Label: "logo", Copies: 1},
	}, smallOptions())
	if err != nil {
		t.Fatal(err)
	}

	final := Scale(batch.Items, tier.Tier{Name: "final", PixelsPerUnit: 2})
	preview := Scale(batch.Items, tier.Tier{Name: "preview", PixelsPerUnit: 1})
	if final[0].W != 8 || final[0].H != 20 {
		t.Errorf("final box = %+v, want 8x20", final[0])
	}
	if preview[0].W != 4 || preview[0].H != 10 {
		t.Errorf("preview box = %+v, want 4x10", preview[0])
	}
}

// =============================================================================
// Execute
// =============================================================================

func logoInputs(t *testing.T, copies int) []Input {
	return []Input{{Name: "logo.png", Data: pngBytes(t, 10, 10, red), Label: "logo", Copies: copies}}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil {
		t.Fatal("NewRunner(nil, nil, nil) should fill cache and keyer")
	}
	if r.Logger == nil || r.Logger == log.Default() {
		t.Error("NewRunner without a logger should discard output, not use the default logger")
	}
}

func TestManifestNamesIdenticalUploads(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	out := sink.NewMemory()
	data := pngBytes(t, 10, 10, red)

	inputs := []Input{
		{Name: "order-17.png", Data: data, Label: "logo", Copies: 1},
		{Name: "order-42.png", Data: data, Label: "logo", Copies: 1},
	}
	res, err := r.Execute(ctx, inputs, out, smallOptions())
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Items[0].Asset != res.Items[1].Asset {
		t.Error("identical uploads should share one decoded asset")
	}

	var m Manifest
	raw, _ := out.Get(ManifestName)
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("manifest: %v", err)
	}
	var names []string
	for _, p := range m.Pages {
		for _, pl := range p.Placements {
			names = append(names, pl.Name)
		}
	}
	if diff := cmp.Diff([]string{"order-17.png", "order-42.png"}, names); diff != "" {
		t.Errorf("manifest names mismatch (-want +got):\n%s", diff)
	}
}

func TestExecutePaginates(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	out := sink.NewMemory()

	// 10 logos at 8x8 px on a 40 px roll with 2 px spacing: shelves of
	// 4, 4 and 2 at y = 0, 10, 20. A 20 px page holds the first two.
	res, err := r.Execute(ctx, logoInputs(t, 10), out, smallOptions())
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.RunID == "" {
		t.Error("RunID should be set")
	}
	if len(res.Items) != 10 || len(res.Final.Shelves) != 3 {
		t.Fatalf("items/shelves = %d/%d, want 10/3", len(res.Items), len(res.Final.Shelves))
	}
	if len(res.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(res.Pages))
	}
	if res.Pages[1].Origin != 20 || res.Pages[1].Height != 8 {
		t.Errorf("page 2 origin/height = %d/%d, want 20/8", res.Pages[1].Origin, res.Pages[1].Height)
	}

	want := []string{"preview.png", "page_01.png", "page_02.png", ManifestName, SummaryName}
	if diff := cmp.Diff(want, out.Names()); diff != "" {
		t.Errorf("sink files mismatch (-want +got):\n%s", diff)
	}

	data, _ := out.Get("page_01.png")
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 40, 18) {
		t.Errorf("page_01 bounds = %v, want 40x18", img.Bounds())
	}

	if res.Summary.Length != 14 || res.Summary.Pages != 2 {
		t.Errorf("summary = %+v, want 14 cm over 2 pages", res.Summary)
	}

	var m Manifest
	raw, _ := out.Get(ManifestName)
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if m.RunID != res.RunID || len(m.Pages) != 2 || len(m.Pages[0].Placements) != 8 {
		t.Errorf("manifest = run %s, %d pages", m.RunID, len(m.Pages))
	}
	if m.WidthPx != 40 || m.SpacingPx != 2 {
		t.Errorf("manifest geometry = %d/%d, want 40/2", m.WidthPx, m.SpacingPx)
	}
}

func TestExecuteEmptyRun(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	out := sink.NewMemory()

	res, err := r.Execute(context.Background(), []Input{
		{Name: "zero.png", Data: pngBytes(t, 4, 4, red), Label: "logo", Copies: 0},
		{Name: "clear.png", Data: pngBytes(t, 4, 4, color.NRGBA{}), Label: "logo", Copies: 3},
	}, out, smallOptions())
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !res.Empty() {
		t.Error("result should be empty")
	}
	if len(res.Skipped) != 2 {
		t.Errorf("skipped = %d, want 2", len(res.Skipped))
	}
	if names := out.Names(); len(names) != 0 {
		t.Errorf("empty run wrote %v", names)
	}
}

func TestExecuteSkipsPreviewForLargeBatches(t *testing.T) {
	opts := smallOptions()
	opts.PreviewMaxItems = 5

	r := NewRunner(nil, nil, nil)
	out := sink.NewMemory()
	res, err := r.Execute(context.Background(), logoInputs(t, 5), out, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Preview != nil {
		t.Error("5 items at a limit of 5 should get no preview")
	}
	if _, ok := out.Get("preview.png"); ok {
		t.Error("preview.png should not be written")
	}
}

func TestExecuteOversized(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	out := sink.NewMemory()

	res, err := r.Execute(context.Background(), []Input{
		{Name: "banner.png", Data: pngBytes(t, 30, 3, red), Label: "wide", Copies: 1},
		{Name: "logo.png", Data: pngBytes(t, 10, 10, red), Label: "logo", Copies: 1},
	}, out, smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0}, res.Final.Oversized); diff != "" {
		t.Errorf("oversized mismatch (-want +got):\n%s", diff)
	}
	if res.Summary.Oversized != 1 {
		t.Errorf("summary oversized = %d, want 1", res.Summary.Oversized)
	}

	data, _ := out.Get("page_01.png")
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 60 {
		t.Errorf("page width = %d, want 60 so the banner is not clipped", img.Bounds().Dx())
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(ctx, logoInputs(t, 1), sink.NewMemory(), smallOptions())
	if err == nil {
		t.Error("Execute() with cancelled context should fail")
	}
}

func TestExecuteUsesCache(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)

	first, err := r.Execute(ctx, logoInputs(t, 6), sink.NewMemory(), smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.AssetHits != 0 || first.CacheInfo.LayoutHit {
		t.Errorf("cold run cache info = %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, logoInputs(t, 6), sink.NewMemory(), smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheInfo.AssetHits != 1 || !second.CacheInfo.LayoutHit {
		t.Errorf("warm run cache info = %+v, want 1 asset hit and a layout hit", second.CacheInfo)
	}
	if diff := cmp.Diff(first.Final, second.Final); diff != "" {
		t.Errorf("cached roll differs (-cold +warm):\n%s", diff)
	}

	opts := smallOptions()
	opts.Refresh = true
	third, err := r.Execute(ctx, logoInputs(t, 6), sink.NewMemory(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.AssetHits != 0 || third.CacheInfo.LayoutHit {
		t.Errorf("refresh run cache info = %+v, want no hits", third.CacheInfo)
	}
}

func TestExecuteSession(t *testing.T) {
	s := session.New(session.DefaultTTL)
	if _, err := s.Add(session.Entry{Name: "a.png", Data: pngBytes(t, 10, 10, red), Category: "logo", Copies: 3}); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "b.png")
	if err := os.WriteFile(path, pngBytes(t, 20, 10, red), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(session.Entry{Name: "b.png", Path: path, Category: "logo", Copies: 2}); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(nil, nil, nil)
	res, err := r.ExecuteSession(context.Background(), s, sink.NewMemory(), smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 5 {
		t.Errorf("items = %d, want 5", len(res.Items))
	}
	if s.Len() != 2 {
		t.Error("running a session should not modify it")
	}
}

// =============================================================================
// Preview
// =============================================================================

func TestPreview(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	img, res, err := r.Preview(context.Background(), logoInputs(t, 4), smallOptions())
	if err != nil {
		t.Fatalf("Preview() error: %v", err)
	}
	// 4 logos at 4x4 px fit one 20 px shelf at preview resolution.
	if img.Bounds() != image.Rect(0, 0, 20, 4) {
		t.Errorf("preview bounds = %v, want 20x4", img.Bounds())
	}
	if res.Preview == nil || len(res.Pages) != 0 {
		t.Error("preview result should carry the preview roll and no pages")
	}
}

func TestPreviewLimits(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := smallOptions()
	opts.PreviewMaxItems = 3

	if _, _, err := r.Preview(context.Background(), logoInputs(t, 3), opts); !errors.Is(err, errors.ErrCodeInvalidRequest) {
		t.Errorf("Preview(3 items, limit 3) error = %v, want %s", err, errors.ErrCodeInvalidRequest)
	}

	_, res, err := r.Preview(context.Background(), logoInputs(t, 0), smallOptions())
	if !errors.Is(err, errors.ErrCodeEmptyResult) {
		t.Errorf("Preview(empty) error = %v, want %s", err, errors.ErrCodeEmptyResult)
	}
	if res == nil || len(res.Skipped) != 1 {
		t.Error("empty preview should still report rejections")
	}
}

// =============================================================================
// Summary
// =============================================================================

func TestSummaryString(t *testing.T) {
	s := Summary{Length: 123.46, Meters: 1.2346, Pages: 2, Items: 10, Shelves: 3, Skipped: 1}
	want := "Total length: 123.5 cm (1.23 m)\n" +
		"Pages: 2\n" +
		"Items: 10 on 3 shelves\n" +
		"Skipped requests: 1\n"
	if diff := cmp.Diff(want, s.String()); diff != "" {
		t.Errorf("String() mismatch (-want +got):\n%s", diff)
	}
}
