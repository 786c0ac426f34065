// Package pkg provides the core libraries for gangsheet, a montage engine for
// DTF (direct-to-film) transfer printing.
//
// # Overview
//
// A print shop receives designs together with a garment placement (back,
// front logo, ...) and a number of copies. gangsheet scales every copy to the
// physical width of its placement, packs the copies onto a fixed-width roll
// so that the roll is as short as possible, and cuts the roll into pages that
// fit the printer. The pkg directory is organized into four areas:
//
//  1. Domain: [catalog], [asset], [tier], [layout], [page], [compose]
//  2. Orchestration: [pipeline]
//  3. Outputs: [sink], [storage]
//  4. Infrastructure: [cache], [session], [observability], [errors], [buildinfo]
//
// # Architecture
//
// The data flow of one run:
//
//	designs + category + copies
//	         ↓
//	    [asset] package (decode, crop to visible pixels)
//	         ↓
//	    [catalog] package (resolve category, expand copies into items)
//	         ↓
//	    [layout] package (shelf packing at a resolution tier)
//	         ↓
//	    [page] package (cut the roll at shelf boundaries)
//	         ↓
//	    [compose] package (draw one page at a time)
//	         ↓
//	    [sink] package (zip archive or directory of PNG pages)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	inputs := []pipeline.Input{
//	    {Name: "back.png", Data: backPNG, Label: "Espalda (22.5 cm)", Copies: 12},
//	    {Name: "logo.png", Data: logoPNG, Label: "front-7", Copies: 40},
//	}
//	z := sink.NewZip(f)
//	res, err := runner.Execute(ctx, inputs, z, pipeline.Options{})
//	z.Close()
//
// # Main Packages
//
// ## Domain
//
// [catalog] - Design categories and their physical widths. Parses user
// labels (tags, display names, legacy labels) and expands requests into one
// item per copy, rejecting bad requests individually.
//
// [asset] - Decoding (PNG, JPEG, GIF, WebP, BMP, TIFF), alpha-bounds cropping
// and Lanczos resizing. Decoded assets are immutable and shared by all copies.
//
// [tier] - Resolution tiers that convert centimetres to pixels. A run packs
// at a cheap preview tier and at the final print tier.
//
// [layout] - Shelf packing. Items are placed left to right in input order,
// opening a new shelf when the next one does not fit.
//
// [page] - Pagination. Pages break only between shelves, so no design is
// ever cut in half.
//
// [compose] - Alpha compositing onto transparent canvases, one page buffer
// at a time.
//
// ## Orchestration
//
// [pipeline] - The complete run (decode → expand → pack → paginate → compose)
// used by the CLI and the HTTP server, with caching of decoded designs and
// layouts.
//
// ## Outputs
//
// [sink] - Where pages go: zip archive, directory or memory.
//
// [storage] - Publishing finished archives to S3-compatible object storage.
//
// ## Infrastructure
//
// [cache] - Byte caches for decoded designs and layouts: null, file and
// Redis backends.
//
// [session] - Designs accumulated across several calls before one run.
//
// [observability] - Hooks for metrics and tracing, no-ops by default.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/layout/...   # Specific package
//	go test -run Example       # Examples only
//
// Redis-backed tests run only when GANGSHEET_TEST_REDIS is set.
//
// [catalog]: https://pkg.go.dev/github.com/matzehuels/gangsheet/pkg/catalog
// [asset]: https://pkg.go.dev/github.com/matzehuels/gangsheet/pkg/asset
// [tier]: https://pkg.go.dev/github.com/matzehuels/gangsheet/pkg/tier
// [layout]: https://pkg.go.dev/github.com/matzehuels/gangsheet/pkg/layout
// [page]: https://pkg.go.dev/github.com/matzehuels/gangsheet/pkg/page
// [compose]: https://pkg.go.dev/github.com/matzehuels/gangsheet/pkg/compose
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/gangsheet/pkg/pipeline
// [sink]: https://pkg.go.dev/github.com/matzehuels/gangsheet/pkg/sink
// [storage]: https://pkg.go.dev/github.com/matzehuels/gangsheet/pkg/storage
// [cache]: https://pkg.go.dev/github.com/matzehuels/gangsheet/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/gangsheet/pkg/session
// [observability]: https://pkg.go.dev/github.com/matzehuels/gangsheet/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/gangsheet/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/gangsheet/pkg/buildinfo
package pkg
