package pipeline

import (
	"bytes"
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/matzehuels/gangsheet/pkg/asset"
	"github.com/matzehuels/gangsheet/pkg/cache"
	"github.com/matzehuels/gangsheet/pkg/catalog"
	"github.com/matzehuels/gangsheet/pkg/errors"
	"github.com/matzehuels/gangsheet/pkg/observability"
	"github.com/matzehuels/gangsheet/pkg/session"
)

// Input is one design request as it arrives from a user: raw bytes, a
// category and a copy count.
type Input struct {
	Name string

	// Data holds the encoded design. When nil, Open is called instead.
	Data []byte
	Open func() ([]byte, error)

	// Category is used when set; otherwise Label is resolved through the
	// catalog (tags, display names and legacy labels are all accepted).
	Category catalog.Category
	Label    string

	Copies int
}

func (in Input) bytes() ([]byte, error) {
	if in.Data != nil {
		return in.Data, nil
	}
	if in.Open == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "%s has no content", in.Name)
	}
	return in.Open()
}

// InputsFromSession converts accumulated session entries into run inputs.
// File-backed entries are read lazily during the run.
func InputsFromSession(s *session.Session) []Input {
	inputs := make([]Input, 0, s.Len())
	for _, e := range s.Entries {
		inputs = append(inputs, Input{
			Name:     e.Name,
			Data:     e.Data,
			Open:     e.Open,
			Category: e.Category,
			Copies:   e.Copies,
		})
	}
	return inputs
}

// Batch is the decoded and expanded form of a run's inputs.
type Batch struct {
	Items   []catalog.Item
	Skipped []catalog.Rejection
}

// Prepare decodes every input and expands it into items. Problems with one
// input (bad copy count, unknown category, undecodable or empty design) are
// collected in Batch.Skipped and the rest of the batch continues. Only
// cancellation and internal failures abort.
func (r *Runner) Prepare(ctx context.Context, inputs []Input, opts Options) (*Batch, CacheInfo, error) {
	var info CacheInfo
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, info, err
	}
	r.applyLogger(&opts)
	cat := opts.Catalog()

	var (
		reqs    []catalog.Request
		origin  []int // reqs[i] came from inputs[origin[i]]
		skipped []catalog.Rejection
		shared  = make(map[string]*asset.Asset)
	)
	reject := func(i int, err error) {
		skipped = append(skipped, catalog.Rejection{Index: i, Name: inputs[i].Name, Err: err})
		opts.Logger.Warn("skipping design", "name", inputs[i].Name, "reason", errors.UserMessage(err))
	}

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, info, err
		}
		if err := errors.ValidateCopies(in.Copies); err != nil {
			reject(i, err)
			continue
		}
		category := in.Category
		if category == "" {
			c, err := cat.Parse(in.Label)
			if err != nil {
				reject(i, err)
				continue
			}
			category = c
		}

		a, hit, err := r.decode(ctx, in, shared, opts)
		if err != nil {
			if !errors.IsPerRequest(err) {
				return nil, info, err
			}
			reject(i, err)
			continue
		}
		if hit {
			info.AssetHits++
		} else {
			info.AssetMisses++
		}

		reqs = append(reqs, catalog.Request{Name: in.Name, Asset: a, Category: category, Copies: in.Copies})
		origin = append(origin, i)
	}

	items, rejected := cat.Expand(reqs)
	for k := range items {
		items[k].Request = origin[items[k].Request]
	}
	for _, rj := range rejected {
		rj.Index = origin[rj.Index]
		skipped = append(skipped, rj)
		opts.Logger.Warn("skipping design", "name", rj.Name, "reason", errors.UserMessage(rj.Err))
	}
	slices.SortStableFunc(skipped, func(a, b catalog.Rejection) int { return cmp.Compare(a.Index, b.Index) })

	return &Batch{Items: items, Skipped: skipped}, info, nil
}

// decode returns the cropped asset for in, consulting the run-local share
// map and then the cache. The boolean reports a cache hit.
func (r *Runner) decode(ctx context.Context, in Input, shared map[string]*asset.Asset, opts Options) (*asset.Asset, bool, error) {
	start := time.Now()
	data, err := in.bytes()
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeDecodeFailure, err, "read %s", in.Name)
		}
		observability.Pipeline().OnDecode(ctx, in.Name, false, time.Since(start), err)
		return nil, false, err
	}

	hash := cache.Hash(data)
	if a, ok := shared[hash]; ok {
		return a, true, nil
	}

	a, hit, err := r.DecodeWithCacheInfo(ctx, in.Name, data, opts)
	observability.Pipeline().OnDecode(ctx, in.Name, hit, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	shared[hash] = a
	return a, hit, nil
}

// DecodeWithCacheInfo decodes and crops one design, using the cache, and
// reports whether the result came from cache.
func (r *Runner) DecodeWithCacheInfo(ctx context.Context, name string, data []byte, opts Options) (*asset.Asset, bool, error) {
	hash := cache.Hash(data)
	key := r.Keyer.AssetKey(hash)

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if a, err := asset.DecodePNG(hash, name, cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "asset")
				return a, true, nil
			}
			// If deserialization fails, fall through to decode
		}
		observability.Cache().OnCacheMiss(ctx, "asset")
	}

	a, err := asset.Decode(name, bytes.NewReader(data), opts.AssetOptions()...)
	if err != nil {
		return nil, false, err
	}

	// Empty designs are rejected later and have nothing worth caching.
	if !a.Empty() {
		if png, err := a.EncodePNG(); err == nil {
			if err := r.Cache.Set(ctx, key, png, cache.TTLAsset); err == nil {
				observability.Cache().OnCacheSet(ctx, "asset", len(png))
			}
		}
	}
	return a, false, nil
}
