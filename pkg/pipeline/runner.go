package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/store"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// ExecuteStore loads members and view configuration from s and runs the
// pipeline on them.
func (r *Runner) ExecuteStore(ctx context.Context, s store.Store, opts Options) (*Result, error) {
	members, err := s.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	values, err := s.Config(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return r.Execute(ctx, members, values, opts)
}

// Execute runs the complete layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, members []family.Member, values viewconfig.Values, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Members:     members,
		MembersHash: MemberKey(members),
	}

	result.Config, result.ConfigProblems = viewconfig.Parse(values)
	for _, p := range result.ConfigProblems {
		opts.Logger.Warn("ignoring view setting", "problem", p)
	}

	// Stage 1: Layout
	layoutStart := time.Now()
	res, layoutHit, err := r.LayoutWithCacheInfo(ctx, members, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.Connectors = layout.Connectors(members, res)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.MemberCount = res.Len()
	result.Stats.ConnectorCount = len(result.Connectors)
	result.Stats.ProblemCount = len(res.Problems)
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"members", res.Len(),
		"connectors", len(result.Connectors),
		"strategy", res.Strategy,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	scene := render.NewScene(members, res, result.Connectors, result.Config, float64(opts.Width), float64(opts.Height))
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, scene, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo computes a layout with caching and returns cache hit info.
// Recovered reference problems are logged at debug level and attached to
// the result whether or not it came from cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, members []family.Member, opts Options) (layout.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, false, err
	}

	x := family.NewIndex(members)
	for _, p := range x.Problems() {
		opts.Logger.Debug("recovered member reference", "problem", p)
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Layout.Strategy, x.Len())
	start := time.Now()

	cacheKey := r.Keyer.LayoutKey(MemberKey(members), opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				cached.Problems = x.Problems()
				observability.Cache().OnCacheHit(ctx, "layout")
				hooks.OnLayoutComplete(ctx, cached.Strategy, cached.Len(), time.Since(start), nil)
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	res := layout.ComputeIndex(x, opts.Layout)
	hooks.OnLayoutComplete(ctx, res.Strategy, res.Len(), time.Since(start), nil)

	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			opts.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return res, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, members []family.Member, opts Options) (layout.Result, error) {
	res, _, err := r.LayoutWithCacheInfo(ctx, members, opts)
	return res, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, scene render.Scene, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Compute cache key from layout and config data
	sceneHash, configHash, err := sceneHashes(scene)
	if err != nil {
		return nil, false, fmt.Errorf("serialize scene for cache key: %w", err)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := !opts.Refresh
	for _, format := range opts.Formats {
		if !allCached {
			break
		}
		key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format, configHash))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := r.renderFormat(ctx, scene, format, opts)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		rendered[format] = data

		key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format, configHash))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, scene render.Scene, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, scene, opts)
	return artifacts, err
}

func (r *Runner) renderFormat(ctx context.Context, scene render.Scene, format string, opts Options) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()
	data, err := render.Render(ctx, scene, format, opts.SVGOptions()...)
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	return data, err
}

// sceneHashes returns content hashes of the laid-out scene (positions,
// connectors, member labels and transforms) and of its view configuration.
func sceneHashes(s render.Scene) (string, string, error) {
	data, err := render.LayoutJSON(s)
	if err != nil {
		return "", "", err
	}
	cfg, err := json.Marshal(s.Config.Values())
	if err != nil {
		return "", "", err
	}
	return cache.Hash(data), cache.Hash(cfg), nil
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
}
