// Package pipeline provides the layout and render pipeline shared by the CLI
// and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read members and view configuration from a store
//  2. Layout: compute node positions and connector polylines
//  3. Render: generate output in the requested formats (SVG, JSON, DOT, ...)
//
// Layouts and artifacts are cached by content hash, so an unchanged member
// list with unchanged options is never laid out twice.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.ExecuteStore(ctx, st, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Layout layout.Options `json:"layout"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Width      int      `json:"width,omitempty"`
	Height     int      `json:"height,omitempty"`
	NoYears    bool     `json:"no_years,omitempty"`
	Highlight  bool     `json:"highlight,omitempty"`
	PhotoLinks bool     `json:"photo_links,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Members is the loaded member list.
	Members []family.Member

	// MembersHash is the content hash of the member list.
	MembersHash string

	// Layout contains node positions and bounds.
	Layout layout.Result

	// Connectors are the polylines between member boxes.
	Connectors []layout.Connector

	// Config is the parsed view configuration.
	Config viewconfig.Config

	// ConfigProblems lists malformed configuration values that fell back to
	// defaults.
	ConfigProblems []error

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	MemberCount    int
	ConnectorCount int
	ProblemCount   int
	LayoutTime     time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if _, err := render.ParseFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates the full pipeline.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	o.Layout.SetDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := o.Layout.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid layout options")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	for i, f := range o.Formats {
		if p, err := render.ParseFormat(f); err == nil {
			o.Formats[i] = p
		}
	}
	if o.Width <= 0 {
		o.Width = render.DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = render.DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// SVGOptions translates the render flags into render.SVGOption values.
func (o *Options) SVGOptions() []render.SVGOption {
	var opts []render.SVGOption
	if o.NoYears {
		opts = append(opts, render.WithoutYears())
	}
	if o.Highlight {
		opts = append(opts, render.WithHighlight())
	}
	if o.PhotoLinks {
		opts = append(opts, render.WithPhotoLinks())
	}
	return opts
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Strategy:      o.Layout.Strategy,
		NodeWidth:     o.Layout.NodeWidth,
		NodeHeight:    o.Layout.NodeHeight,
		HorizontalGap: o.Layout.HorizontalGap,
		VerticalGap:   o.Layout.VerticalGap,
		SpouseGap:     o.Layout.SpouseGap,
		BaseY:         o.Layout.BaseY,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format, configHash string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		ConfigHash: configHash,
		Width:      o.Width,
		Height:     o.Height,
		ShowYears:  !o.NoYears,
		Highlight:  o.Highlight,
		PhotoLinks: o.PhotoLinks,
	}
}

// MemberKey is the content hash of a member list. Lists with the same members
// in any order share a key.
func MemberKey(members []family.Member) string {
	return cache.Hash(family.Canonical(members))
}
