// Package cache provides the layout and artifact caches used by the
// pipeline.
//
// Three implementations share the [Cache] interface:
//   - FileCache: raw payloads with a JSON header line under a directory, for the CLI
//   - RedisCache: a shared Redis instance, for the HTTP server
//   - NullCache: caching disabled
//
// Keys are derived by a [Keyer] from a content hash of the member list plus
// every option that influences the output, so a cached layout is reused only
// when nothing relevant changed.
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache stores opaque byte values by key.
type Cache interface {
	// Get returns the value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a value. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// LayoutKeyOpts are the options that change a computed layout.
type LayoutKeyOpts struct {
	Strategy      string  `json:"strategy"`
	NodeWidth     float64 `json:"node_width"`
	NodeHeight    float64 `json:"node_height"`
	HorizontalGap float64 `json:"horizontal_gap"`
	VerticalGap   float64 `json:"vertical_gap"`
	SpouseGap     float64 `json:"spouse_gap"`
	BaseY         float64 `json:"base_y"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string `json:"format"`
	ConfigHash string `json:"config_hash,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	ShowYears  bool   `json:"show_years,omitempty"`
	Highlight  bool   `json:"highlight,omitempty"`
	PhotoLinks bool   `json:"photo_links,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies a layout of the member set with membersHash.
	LayoutKey(membersHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every key component.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(membersHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", membersHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
