package layout

import (
	"fmt"
	"slices"
)

// Default layout dimensions in tree-space units.
const (
	DefaultNodeWidth     = 160.0
	DefaultNodeHeight    = 80.0
	DefaultHorizontalGap = 40.0
	DefaultVerticalGap   = 100.0
	DefaultSpouseGap     = 30.0
)

// Strategy names.
const (
	StrategySubtree = "subtree"
	StrategyRows    = "rows"
)

// DefaultStrategy is used when Options.Strategy is empty.
const DefaultStrategy = StrategySubtree

// StrategyNames lists the accepted values for Options.Strategy.
var StrategyNames = []string{StrategySubtree, StrategyRows}

// Options configures a layout computation.
type Options struct {
	NodeWidth     float64 `json:"node_width" toml:"node_width"`
	NodeHeight    float64 `json:"node_height" toml:"node_height"`
	HorizontalGap float64 `json:"horizontal_gap" toml:"horizontal_gap"`
	VerticalGap   float64 `json:"vertical_gap" toml:"vertical_gap"`
	SpouseGap     float64 `json:"spouse_gap" toml:"spouse_gap"`
	BaseY         float64 `json:"base_y" toml:"base_y"`
	Strategy      string  `json:"strategy" toml:"strategy"`
}

// DefaultOptions returns Options with every default applied.
func DefaultOptions() Options {
	var o Options
	o.SetDefaults()
	return o
}

// SetDefaults fills zero-valued dimensions and the strategy with defaults.
// BaseY keeps its value; zero is a valid origin.
func (o *Options) SetDefaults() {
	if o.NodeWidth == 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.HorizontalGap == 0 {
		o.HorizontalGap = DefaultHorizontalGap
	}
	if o.VerticalGap == 0 {
		o.VerticalGap = DefaultVerticalGap
	}
	if o.SpouseGap == 0 {
		o.SpouseGap = DefaultSpouseGap
	}
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
}

// Validate checks dimensions and the strategy name.
func (o Options) Validate() error {
	if o.NodeWidth <= 0 || o.NodeHeight <= 0 {
		return fmt.Errorf("node size must be positive, got %gx%g", o.NodeWidth, o.NodeHeight)
	}
	if o.HorizontalGap < 0 || o.VerticalGap < 0 || o.SpouseGap < 0 {
		return fmt.Errorf("gaps must not be negative")
	}
	if o.Strategy != "" && !slices.Contains(StrategyNames, o.Strategy) {
		return fmt.Errorf("unknown layout strategy %q (valid: %v)", o.Strategy, StrategyNames)
	}
	return nil
}

// rowHeight is the vertical distance between two generation rows.
func (o Options) rowHeight() float64 { return o.NodeHeight + o.VerticalGap }

// rowY returns the top y of a zero-based row.
func (o Options) rowY(row int) float64 { return o.BaseY + float64(row)*o.rowHeight() }
