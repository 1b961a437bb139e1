package pipeline

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/store/memory"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

// mapCache is an in-memory cache.Cache for tests.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]byte)} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) Close() error { return nil }

func family3() []family.Member {
	return []family.Member{
		{ID: "1", Name: "Karl", Gender: family.GenderMale, Generation: 1, SpouseID: "2"},
		{ID: "2", Name: "Anna", Gender: family.GenderFemale, Generation: 1, SpouseID: "1"},
		{ID: "3", Name: "Clara", Generation: 2, FatherID: "1", MotherID: "2"},
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Invalid format should fail with INVALID_FORMAT, got %v", err)
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Formats: []string{" SVG "}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Layout.Strategy != layout.DefaultStrategy || opts.Layout.NodeWidth != layout.DefaultNodeWidth {
		t.Errorf("layout defaults not applied: %+v", opts.Layout)
	}
	if opts.Formats[0] != render.FormatSVG {
		t.Errorf("format not normalised: %v", opts.Formats)
	}
	if opts.Width != render.DefaultWidth || opts.Height != render.DefaultHeight {
		t.Errorf("size = %dx%d", opts.Width, opts.Height)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative gap", Options{Layout: layout.Options{HorizontalGap: -1}}},
		{"unknown strategy", Options{Layout: layout.Options{Strategy: "radial"}}},
		{"bad format", Options{Formats: []string{"gif"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	before := opts.LayoutKeyOpts()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.LayoutKeyOpts() != before {
		t.Error("layout options changed on second call")
	}
}

func TestMemberKeyOrderIndependent(t *testing.T) {
	a := family3()
	b := []family.Member{a[2], a[0], a[1]}
	if MemberKey(a) != MemberKey(b) {
		t.Error("MemberKey should not depend on input order")
	}
	a[0].Name = "Carl"
	if MemberKey(a) == MemberKey(b) {
		t.Error("MemberKey should change when a member changes")
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	c := newMapCache()
	r := NewRunner(c, nil, nil)

	opts := Options{Formats: []string{"svg", "json"}}
	res, err := r.Execute(ctx, family3(), viewconfig.Values{viewconfig.KeyTitle: "Karlsson"}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.MemberCount != 3 || res.Stats.ConnectorCount != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}
	if !bytes.Contains(res.Artifacts["svg"], []byte(">Karlsson</tspan>")) {
		t.Error("svg artifact missing the configured title")
	}
	if len(res.Artifacts["json"]) == 0 {
		t.Error("json artifact missing")
	}

	again, err := r.Execute(ctx, family3(), viewconfig.Values{viewconfig.KeyTitle: "Karlsson"}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v, want hits", again.CacheInfo)
	}
	if !bytes.Equal(again.Artifacts["svg"], res.Artifacts["svg"]) {
		t.Error("cached artifact differs")
	}
	if again.Layout.Positions["3"] != res.Layout.Positions["3"] {
		t.Error("cached layout differs")
	}

	// A config change re-renders but reuses the layout.
	changed, err := r.Execute(ctx, family3(), viewconfig.Values{viewconfig.KeyTitle: "Berg"}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !changed.CacheInfo.LayoutHit || changed.CacheInfo.RenderHit {
		t.Errorf("config change cache info = %+v", changed.CacheInfo)
	}
}

func TestRunnerRefreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMapCache(), nil, nil)
	if _, err := r.Execute(ctx, family3(), nil, Options{}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(ctx, family3(), nil, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass the cache: %+v", res.CacheInfo)
	}
}

func TestRunnerLayoutKeepsProblemsOnHit(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMapCache(), nil, nil)
	members := append(family3(), family.Member{ID: "4", Name: "Lost", Generation: 2, FatherID: "404"})

	first, hit, err := r.LayoutWithCacheInfo(ctx, members, Options{})
	if err != nil || hit {
		t.Fatalf("first layout hit=%v err=%v", hit, err)
	}
	second, hit, err := r.LayoutWithCacheInfo(ctx, members, Options{})
	if err != nil || !hit {
		t.Fatalf("second layout hit=%v err=%v", hit, err)
	}
	if len(first.Problems) != 1 || len(second.Problems) != 1 {
		t.Errorf("problems = %d / %d, want 1", len(first.Problems), len(second.Problems))
	}
}

func TestRunnerLogsRecoveredReferences(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	r := NewRunner(nil, nil, logger)

	members := append(family3(), family.Member{ID: "4", Name: "Lost", Generation: 2, FatherID: "404"})
	if _, err := r.Layout(context.Background(), members, Options{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "recovered member reference") {
		t.Errorf("expected a debug line, got %q", buf.String())
	}
}

func TestRunnerExecuteStore(t *testing.T) {
	st := memory.New(family3()...)
	if err := st.PatchConfig(context.Background(), viewconfig.Patch{viewconfig.KeyTreeScale: "abc"}); err != nil {
		t.Fatal(err)
	}
	r := NewRunner(nil, nil, nil)
	res, err := r.ExecuteStore(context.Background(), st, Options{Formats: []string{"dot"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.MemberCount != 3 {
		t.Errorf("members = %d", res.Stats.MemberCount)
	}
	if len(res.ConfigProblems) != 1 {
		t.Errorf("config problems = %v, want 1", res.ConfigProblems)
	}
	if !bytes.Contains(res.Artifacts["dot"], []byte("digraph G")) {
		t.Error("dot artifact missing")
	}
}

func TestRunnerClose(t *testing.T) {
	if err := NewRunner(cache.NewNullCache(), nil, nil).Close(); err != nil {
		t.Error(err)
	}
}
