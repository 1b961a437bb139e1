package viewport

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

// Persister receives view configuration patches. Calls are fire-and-forget:
// a failing Persister is logged and retried on the next flush.
type Persister interface {
	PatchConfig(ctx context.Context, p viewconfig.Patch) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, p viewconfig.Patch) error

// PatchConfig implements Persister.
func (f PersisterFunc) PatchConfig(ctx context.Context, p viewconfig.Patch) error { return f(ctx, p) }

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDebounce sets the quiet period before changes are persisted.
func WithDebounce(d time.Duration) SessionOption {
	return func(s *Session) { s.debounce = NewDebouncer(d) }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *log.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPadding sets the AutoFit padding.
func WithPadding(p float64) SessionOption {
	return func(s *Session) { s.padding = p }
}

// Session owns a Viewport and keeps its transforms persisted. Every change
// schedules a debounced flush that sends only the keys that differ from the
// last persisted state. Session is safe for concurrent use; the debounce
// timer fires on its own goroutine.
type Session struct {
	mu        sync.Mutex
	vp        Viewport
	epoch     uint64 // bumped by Reset; older flushes are dropped
	persisted viewconfig.Values
	fittedKey string
	forceFit  bool
	bounds    layout.Bounds

	// writeMu orders persister calls so a flush never lands after a reset.
	writeMu   sync.Mutex
	persister Persister
	debounce  *Debouncer
	logger    *log.Logger
	padding   float64
}

// NewSession returns a Session for a w x h viewport. A nil persister keeps
// state in memory only.
func NewSession(w, h float64, p Persister, opts ...SessionOption) *Session {
	s := &Session{
		vp:        New(w, h),
		persisted: viewconfig.Values{},
		persister: p,
		debounce:  NewDebouncer(DefaultDebounce),
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
		padding:   DefaultPadding,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Viewport returns a copy of the current viewport.
func (s *Session) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vp
}

// Load restores the persisted transforms from cfg. When no tree offset is
// persisted it auto-fits bounds, but only once per distinct memberKey so a
// user who pans away is not snapped back on every reload. After Reset the
// next Load always fits.
func (s *Session) Load(cfg viewconfig.Config, bounds layout.Bounds, memberKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bounds = bounds
	s.vp.ResetTransforms()
	if cfg.HasTreeOffset() {
		s.vp.Tree.X, s.vp.Tree.Y = *cfg.TreeX, *cfg.TreeY
	}
	if cfg.TreeScale != nil {
		s.vp.Tree.Scale = *cfg.TreeScale
	}
	if cfg.TitleX != nil && cfg.TitleY != nil {
		s.vp.Title.X, s.vp.Title.Y = *cfg.TitleX, *cfg.TitleY
	}
	if cfg.OverlayX != nil && cfg.OverlayY != nil {
		s.vp.Overlay.X, s.vp.Overlay.Y = *cfg.OverlayX, *cfg.OverlayY
	}
	if cfg.OverlayScale != nil {
		s.vp.Overlay.Scale = *cfg.OverlayScale
	}
	s.persisted = persistedTransforms(cfg.Values())

	needFit := s.forceFit || (!cfg.HasTreeOffset() && memberKey != s.fittedKey)
	if !needFit {
		return
	}
	if err := s.vp.AutoFit(bounds, s.padding); err != nil {
		s.logger.Debug("auto-fit skipped", "reason", errors.UserMessage(err))
		return
	}
	s.fittedKey = memberKey
	s.forceFit = false
	s.scheduleLocked()
}

// Zoom scales the tree around anchor; see Viewport.Zoom.
func (s *Session) Zoom(factor float64, anchor *layout.Point) {
	s.update(func(v *Viewport) { v.Zoom(factor, anchor) })
}

// PanBy moves the tree.
func (s *Session) PanBy(dx, dy float64) {
	s.update(func(v *Viewport) { v.PanBy(dx, dy) })
}

// MoveTitle moves the title block.
func (s *Session) MoveTitle(dx, dy float64) {
	s.update(func(v *Viewport) { v.MoveTitle(dx, dy) })
}

// MoveOverlay moves the overlay image.
func (s *Session) MoveOverlay(dx, dy float64) {
	s.update(func(v *Viewport) { v.MoveOverlay(dx, dy) })
}

// ZoomOverlay scales the overlay image.
func (s *Session) ZoomOverlay(factor float64) {
	s.update(func(v *Viewport) { v.ZoomOverlay(factor) })
}

// Resize changes the viewport size. Size is not persisted.
func (s *Session) Resize(w, h float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vp.Resize(w, h)
}

// EndDrag marks the end of a drag gesture and persists immediately.
func (s *Session) EndDrag() { s.Flush() }

// FitNow re-fits the bounds of the last Load on request.
func (s *Session) FitNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.vp.AutoFit(s.bounds, s.padding); err != nil {
		return err
	}
	s.scheduleLocked()
	return nil
}

// Reset clears every persisted transform, returns the layers to identity and
// forces the next Load to auto-fit.
func (s *Session) Reset() {
	s.mu.Lock()
	s.epoch++
	s.debounce.Stop()
	s.vp.ResetTransforms()
	s.persisted = viewconfig.Values{}
	s.forceFit = true
	s.fittedKey = ""
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.persist(viewconfig.ResetViewPatch())
}

// Flush persists pending changes now.
func (s *Session) Flush() { s.debounce.Flush() }

// Close flushes pending changes and stops the timer.
func (s *Session) Close() {
	s.Flush()
	s.debounce.Stop()
}

func (s *Session) update(fn func(*Viewport)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.vp)
	s.scheduleLocked()
}

func (s *Session) scheduleLocked() {
	s.debounce.Schedule(s.flushFor(s.epoch))
}

// flushFor returns a flush bound to epoch. It sends the keys whose value
// differs from the last persisted state, and nothing once Reset has moved
// the session to a later epoch.
func (s *Session) flushFor(epoch uint64) func() {
	return func() {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		s.mu.Lock()
		if epoch != s.epoch {
			s.mu.Unlock()
			return
		}
		current := encodeTransforms(s.vp)
		patch := viewconfig.Patch{}
		for _, k := range viewconfig.TransformKeys {
			if current[k] != s.persisted[k] {
				patch[k] = current[k]
			}
		}
		s.mu.Unlock()

		if len(patch) == 0 || !s.persist(patch) {
			return
		}
		s.mu.Lock()
		if epoch == s.epoch {
			s.persisted = s.persisted.Apply(patch)
		}
		s.mu.Unlock()
	}
}

func (s *Session) persist(p viewconfig.Patch) bool {
	if s.persister == nil {
		return true
	}
	if err := s.persister.PatchConfig(context.Background(), p); err != nil {
		s.logger.Warn("failed to persist view", "keys", len(p), "error", err)
		return false
	}
	return true
}

// encodeTransforms renders the persisted form of the current transforms.
func encodeTransforms(v Viewport) viewconfig.Values {
	return viewconfig.Values{
		viewconfig.KeyTreeX:        viewconfig.FormatFloat(v.Tree.X),
		viewconfig.KeyTreeY:        viewconfig.FormatFloat(v.Tree.Y),
		viewconfig.KeyTreeScale:    viewconfig.FormatFloat(v.Tree.Scale),
		viewconfig.KeyTitleX:       viewconfig.FormatFloat(v.Title.X),
		viewconfig.KeyTitleY:       viewconfig.FormatFloat(v.Title.Y),
		viewconfig.KeyOverlayX:     viewconfig.FormatFloat(v.Overlay.X),
		viewconfig.KeyOverlayY:     viewconfig.FormatFloat(v.Overlay.Y),
		viewconfig.KeyOverlayScale: viewconfig.FormatFloat(v.Overlay.Scale),
	}
}

func persistedTransforms(v viewconfig.Values) viewconfig.Values {
	out := viewconfig.Values{}
	for _, k := range viewconfig.TransformKeys {
		if val, ok := v[k]; ok {
			out[k] = val
		}
	}
	return out
}
