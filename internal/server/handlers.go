package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/kintree/pkg/buildinfo"
	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/store"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": buildinfo.Version})
}

// =============================================================================
// Members
// =============================================================================

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.store.ListMembers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if members == nil {
		members = []family.Member{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var m family.Member
	if !s.decode(w, r, &m) {
		return
	}
	created, err := store.Create(r.Context(), s.store, m)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/members/"+created.ID.String())
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetMember(r.Context(), family.ID(chi.URLParam(r, "id")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	id := family.ID(chi.URLParam(r, "id"))
	var m family.Member
	if !s.decode(w, r, &m) {
		return
	}
	if m.ID.IsZero() {
		m.ID = id
	}
	if m.ID != id {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "body id %s does not match path id %s", m.ID, id))
		return
	}
	updated, err := store.Update(r.Context(), s.store, m)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := store.Delete(r.Context(), s.store, family.ID(chi.URLParam(r, "id"))); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// View configuration
// =============================================================================

type configResponse struct {
	Values   viewconfig.Values `json:"values"`
	Config   viewconfig.Config `json:"config"`
	Problems []string          `json:"problems"`
}

func (s *Server) writeConfig(w http.ResponseWriter, r *http.Request) {
	values, err := s.store.Config(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if values == nil {
		values = viewconfig.Values{}
	}
	cfg, problems := viewconfig.Parse(values)
	resp := configResponse{Values: values, Config: cfg, Problems: []string{}}
	for _, p := range problems {
		resp.Problems = append(resp.Problems, errors.UserMessage(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.writeConfig(w, r)
}

// handlePatchConfig merges a patch. Unknown keys are dropped without error;
// numbers are stored in their canonical form and null deletes a key.
func (s *Server) handlePatchConfig(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if !s.decode(w, r, &raw) {
		return
	}
	p, err := patchFromJSON(raw)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.PatchConfig(r.Context(), p.Sanitize()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeConfig(w, r)
}

func patchFromJSON(raw map[string]any) (viewconfig.Patch, error) {
	p := make(viewconfig.Patch, len(raw))
	for k, v := range raw {
		if !viewconfig.IsAccepted(k) {
			continue
		}
		switch v := v.(type) {
		case nil:
			p[k] = ""
		case string:
			p[k] = v
		case float64:
			p[k] = viewconfig.FormatFloat(v)
		case []any:
			// title_lines may be sent as a list
			data, err := json.Marshal(v)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid value for %s", k)
			}
			p[k] = string(data)
		default:
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid value for %s", k)
		}
	}
	return p, nil
}

func (s *Server) handleResetView(w http.ResponseWriter, r *http.Request) {
	if err := store.ResetView(r.Context(), s.store); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Layout and render
// =============================================================================

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, render.FormatJSON, "application/json")
}

func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, render.FormatSVG, "image/svg+xml")
}

func (s *Server) serveArtifact(w http.ResponseWriter, r *http.Request, format, contentType string) {
	opts, err := s.pipelineOptions(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts.Formats = []string{format}

	result, err := s.runner.ExecuteStore(r.Context(), s.store, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Members-Hash", result.MembersHash)
	w.Header().Set("X-Cache", cacheStatus(result.CacheInfo.RenderHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// pipelineOptions reads layout and render overrides from the query string.
func (s *Server) pipelineOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{Layout: s.layout, Logger: s.logger}
	if v := q.Get("strategy"); v != "" {
		opts.Layout.Strategy = v
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"width", &opts.Width}, {"height", &opts.Height}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a positive integer, got %q", p.name, v)
		}
		*p.dst = n
	}
	opts.Highlight = queryBool(q.Get("highlight"))
	opts.NoYears = queryBool(q.Get("no_years"))
	opts.PhotoLinks = queryBool(q.Get("photo_links"))
	return opts, nil
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return false
	}
	return true
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeMemberNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidMember, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]any{"error": errors.UserMessage(err), "code": code})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
