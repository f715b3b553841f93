package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/ziplock/pkg/errors"
	"github.com/matzehuels/ziplock/pkg/lockfile"
	"github.com/matzehuels/ziplock/pkg/manifest"
	"github.com/matzehuels/ziplock/pkg/tree"
)

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	m, t, ok := s.build(w, r)
	if !ok {
		return
	}
	s.logger.Debug("tree built", "name", m.Name, "nodes", t.Count())
	s.writeJSON(w, r, http.StatusOK, t)
}

func (s *Server) handleCreateLock(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no lock store configured"))
		return
	}
	m, t, ok := s.build(w, r)
	if !ok {
		return
	}

	l := lockfile.New(m, t)
	if err := s.store.Save(r.Context(), l); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "save lock"))
		return
	}
	w.Header().Set("Location", "/v1/locks/"+l.ID)
	s.writeJSON(w, r, http.StatusCreated, l)
}

func (s *Server) handleGetLock(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no lock store configured"))
		return
	}
	l, err := s.store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, l)
}

// build decodes the posted manifest and resolves it. On failure it writes
// the error response and returns ok=false.
func (s *Server) build(w http.ResponseWriter, r *http.Request) (*manifest.Manifest, tree.Tree, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxManifestBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return nil, nil, false
	}
	defer r.Body.Close()

	m, err := manifest.Parse(body)
	if err != nil {
		s.writeError(w, r, err)
		return nil, nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	t, err := s.builder.Build(ctx, m)
	if err != nil {
		s.writeError(w, r, err)
		return nil, nil, false
	}
	return m, t, true
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	if r.URL.Query().Get("pretty") == "true" {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		s.logger.Error("encode response", "err", err, "request_id", RequestIDFrom(r.Context()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code, err)
	if status >= 500 {
		s.logger.Error("request failed", "err", err, "request_id", RequestIDFrom(r.Context()))
	}
	s.writeJSON(w, r, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func statusFor(code errors.Code, err error) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidManifest, errors.ErrCodeInvalidPackage,
		errors.ErrCodeInvalidSpecifier, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeResolution, errors.ErrCodeDepthExceeded:
		switch {
		case errors.Has(err, errors.ErrCodeRateLimited):
			return http.StatusTooManyRequests
		case errors.Has(err, errors.ErrCodeUnsupported):
			return http.StatusNotImplemented
		case errors.Has(err, errors.ErrCodeInvalidSpecifier):
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
