package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/matzehuels/heatmap/pkg/buildinfo"
	"github.com/matzehuels/heatmap/pkg/core/density"
	"github.com/matzehuels/heatmap/pkg/errors"
	"github.com/matzehuels/heatmap/pkg/pipeline"
	"github.com/matzehuels/heatmap/pkg/sink"
	"github.com/matzehuels/heatmap/pkg/source"
)

// Response headers.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderWarnings  = "X-Heatmap-Warnings"
	HeaderCache     = "X-Heatmap-Cache"
)

// Request is the body of POST /v1/heatmaps and POST /v1/grids.
// Points use the same entry format as JSON point files.
type Request struct {
	Points  json.RawMessage  `json:"points"`
	Options pipeline.Options `json:"options"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": info.Version,
		"commit":  info.Commit,
	})
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	points, opts, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), points, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := pipeline.DefaultFormat
	if len(opts.Formats) > 0 {
		format = opts.Formats[0]
	}
	if len(result.Warnings) > 0 {
		msgs := make([]string, len(result.Warnings))
		for i, wn := range result.Warnings {
			msgs[i] = wn.String()
		}
		w.Header().Set(HeaderWarnings, strings.Join(msgs, "; "))
	}
	w.Header().Set(HeaderCache, cacheStatus(result.CacheInfo.RenderHit))
	w.Header().Set("Content-Type", sink.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	points, opts, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	g, hit, err := s.runner.BuildGridWithCacheInfo(r.Context(), points, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set(HeaderCache, cacheStatus(hit))
	w.Header().Set("Content-Type", sink.ContentType(sink.FormatJSON))
	w.WriteHeader(http.StatusOK)
	if err := sink.WriteGrid(w, g); err != nil {
		s.logger.Error("write grid", "err", err, "request_id", w.Header().Get(HeaderRequestID))
	}
}

// decode reads and validates a request body. Points are deduplicated by ID
// and a background path is resolved inside the background directory.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) ([]density.Point, pipeline.Options, error) {
	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", s.maxBodySize)
		}
		return nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	if bg := req.Options.Background; bg != "" {
		if s.bgDir == "" {
			return nil, pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "this server does not accept background images")
		}
		if err := errors.ValidatePath(bg); err != nil {
			return nil, pipeline.Options{}, err
		}
		req.Options.Background = filepath.Join(s.bgDir, bg)
	}
	var records []source.Record
	if len(req.Points) > 0 {
		var err error
		if records, err = source.ReadJSON(bytes.NewReader(req.Points)); err != nil {
			return nil, pipeline.Options{}, err
		}
	}
	if len(records) > s.maxPoints {
		return nil, pipeline.Options{}, errors.New(errors.ErrCodeInvalidPoints, "too many points: %d (max %d)", len(records), s.maxPoints)
	}

	opts := req.Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, pipeline.Options{}, err
	}
	return source.Points(source.Dedup(records)), opts, nil
}

// statusFor maps an error to an HTTP status: input and configuration
// problems are the client's, everything else is ours.
func statusFor(err error) int {
	switch {
	case errors.IsConfigError(err),
		errors.Is(err, errors.ErrCodeInvalidInput),
		errors.Is(err, errors.ErrCodeInvalidPoints),
		errors.Is(err, errors.ErrCodeInvalidPath):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", w.Header().Get(HeaderRequestID))
		msg = "internal error"
	} else {
		s.logger.Debug("rejected request", "path", r.URL.Path, "code", code, "err", msg)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
