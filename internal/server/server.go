// Package server exposes thumbnail rendering over HTTP.
//
//	POST /v1/render   multipart: scene, background, [foreground]
//	GET  /v1/fonts    ?q=fuzzy query
//	GET  /healthz
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gogpu/thumbnail"
	"github.com/gogpu/thumbnail/compose"
	"github.com/gogpu/thumbnail/fonts"
	"github.com/gogpu/thumbnail/imageio"
	"github.com/gogpu/thumbnail/internal/scenefile"
	"github.com/gogpu/thumbnail/segment"
)

// DefaultMaxUpload bounds the size of a render request body.
const DefaultMaxUpload = 64 << 20

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. The package logger is the default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMaxUpload bounds render request bodies to n bytes.
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithSegmentTimeout bounds each segmentation run.
func WithSegmentTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.segTimeout = d
	}
}

// Server renders thumbnails on request.
type Server struct {
	fonts      *fonts.Registry
	comp       *compose.Compositor
	seg        segment.Segmenter
	logger     *slog.Logger
	maxUpload  int64
	segTimeout time.Duration
}

// New returns a server. A nil seg makes the foreground part mandatory.
func New(reg *fonts.Registry, seg segment.Segmenter, opts ...Option) *Server {
	if reg == nil {
		reg = fonts.NewRegistry()
	}
	s := &Server{
		fonts:     reg,
		comp:      compose.New(reg),
		seg:       seg,
		maxUpload: DefaultMaxUpload,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = thumbnail.Logger()
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/v1/fonts", s.handleFonts)
	r.Post("/v1/render", s.handleRender)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("server: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleFonts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	keys := s.fonts.Keys()
	if q != "" {
		keys = s.fonts.Search(q)
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"fonts": keys})
}

// errBadRequest marks client errors.
var errBadRequest = errors.New("bad request")

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse form: %w", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	frame, err := s.frame(r.Context(), r.MultipartForm)
	switch {
	case errors.Is(err, segment.ErrFailed):
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	case errors.Is(err, errBadRequest):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	if v := r.URL.Query().Get("preview"); v != "" {
		side, perr := strconv.Atoi(v)
		if perr != nil || side <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: preview %q", errBadRequest, v))
			return
		}
		img, rerr := s.comp.RenderImage(frame)
		if rerr == nil {
			rerr = imageio.EncodePNG(&buf, imageio.Preview(img, side))
		}
		err = rerr
	} else {
		err = s.comp.RenderPNG(&buf, frame)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="`+compose.ExportName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// frame builds the render input from the form parts.
func (s *Server) frame(ctx context.Context, form *multipart.Form) (compose.Frame, error) {
	doc, name, err := part(form, "scene")
	if err != nil {
		return compose.Frame{}, err
	}
	format := scenefile.YAML
	if f := form.Value["format"]; len(f) > 0 && f[0] != "" {
		format = scenefile.Format(f[0])
	} else if name != "" {
		if f, ferr := scenefile.FormatOf(name); ferr == nil {
			format = f
		}
	}
	sc, err := scenefile.Decode(doc, format)
	if err != nil {
		return compose.Frame{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}

	bgData, _, err := part(form, "background")
	if err != nil {
		return compose.Frame{}, err
	}
	if bgData, err = imageio.Raw(bgData); err != nil {
		return compose.Frame{}, fmt.Errorf("%w: background: %w", errBadRequest, err)
	}
	bg, err := imageio.Decode(bgData)
	if err != nil {
		return compose.Frame{}, fmt.Errorf("%w: background: %w", errBadRequest, err)
	}

	// A foreground that fails to decode is the client's fault when uploaded
	// and the segmenter's when produced here.
	fgErr := errBadRequest
	fgData, _, err := part(form, "foreground")
	switch {
	case err == nil:
	case s.seg == nil:
		return compose.Frame{}, err
	default:
		fgErr = segment.ErrFailed
		if s.segTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.segTimeout)
			defer cancel()
		}
		if fgData, err = s.seg.Segment(ctx, bgData); err != nil {
			return compose.Frame{}, fmt.Errorf("%w: %w", segment.ErrFailed, err)
		}
	}
	fg, err := imageio.Decode(fgData)
	if err != nil {
		return compose.Frame{}, fmt.Errorf("%w: foreground: %w", fgErr, err)
	}

	return compose.Frame{
		Background: compose.NewImage(bg),
		Layers:     sc.Layers,
		Foreground: compose.NewImage(fg),
	}, nil
}

// part returns a form part given either as a file or as a plain field,
// and the uploaded file name if any.
func part(form *multipart.Form, key string) ([]byte, string, error) {
	if files := form.File[key]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", key, err)
		}
		defer func() { _ = f.Close() }()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", key, err)
		}
		return data, files[0].Filename, nil
	}
	if v := form.Value[key]; len(v) > 0 && v[0] != "" {
		return []byte(v[0]), "", nil
	}
	return nil, "", fmt.Errorf("%w: missing %q", errBadRequest, key)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
