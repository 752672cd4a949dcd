// Package server is the HTML and JSON front end for the studio.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"variant-studio/internal/catalog"
	"variant-studio/internal/gallery"
	"variant-studio/internal/studio"
)

//go:embed templates/*.html
var templateFS embed.FS

const recentLimit = 6

type Generator interface {
	Generate(ctx context.Context, req studio.Request) (studio.Result, error)
}

type Options struct {
	Studio         Generator
	Gallery        *gallery.Gallery
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

type Server struct {
	studio         Generator
	gallery        *gallery.Gallery
	logger         *slog.Logger
	requestTimeout time.Duration
	tmpl           *template.Template
}

type apiError struct {
	Error string `json:"error"`
}

type imageLink struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	DownloadURL string `json:"download_url"`
}

type generateRequest struct {
	Prompt          string `json:"prompt"`
	BackgroundStyle string `json:"background_style"`
	Tone            string `json:"tone"`
	NumImages       int    `json:"num_images"`
	ImageSize       int    `json:"image_size"`
}

type generateResponse struct {
	BatchID   string      `json:"batch_id,omitempty"`
	Variants  []string    `json:"variants"`
	Images    []imageLink `json:"images"`
	Requested int         `json:"requested"`
	Warning   string      `json:"warning,omitempty"`
}

type batchResponse struct {
	BatchID   string      `json:"batch_id"`
	Prompt    string      `json:"prompt"`
	Style     string      `json:"background_style"`
	Tone      string      `json:"tone"`
	Size      int         `json:"image_size"`
	Variants  []string    `json:"variants"`
	Images    []imageLink `json:"images"`
	CreatedAt time.Time   `json:"created_at"`
}

type pageData struct {
	Form     catalog.Options
	Styles   []catalog.NamedOption
	Tones    []catalog.NamedOption
	Images   []imageLink
	Variants []string
	Warning  string
	Error    string
	Recent   []recentBatch
}

type recentBatch struct {
	ID     string
	Prompt string
	Images []imageLink
}

func New(opts Options) (*Server, error) {
	if opts.Studio == nil {
		return nil, errors.New("studio is nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 240 * time.Second
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		studio:         opts.Studio,
		gallery:        opts.Gallery,
		logger:         logger,
		requestTimeout: timeout,
		tmpl:           tmpl,
	}, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, s.newPage(catalog.Normalize(catalog.Options{})))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	const maxFormBytes = 64 << 10
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		page := s.newPage(catalog.Normalize(catalog.Options{}))
		page.Error = "invalid form"
		s.renderPage(w, http.StatusBadRequest, page)
		return
	}

	opts := catalog.Normalize(catalog.Options{
		Prompt:          r.FormValue("prompt"),
		BackgroundStyle: r.FormValue("background_style"),
		Tone:            r.FormValue("tone"),
		NumImages:       atoi(r.FormValue("num_images")),
		ImageSize:       atoi(r.FormValue("image_size")),
	})

	page := s.newPage(opts)
	res, err := s.generate(r.Context(), opts)
	if err != nil {
		page.Error = err.Error()
		s.renderPage(w, http.StatusBadRequest, page)
		return
	}

	page.Images = links(res.BatchID, res.Paths)
	page.Variants = res.Variants
	page.Warning = warning(res)
	s.renderPage(w, http.StatusOK, page)
}

func (s *Server) handleAPIGenerate(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = 64 << 10
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json body"})
		return
	}

	opts := catalog.Normalize(catalog.Options{
		Prompt:          body.Prompt,
		BackgroundStyle: body.BackgroundStyle,
		Tone:            body.Tone,
		NumImages:       body.NumImages,
		ImageSize:       body.ImageSize,
	})

	res, err := s.generate(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		BatchID:   res.BatchID,
		Variants:  res.Variants,
		Images:    links(res.BatchID, res.Paths),
		Requested: res.Requested,
		Warning:   warning(res),
	})
}

func (s *Server) handleAPIBatch(w http.ResponseWriter, r *http.Request) {
	if s.gallery == nil {
		writeJSON(w, http.StatusNotFound, apiError{Error: "batch not found"})
		return
	}

	b, ok := s.gallery.Get(chi.URLParam(r, "batchID"))
	if !ok {
		writeJSON(w, http.StatusNotFound, apiError{Error: "batch not found"})
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{
		BatchID:   b.ID,
		Prompt:    b.Prompt,
		Style:     b.Style,
		Tone:      b.Tone,
		Size:      b.Size,
		Variants:  b.Variants,
		Images:    links(b.ID, b.Paths),
		CreatedAt: b.CreatedAt,
	})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	s.serveImage(w, r, false)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.serveImage(w, r, true)
}

func (s *Server) serveImage(w http.ResponseWriter, r *http.Request, attachment bool) {
	if s.gallery == nil {
		http.NotFound(w, r)
		return
	}

	batchID := chi.URLParam(r, "batchID")
	filename := chi.URLParam(r, "filename")

	path, err := s.gallery.Resolve(batchID, filename)
	switch {
	case errors.Is(err, gallery.ErrInvalidName):
		http.Error(w, "invalid image name", http.StatusBadRequest)
		return
	case errors.Is(err, gallery.ErrNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		s.logger.Error("resolve image failed", "batch", batchID, "file", filename, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("content-type", "image/jpeg")
	if attachment {
		w.Header().Set("content-disposition", `attachment; filename="`+filename+`"`)
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) generate(ctx context.Context, opts catalog.Options) (studio.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	return s.studio.Generate(ctx, studio.Request{
		Prompt:          opts.Prompt,
		BackgroundStyle: opts.BackgroundStyle,
		Tone:            opts.Tone,
		NumImages:       opts.NumImages,
		ImageSize:       opts.ImageSize,
	})
}

func (s *Server) newPage(form catalog.Options) pageData {
	page := pageData{
		Form:   form,
		Styles: catalog.BackgroundStyles(),
		Tones:  catalog.Tones(),
	}
	if s.gallery != nil {
		for _, b := range s.gallery.Recent(recentLimit) {
			page.Recent = append(page.Recent, recentBatch{
				ID:     b.ID,
				Prompt: b.Prompt,
				Images: links(b.ID, b.Paths),
			})
		}
	}
	return page
}

func (s *Server) renderPage(w http.ResponseWriter, status int, page pageData) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "index.html", page); err != nil {
		s.logger.Error("render template failed", "err", err)
	}
}

func links(batchID string, paths []string) []imageLink {
	out := make([]imageLink, 0, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		prefix := ""
		if batchID != "" {
			prefix = batchID + "/"
		}
		out = append(out, imageLink{
			Name:        name,
			URL:         "/images/" + prefix + name,
			DownloadURL: "/download/" + prefix + name,
		})
	}
	return out
}

func warning(res studio.Result) string {
	switch {
	case res.Requested > 0 && len(res.Paths) == 0:
		return "no images were generated"
	case res.Partial():
		return strconv.Itoa(len(res.Paths)) + " of " + strconv.Itoa(res.Requested) + " images were generated"
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func atoi(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}
