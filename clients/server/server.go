// Package server provides the stencilkit HTTP rendering API.
package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/xob0t/stencilkit/pkg/assets"
	"github.com/xob0t/stencilkit/pkg/compose"
	"github.com/xob0t/stencilkit/pkg/document"
	"github.com/xob0t/stencilkit/pkg/generator"
	"github.com/xob0t/stencilkit/pkg/render"
)

// Request body limits.
const (
	maxRenderBody = 8 << 20
	maxUploadBody = 50 << 20
)

// Server serves the rendering API for one engine.
type Server struct {
	engine *compose.Engine
	store  *assets.Store
	logger *slog.Logger
}

// New returns a server for engine. The engine must have an asset store.
func New(engine *compose.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = render.Logger()
	}
	return &Server{engine: engine, store: engine.Assets(), logger: logger}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("POST /api/export/bundle", s.handleExportBundle)
	mux.HandleFunc("POST /api/export/{format}", s.handleExport)
	mux.HandleFunc("POST /api/fields", s.handleFields)
	mux.HandleFunc("POST /api/upload/font", s.handleUploadFont)
	mux.HandleFunc("POST /api/upload/image", s.handleUploadImage)
	mux.HandleFunc("POST /api/import/bundle", s.handleImportBundle)
	mux.HandleFunc("GET /api/assets/{id}", s.handleGetAsset)
	mux.HandleFunc("DELETE /api/assets/{id}", s.handleDeleteAsset)
	mux.HandleFunc("GET /api/assets", s.handleListAssets)
	mux.HandleFunc("GET /api/fonts", s.handleListFonts)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	return s.logRequests(mux)
}

// RunServe starts the API server and blocks until ctx is cancelled, then
// shuts down gracefully.
func RunServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var (
		addr     string
		port     string
		logLevel string
		fontDir  string
		open     bool
	)
	fs.StringVar(&addr, "addr", ":8080", "Listen address")
	fs.StringVar(&port, "port", "", "Listen port (shorthand for --addr :<port>)")
	fs.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&fontDir, "fonts", "", "Font directory to load")
	fs.BoolVar(&open, "open", false, "Open the API root in a browser")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if port != "" {
		addr = ":" + port
	}

	logger, err := compose.InstallLogger(os.Stderr, logLevel)
	if err != nil {
		return err
	}

	cfg := compose.Config{
		Store:   assets.NewStore(),
		Fetcher: assets.FetcherOptions{DisableLocal: true},
		Logger:  logger,
	}
	if fontDir != "" {
		cfg.FontDirs = []string{fontDir}
	}
	engine, err := compose.NewHeadless(cfg)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           New(engine, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	url := "http://" + displayAddr(ln.Addr())
	logger.Info("stencilkit API listening", "url", url)
	if open {
		go openBrowser(url + "/healthz")
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ── Render ──

type renderRequest struct {
	Document   json.RawMessage      `json:"document"`
	Fields     document.FieldValues `json:"fields"`
	Scale      float64              `json:"scale"`
	Background string               `json:"background"`
	Quality    int                  `json:"quality"`
}

// requestError marks errors caused by the client's input.
type requestError struct{ err error }

func (e requestError) Error() string { return e.err.Error() }
func (e requestError) Unwrap() error { return e.err }

func decodeRequest(r *http.Request) (*renderRequest, *document.Document, error) {
	var req renderRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRenderBody))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return nil, nil, requestError{fmt.Errorf("decode request: %w", err)}
	}
	if len(req.Document) == 0 || string(req.Document) == "null" {
		return nil, nil, requestError{errors.New("document is required")}
	}
	doc, err := document.Parse(req.Document)
	if err != nil {
		return nil, nil, requestError{err}
	}
	return &req, doc, nil
}

func (s *Server) renderImage(r *http.Request, format generator.Format) ([]byte, error) {
	req, doc, err := decodeRequest(r)
	if err != nil {
		return nil, err
	}
	img, err := s.engine.Render(r.Context(), doc, req.Fields, compose.RenderOptions{
		Scale:      req.Scale,
		Background: req.Background,
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := generator.GenerateToWriter(&buf, format, img, generator.Config{Quality: req.Quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	data, err := s.renderImage(r, generator.PNG)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", generator.PNG.ContentType())
	w.Write(data)
}

// ── Export ──

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := generator.ParseFormat(r.PathValue("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	data, err := s.renderImage(r, format)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="output%s"`, format.Ext()))
	w.Write(data)
}

// handleExportBundle packs the posted document with every stored asset.
// Layer sources that name a stored asset are rewritten to their archive path.
func (s *Server) handleExportBundle(w http.ResponseWriter, r *http.Request) {
	_, doc, err := decodeRequest(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	files := s.store.Files()
	byID := make(map[string]string, len(files))
	for name := range files {
		byID[strings.TrimSuffix(name, path.Ext(name))] = name
	}
	for i := range doc.Layers {
		l := &doc.Layers[i]
		if id, ok := s.store.ID(l.FileURL); ok {
			l.FileURL = "assets/" + byID[id]
		}
	}

	var buf bytes.Buffer
	if err := document.WriteBundle(&buf, doc, files); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="document%s"`, document.BundleExt))
	w.Write(buf.Bytes())
}

// ── Fields ──

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	req, doc, err := decodeRequest(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	warnings := document.ValidateFields(req.Fields, doc)
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, map[string]any{
		"schema":   document.FormatFields(doc),
		"warnings": warnings,
	})
}

// ── Import ──

// handleImportBundle reads a .skbundle upload into memory, adds its assets
// to the store and returns the document with sources rewritten to asset ids.
func (s *Server) handleImportBundle(w http.ResponseWriter, r *http.Request) {
	data, _, err := readUpload(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		http.Error(w, "invalid bundle: "+err.Error(), http.StatusBadRequest)
		return
	}

	var (
		docJSON  []byte
		imported = make(map[string]assets.Info)
	)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			http.Error(w, "invalid bundle: "+err.Error(), http.StatusBadRequest)
			return
		}
		fdata, err := io.ReadAll(io.LimitReader(rc, maxUploadBody))
		rc.Close()
		if err != nil {
			http.Error(w, "invalid bundle: "+err.Error(), http.StatusBadRequest)
			return
		}

		name := path.Clean(f.Name)
		if name == "document.json" {
			docJSON = fdata
			continue
		}
		id := s.store.Add(path.Base(name), fdata, mime.TypeByExtension(path.Ext(name)))
		a, _ := s.store.Get(id)
		imported[name] = assets.Info{ID: id, Name: a.Name, Mime: a.Mime, Size: len(fdata)}
	}
	if docJSON == nil {
		http.Error(w, "no document.json found in bundle", http.StatusBadRequest)
		return
	}

	doc, err := document.Parse(docJSON)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for i := range doc.Layers {
		if info, ok := imported[path.Clean(doc.Layers[i].FileURL)]; ok {
			doc.Layers[i].FileURL = assets.SchemePrefix + info.ID
		}
	}

	list := make([]assets.Info, 0, len(imported))
	for _, info := range imported {
		list = append(list, info)
	}
	writeJSON(w, map[string]any{"document": doc, "assets": list})
}

// ── Upload ──

func (s *Server) handleUploadFont(w http.ResponseWriter, r *http.Request) {
	data, name, err := readUpload(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	family, err := s.engine.RegisterFont(r.FormValue("family"), data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := s.store.Add(name, data, "font/ttf")
	writeJSON(w, map[string]string{
		"id":     id,
		"name":   name,
		"family": family,
		"url":    assets.APIPrefix + id,
	})
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	data, name, err := readUpload(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := assets.Decode(data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := s.store.Add(name, data, mime.TypeByExtension(filepath.Ext(name)))
	writeJSON(w, map[string]string{
		"id":   id,
		"name": name,
		"src":  assets.SchemePrefix + id,
		"url":  assets.APIPrefix + id,
	})
}

func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("no file: %w", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	return data, sanitizeFilename(header.Filename), nil
}

// ── Asset serving ──

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", a.Mime)
	w.Write(a.Data)
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.List())
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.store.Remove(id) {
		http.NotFound(w, r)
		return
	}
	s.engine.Cache().Forget(assets.SchemePrefix + id)
	s.engine.Cache().Forget(assets.APIPrefix + id)
	s.engine.Cache().Forget(id)
	writeJSON(w, map[string]string{"status": "deleted", "id": id})
}

func (s *Server) handleListFonts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.Fonts().Families())
}

// ── Helpers ──

// fail maps an error to a status code: client input errors are 400,
// layer failures 422, cancellations 499 and anything else 500.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var (
		reqErr   requestError
		layerErr *render.LayerError
		status   = http.StatusInternalServerError
	)
	switch {
	case errors.As(err, &reqErr):
		status = http.StatusBadRequest
	case errors.As(err, &layerErr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		status = 499
	}
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "/" {
		return "upload"
	}
	return name
}

func displayAddr(a net.Addr) string {
	host, port, err := net.SplitHostPort(a.String())
	if err != nil {
		return a.String()
	}
	if host == "" || host == "::" || host == "0.0.0.0" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	cmd.Start()
}
