package cli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stemma/pkg/assets"
	"github.com/matzehuels/stemma/pkg/chart"
	"github.com/matzehuels/stemma/pkg/document"
	"github.com/matzehuels/stemma/pkg/errors"
	"github.com/matzehuels/stemma/pkg/render"
)

// serveCommand creates the "serve" command, which exposes one chart file
// over a local HTTP API for a browser frontend.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Serve a chart over a local HTTP API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := requireFile(args[0]); err != nil {
				return err
			}

			doc, err := c.openDocument(ctx, args[0])
			if err != nil {
				return err
			}
			defer doc.Close(context.Background())

			srv := &server{
				doc:    doc,
				photos: assets.NewFetcher(c.newCache(ctx, noCache), c.Logger),
				logger: c.Logger,
			}
			httpSrv := &http.Server{
				Addr:              c.cfg.serverAddr(addr),
				Handler:           srv.routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			shutdownDone := make(chan struct{})
			go func() {
				defer close(shutdownDone)
				<-ctx.Done()
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := httpSrv.Shutdown(sctx); err != nil {
					c.Logger.Debug("shutdown", "error", err)
				}
			}()

			printSuccess("Serving %s", args[0])
			printDetail("API: http://%s/api", httpSrv.Addr)
			printDetail("Press Ctrl+C to stop")

			if err := httpSrv.ListenAndServe(); !stderrors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(errors.ErrCodeNetwork, err, "serve on %s", httpSrv.Addr)
			}
			<-shutdownDone
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "bind address (default "+DefaultAddr+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the photo cache")

	return cmd
}

// server carries the single served document through the HTTP handlers.
type server struct {
	doc    *document.Document
	photos *assets.Fetcher
	logger *log.Logger
}

// routes assembles the API router.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		// Local development API: any origin may talk to it.
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/chart", s.handleGetChart)
		r.Put("/chart", s.handleReplaceChart)

		r.Post("/nodes", s.handleAddNode)
		r.Patch("/nodes/{id}", s.handlePatchNode)
		r.Delete("/nodes/{id}", s.handleRemoveNode)
		r.Post("/nodes/{id}/move", s.handleMoveNode)
		r.Post("/drag/end", s.handleEndDrag)

		r.Post("/connections", s.handleConnect)
		r.Patch("/connections/{id}", s.handlePatchConnection)
		r.Delete("/connections/{id}", s.handleRemoveConnection)

		r.Post("/undo", s.handleUndo)
		r.Post("/redo", s.handleRedo)
		r.Get("/history", s.handleHistory)

		r.Post("/layout", s.handleLayout)
		r.Put("/selection", s.handleSelection)
		r.Post("/clipboard/copy", s.handleCopy)
		r.Post("/clipboard/paste", s.handlePaste)

		r.Get("/presets", s.handleListPresets)
		r.Post("/presets", s.handleCreatePreset)
		r.Post("/presets/{id}/apply", s.handleApplyPreset)
		r.Patch("/presets/{id}", s.handleRenamePreset)
		r.Delete("/presets/{id}", s.handleRemovePreset)

		r.Get("/export/svg", s.handleExportSVG)
	})

	return r
}

// requestLogger logs every request at debug with its status and timing.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"dur", time.Since(start))
	})
}

// ============================================================================
// Document content
// ============================================================================

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleGetChart(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, s.doc.Serialize())
}

// handleReplaceChart swaps the whole document for the posted envelope.
// The operation is destructive, so it requires ?confirm=true; the 409
// answer tells the frontend to put up its own confirmation dialog.
func (s *server) handleReplaceChart(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		s.respond(w, http.StatusConflict, apiError{apiErrorBody{
			Code:    "CONFIRM_REQUIRED",
			Message: "replacing the chart requires ?confirm=true",
		}})
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	env, err := document.Decode(data)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.doc.Restore(env); err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, http.StatusOK, s.doc.Serialize())
}

// ============================================================================
// Nodes
// ============================================================================

func (s *server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind chart.Kind `json:"kind"`
		X    float64    `json:"x"`
		Y    float64    `json:"y"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	id := s.doc.AddNode(req.Kind, chart.Position{X: req.X, Y: req.Y})
	s.respond(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *server) handlePatchNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.doc.Node(id); !ok {
		s.respondError(w, errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id))
		return
	}
	var patch chart.DataPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.respondError(w, err)
		return
	}
	// Routed through the typing batcher: successive patches from the
	// same editing session coalesce into one undo entry.
	changed := s.doc.EditNodeData(id, patch)
	s.respond(w, http.StatusOK, map[string]bool{"updated": changed})
}

func (s *server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.doc.RemoveNode(id) {
		s.respondError(w, errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleMoveNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		X       float64 `json:"x"`
		Y       float64 `json:"y"`
		Gesture string  `json:"gesture"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	pos := chart.Position{X: req.X, Y: req.Y}
	var ok bool
	if req.Gesture == "drag" {
		ok = s.doc.DragNode(id, pos)
	} else {
		ok = s.doc.MoveNode(id, pos)
	}
	if !ok {
		s.respondError(w, errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleEndDrag(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]bool{"committed": s.doc.EndDrag()})
}

// ============================================================================
// Connections
// ============================================================================

func (s *server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source       string       `json:"source"`
		Target       string       `json:"target"`
		SourceAnchor chart.Anchor `json:"sourceAnchor"`
		TargetAnchor chart.Anchor `json:"targetAnchor"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if _, ok := s.doc.Node(req.Source); !ok {
		s.respondError(w, errors.New(errors.ErrCodeNodeNotFound, "source node %s not found", req.Source))
		return
	}
	if _, ok := s.doc.Node(req.Target); !ok {
		s.respondError(w, errors.New(errors.ErrCodeNodeNotFound, "target node %s not found", req.Target))
		return
	}

	id := s.doc.Connect(req.Source, req.Target, req.SourceAnchor, req.TargetAnchor)
	if id == "" {
		s.respondError(w, errors.New(errors.ErrCodeInvalidAnchor,
			"connections run from a bottom anchor to a top, left, or right anchor"))
		return
	}
	s.respond(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *server) handlePatchConnection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.hasConnection(id) {
		s.respondError(w, errors.New(errors.ErrCodeNotFound, "connection %s not found", id))
		return
	}
	var patch chart.StylePatch
	if err := decodeJSON(r, &patch); err != nil {
		s.respondError(w, err)
		return
	}
	changed := s.doc.UpdateConnectionStyle(id, patch)
	s.respond(w, http.StatusOK, map[string]bool{"updated": changed})
}

func (s *server) handleRemoveConnection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.doc.RemoveConnection(id) {
		s.respondError(w, errors.New(errors.ErrCodeNotFound, "connection %s not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) hasConnection(id string) bool {
	for _, c := range s.doc.Connections() {
		if c.ID == id {
			return true
		}
	}
	return false
}

// ============================================================================
// History, layout, selection, clipboard
// ============================================================================

func (s *server) handleUndo(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]bool{"applied": s.doc.Undo()})
}

func (s *server) handleRedo(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]bool{"applied": s.doc.Redo()})
}

func (s *server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]bool{
		"canUndo": s.doc.CanUndo(),
		"canRedo": s.doc.CanRedo(),
	})
}

func (s *server) handleLayout(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]bool{"changed": s.doc.AutoLayout()})
}

func (s *server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if len(req.IDs) == 0 {
		s.doc.ClearSelection()
	} else {
		s.doc.Select(req.IDs...)
	}
	s.respond(w, http.StatusOK, map[string][]string{"selected": s.doc.Selection()})
}

func (s *server) handleCopy(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]int{"copied": s.doc.CopySelection()})
}

func (s *server) handlePaste(w http.ResponseWriter, _ *http.Request) {
	ids := s.doc.Paste()
	if ids == nil {
		ids = []string{}
	}
	s.respond(w, http.StatusOK, map[string][]string{"ids": ids})
}

// ============================================================================
// Presets
// ============================================================================

func (s *server) handleListPresets(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]any{"presets": s.doc.Presets()})
}

func (s *server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	// The name is optional; an empty body keeps the generated one.
	var req struct {
		Name string `json:"name"`
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			s.respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
			return
		}
	}

	id := s.doc.CreatePreset()
	if id == "" {
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "nothing selected"))
		return
	}
	if req.Name != "" {
		s.doc.RenamePreset(id, req.Name)
	}
	s.respond(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *server) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ids := s.doc.ApplyPreset(id)
	if ids == nil {
		s.respondError(w, errors.New(errors.ErrCodePresetNotFound, "preset %s not found", id))
		return
	}
	s.respond(w, http.StatusOK, map[string][]string{"ids": ids})
}

func (s *server) handleRenamePreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "name must not be empty"))
		return
	}
	if !s.doc.RenamePreset(id, req.Name) {
		s.respondError(w, errors.New(errors.ErrCodePresetNotFound, "preset %s not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRemovePreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.doc.RemovePreset(id) {
		s.respondError(w, errors.New(errors.ErrCodePresetNotFound, "preset %s not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Export
// ============================================================================

func (s *server) handleExportSVG(w http.ResponseWriter, r *http.Request) {
	opts := render.Options{}
	if r.URL.Query().Get("photos") == "true" {
		opts.EmbedPhotos = true
		opts.Photos = s.photos
	}
	svg, err := render.RenderSVG(r.Context(), s.doc.Snapshot(), opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(svg); err != nil {
		s.logger.Debug("write svg response", "error", err)
	}
}

// ============================================================================
// Response plumbing
// ============================================================================

// apiError is the JSON error body: { "error": { "code", "message" } }.
type apiError struct {
	Error apiErrorBody `json:"error"`
}

type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("encode response", "error", err)
	}
}

func (s *server) respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	s.respond(w, statusFor(code), apiError{apiErrorBody{
		Code:    string(code),
		Message: errors.UserMessage(err),
	}})
}

// statusFor maps error codes onto HTTP statuses.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidColor, errors.ErrCodeInvalidAnchor,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPhotoRef, errors.ErrCodeInvalidPath,
		errors.ErrCodeImportFailed:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound,
		errors.ErrCodePresetNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON parses a request body, flagging malformed payloads as
// invalid input.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
