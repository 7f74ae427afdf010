package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/xob0t/posterkit/pkg/generator"
	"github.com/xob0t/posterkit/pkg/portfolio"
	"github.com/xob0t/posterkit/pkg/poster"
	"github.com/xob0t/posterkit/pkg/session"
)

// stateResponse is returned by every endpoint that changes or reads a
// session's current state.
type stateResponse struct {
	Phase    string             `json:"phase"`
	State    *poster.StyleState `json:"state,omitempty"`
	Position session.Position   `json:"position"`
	Moved    *bool              `json:"moved,omitempty"`
}

func snapshot(sess *session.Session) stateResponse {
	resp := stateResponse{Phase: sess.Phase().String(), Position: sess.Position()}
	if st, ok := sess.Current(); ok {
		resp.State = &st
	}
	return resp
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, poster.Categories)
}

// ── Sessions ──

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	id, _ := s.sessions.Create()
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(chi.URLParam(r, "id")) {
		writeError(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session looks up the {id} session, writing a 404 if it is gone.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, "session not found", http.StatusNotFound)
	}
	return sess, ok
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	data, err := readUpload(w, r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := sess.UploadImage(data); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

// readUpload accepts a multipart form with a "file" field or a raw body.
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return data, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("no file")
	}
	defer file.Close()
	return io.ReadAll(file)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req session.GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := sess.Generate(r.Context(), req); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

// handleApplySuggestion accepts a suggestion fetched by the client itself.
func (s *Server) handleApplySuggestion(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Suggestion poster.StyleSuggestion  `json:"suggestion"`
		Request    session.GenerateRequest `json:"request"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if _, err := sess.ApplySuggestion(body.Suggestion, body.Request); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var patch poster.StylePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if _, err := sess.EditField(patch); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(sess))
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, (*session.Session).Undo)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.navigate(w, r, (*session.Session).Redo)
}

func (s *Server) navigate(w http.ResponseWriter, r *http.Request, step func(*session.Session) (poster.StyleState, bool, error)) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	_, moved, err := step(sess)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	resp := snapshot(sess)
	resp.Moved = &moved
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	img, err := sess.Render()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := generator.Encode(&buf, img, generator.Config{Format: generator.FormatPNG}); err != nil {
		writeSessionError(w, err)
		return
	}
	w.Header().Set("Content-Type", generator.FormatPNG.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// handleDownload serves the poster as an attachment. ?format=jpg|bmp|avi
// selects another encoding; ?duration sets the AVI length in seconds.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	format := generator.FormatPNG
	if f := q.Get("format"); f != "" {
		var err error
		if format, err = generator.FormatFromExt(f); err != nil {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	duration, _ := strconv.Atoi(q.Get("duration"))

	img, err := sess.Render()
	if err != nil {
		writeSessionError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := generator.Encode(&buf, img, generator.Config{Format: format, Duration: duration}); err != nil {
		writeSessionError(w, err)
		return
	}
	writeAttachment(w, downloadName(format), format.ContentType(), buf.Bytes())
}

func downloadName(f generator.Format) string {
	if f == generator.FormatPNG {
		return generator.DownloadFilename
	}
	ext := string(f)
	if f == generator.FormatJPEG {
		ext = "jpg"
	}
	return strings.TrimSuffix(generator.DownloadFilename, ".png") + "." + ext
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	rec, err := sess.Save(r.Context(), s.store)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// ── Portfolio ──

func (s *Server) handleListPortfolio(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	if recs == nil {
		recs = []portfolio.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) record(w http.ResponseWriter, r *http.Request) (portfolio.Record, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "pid"), 10, 64)
	if err != nil {
		writeError(w, "invalid poster id", http.StatusBadRequest)
		return portfolio.Record{}, false
	}
	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeSessionError(w, err)
		return portfolio.Record{}, false
	}
	return rec, true
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	if rec, ok := s.record(w, r); ok {
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) handleDownloadPortfolio(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.record(w, r)
	if !ok {
		return
	}
	mimeType, data, err := generator.DecodeDataURLBytes(rec.ImageDataURL)
	if err != nil {
		slog.Error("stored poster has a bad image", "id", rec.ID, "error", err)
		writeError(w, "stored poster is unreadable", http.StatusInternalServerError)
		return
	}
	writeAttachment(w, rec.DownloadName(), mimeType, data)
}

func (s *Server) handleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "pid"), 10, 64)
	if err != nil {
		writeError(w, "invalid poster id", http.StatusBadRequest)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Helpers ──

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		svcErr *session.ServiceError
		decErr *session.DecodeError
	)
	switch {
	case errors.Is(err, session.ErrNoImage),
		errors.Is(err, session.ErrNotComposed),
		errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict
	case errors.As(err, &decErr):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &svcErr):
		return http.StatusBadGateway
	case errors.Is(err, portfolio.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeError(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeAttachment(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(data)
}
