package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/avergnaud/atelier/internal/content"
	"github.com/avergnaud/atelier/internal/docsource"
	"github.com/avergnaud/atelier/internal/render"
)

// serviceError maps engine errors to HTTP status codes. Structural
// rejections (bad titles, bad positions, failed export validation) are 422,
// missing rows are 404, everything else is a 500.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	var (
		emptyTitle  *content.EmptyTitleError
		badLevel    *content.NegativeTitleLevelError
		badIncrease *content.InvalidLevelIncreaseError
		badPosition *content.InvalidPositionError
	)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, content.ErrNoTitleFound),
		errors.As(err, &emptyTitle),
		errors.As(err, &badLevel),
		errors.As(err, &badIncrease),
		errors.As(err, &badPosition),
		strings.Contains(err.Error(), "export schema validation"):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		s.log.Error("request failed", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func urlID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

type importRequest struct {
	Text    string   `json:"text"`
	Shape   string   `json:"shape"`
	Authors []string `json:"authors,omitempty"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	shape := content.Shape(req.Shape)
	if !shape.Valid() {
		jsonError(w, fmt.Sprintf("unknown shape %q", req.Shape), http.StatusBadRequest)
		return
	}

	tut, err := s.svc.Import(r.Context(), actor(r), req.Text, shape, req.Authors)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tut)
}

// handleImportUpload accepts a document file (.md, .html, .docx, .pdf),
// converts it to markdown and imports it.
func (s *Server) handleImportUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	shape := content.Shape(r.FormValue("shape"))
	if !shape.Valid() {
		jsonError(w, fmt.Sprintf("unknown shape %q", r.FormValue("shape")), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	src, err := docsource.ForFile(filename)
	if err != nil {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	limited := io.LimitReader(file, s.cfg.MaxUploadBytes+1)
	lines, err := src.Lines(limited, filename)
	if err != nil {
		jsonError(w, "convert document: "+err.Error(), http.StatusBadRequest)
		return
	}

	var authors []string
	if v := r.FormValue("authors"); v != "" {
		authors = strings.Split(v, ",")
		for i := range authors {
			authors[i] = strings.TrimSpace(authors[i])
		}
	}

	tut, err := s.svc.Import(r.Context(), actor(r), strings.Join(lines, "\n"), shape, authors)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tut)
}

func (s *Server) handleGetTutorial(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "tutorialID")
	if err != nil {
		jsonError(w, "invalid tutorial id", http.StatusBadRequest)
		return
	}
	tut, err := s.svc.GetTutorial(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tut)
}

func (s *Server) handleEditTutorial(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "tutorialID")
	if err != nil {
		jsonError(w, "invalid tutorial id", http.StatusBadRequest)
		return
	}
	var edit content.TutorialEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	tut, err := s.svc.EditTutorial(r.Context(), actor(r), id, edit)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tut)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "tutorialID")
	if err != nil {
		jsonError(w, "invalid tutorial id", http.StatusBadRequest)
		return
	}
	doc, err := s.svc.Export(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "tutorialID")
	if err != nil {
		jsonError(w, "invalid tutorial id", http.StatusBadRequest)
		return
	}
	md, err := s.svc.Markdown(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(md))
}

func (s *Server) handleTutorialHTML(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "tutorialID")
	if err != nil {
		jsonError(w, "invalid tutorial id", http.StatusBadRequest)
		return
	}
	md, err := s.svc.Markdown(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	html, err := render.ToHTML(md)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

type moveRequest struct {
	Position int `json:"position"`
}

func (s *Server) handleMovePart(w http.ResponseWriter, r *http.Request) {
	s.handleMove(w, r, "partID", s.svc.MovePart)
}

func (s *Server) handleMoveChapter(w http.ResponseWriter, r *http.Request) {
	s.handleMove(w, r, "chapterID", s.svc.MoveChapter)
}

func (s *Server) handleMoveExtract(w http.ResponseWriter, r *http.Request) {
	s.handleMove(w, r, "extractID", s.svc.MoveExtract)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request, param string, move func(ctx context.Context, actor string, id int64, pos int) error) {
	id, err := urlID(r, param)
	if err != nil {
		jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := move(r.Context(), actor(r), id, req.Position); err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "position": req.Position})
}

type addChapterRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleAddChapter(w http.ResponseWriter, r *http.Request) {
	partID, err := urlID(r, "partID")
	if err != nil {
		jsonError(w, "invalid part id", http.StatusBadRequest)
		return
	}
	var req addChapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		jsonError(w, "title is required", http.StatusBadRequest)
		return
	}
	ch, err := s.svc.AddChapter(r.Context(), actor(r), partID, req.Title)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ch)
}

type addExtractRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

func (s *Server) handleAddExtract(w http.ResponseWriter, r *http.Request) {
	chapterID, err := urlID(r, "chapterID")
	if err != nil {
		jsonError(w, "invalid chapter id", http.StatusBadRequest)
		return
	}
	var req addExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		jsonError(w, "title is required", http.StatusBadRequest)
		return
	}
	ex, err := s.svc.AddExtract(r.Context(), actor(r), chapterID, req.Title, req.Text)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleDeletePart(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, "partID", s.svc.DeletePart)
}

func (s *Server) handleDeleteChapter(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, "chapterID", s.svc.DeleteChapter)
}

func (s *Server) handleDeleteExtract(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, "extractID", s.svc.DeleteExtract)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, param string, del func(ctx context.Context, actor string, id int64) error) {
	id, err := urlID(r, param)
	if err != nil {
		jsonError(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := del(r.Context(), actor(r), id); err != nil {
		s.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
