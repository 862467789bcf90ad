package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/filestore"
	"github.com/michaelbrown/codepad/internal/storage"
)

type fileResponse struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Content  string `json:"content"`
	Current  bool   `json:"current"`
}

func (s *Server) file(name string) (fileResponse, bool) {
	rec, ok := s.ws.File(name)
	if !ok {
		return fileResponse{}, false
	}
	current, _ := s.ws.CurrentFile()
	return toFileResponse(name, rec, current), true
}

func toFileResponse(name string, rec filestore.Record, current string) fileResponse {
	return fileResponse{
		Name:     name,
		Language: string(rec.Language),
		Content:  rec.Content,
		Current:  name == current,
	}
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, storage.NewExport(s.ws.Snapshot()))
}

type createFileRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateFile(w http.ResponseWriter, r *http.Request) {
	var req createFileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !s.ws.Create(name) {
		writeError(w, http.StatusConflict, "file already exists")
		return
	}

	f, _ := s.file(name)
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	f, ok := s.file(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

type updateFileRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleUpdateFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req updateFileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if !s.ws.UpdateContent(name, req.Content) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	f, _ := s.file(name)
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if _, ok := s.ws.File(name); !ok {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if !s.ws.Delete(name) {
		writeError(w, http.StatusConflict, "cannot delete the last file")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if !s.ws.Select(name) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	f, _ := s.file(name)
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleCurrentFile(w http.ResponseWriter, r *http.Request) {
	name, rec := s.ws.CurrentFile()
	writeJSON(w, http.StatusOK, toFileResponse(name, rec, name))
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ws.Run(r.Context()))
}

type outputResponse struct {
	Result  execution.Result `json:"result"`
	Running bool             `json:"running"`
}

func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	res, running := s.ws.Output()
	writeJSON(w, http.StatusOK, outputResponse{Result: res, Running: running})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.ws.Snapshot()

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, storage.NewExport(snap))
	case "yaml":
		data, err := storage.ExportYAML(snap)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(data)
	case "md", "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, storage.ExportMarkdown(snap))
	default:
		writeError(w, http.StatusBadRequest, "unknown format: "+format)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	exp, err := storage.ParseExport(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	n := s.ws.Import(exp)
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}
