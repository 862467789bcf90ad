package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/michaelbrown/codepad/internal/sandbox"
	"github.com/michaelbrown/codepad/internal/storage"
)

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// --- Execution service ---

// successOutput replaces an empty program output.
const successOutput = "Code executed successfully"

const historyLimit = 10

type executeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type executeResponse struct {
	Output        string  `json:"output"`
	Error         *string `json:"error"`
	ExecutionTime float64 `json:"execution_time"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if s.runner == nil || !s.runner.Available() {
		writeError(w, http.StatusServiceUnavailable, sandbox.ErrUnavailable.Error())
		return
	}

	start := time.Now()
	out, err := s.runner.Run(r.Context(), req.Language, req.Code)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		status := http.StatusInternalServerError
		msg := "Failed to execute code: " + err.Error()
		switch {
		case errors.Is(err, sandbox.ErrUnsupportedLanguage):
			status = http.StatusBadRequest
			msg = err.Error()
		case errors.Is(err, sandbox.ErrUnavailable):
			status = http.StatusServiceUnavailable
			msg = sandbox.ErrUnavailable.Error()
		}
		s.logger.Error("code execution failed", "language", req.Language, "err", err)
		s.recordExecution(r.Context(), req, "", msg, elapsed)
		writeError(w, status, msg)
		return
	}

	s.recordExecution(r.Context(), req, out.Output, out.Error, elapsed)

	resp := executeResponse{Output: out.Output, ExecutionTime: elapsed}
	if resp.Output == "" {
		resp.Output = successOutput
	}
	if out.Error != "" {
		resp.Error = &out.Error
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) recordExecution(ctx context.Context, req executeRequest, output, errMsg string, elapsed float64) {
	if s.store == nil {
		return
	}
	e := &storage.Execution{
		ID:            uuid.New().String(),
		Code:          req.Code,
		Language:      req.Language,
		Output:        output,
		Error:         errMsg,
		ExecutionTime: elapsed,
	}
	if err := s.store.RecordExecution(context.WithoutCancel(ctx), e); err != nil {
		s.logger.Error("recording execution failed", "err", err)
	}
}

func (s *Server) handleListExecutions(w http.ResponseWriter, r *http.Request) {
	executions := []storage.Execution{}
	if s.store != nil {
		list, err := s.store.ListExecutions(r.Context(), historyLimit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch execution history: "+err.Error())
			return
		}
		if list != nil {
			executions = list
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"executions": executions})
}
