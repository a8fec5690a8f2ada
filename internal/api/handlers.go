package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/outbound-dialer/internal/dialer"
	"github.com/sells-group/outbound-dialer/internal/lead"
)

type envelope struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	UploadID string          `json:"upload_id,omitempty"`
	Summary  *dialer.Summary `json:"summary,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, envelope{Status: "error", Message: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file part in the request")
		return
	}
	defer file.Close() //nolint:errcheck

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}
	if _, ok := lead.FormatFor(header.Filename); !ok {
		writeError(w, http.StatusBadRequest, "Please upload a CSV or XLSX file")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	up, err := s.uploads.SaveUpload(r.Context(), header.Filename, content)
	if err != nil {
		zap.L().Error("api: save upload", zap.String("filename", header.Filename), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not store uploaded file")
		return
	}

	zap.L().Info("api: file uploaded",
		zap.String("upload_id", up.ID),
		zap.String("filename", up.Filename),
		zap.Int64("size", up.Size),
	)
	writeJSON(w, http.StatusOK, envelope{
		Status:   "success",
		Message:  "File uploaded successfully",
		UploadID: up.ID,
	})
}

// runRequest is the optional JSON body of /run-script.
type runRequest struct {
	UploadID string `json:"upload_id"`
}

func (s *Server) handleRunScript(w http.ResponseWriter, r *http.Request) {
	uploadID := r.URL.Query().Get("upload_id")
	if uploadID == "" && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req runRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		uploadID = req.UploadID
	}

	res, err := s.runner.Run(r.Context(), uploadID)
	if err != nil {
		if errors.Is(err, dialer.ErrUploadNotFound) {
			writeError(w, http.StatusNotFound, "Upload not found: "+uploadID)
			return
		}
		zap.L().Error("api: run batch", zap.String("upload_id", uploadID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Error running batch: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Status:   "success",
		Message:  res.Message,
		UploadID: res.UploadID,
		Summary:  res.Summary,
	})
}
