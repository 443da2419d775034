package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/ledgervault/internal/common"
	"github.com/dmitrijs2005/ledgervault/internal/server/registry"
)

// maxUploadSize bounds the multipart form we are willing to buffer
// (100 MB). Chunked transfer of larger files is out of scope.
const maxUploadSize = 100 << 20

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondMessage(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, map[string]string{"message": message})
}

// respondPipelineError maps the pipeline's sentinel errors onto HTTP
// status codes. Unknown errors are a plain 500; details stay in the log,
// not in the response body.
func (s *Server) respondPipelineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		s.respondMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrNotFound):
		s.respondMessage(w, http.StatusNotFound, "file not found")
	case errors.Is(err, common.ErrIntegrity):
		s.respondMessage(w, http.StatusBadRequest, "file integrity check failed")
	default:
		s.logger.Error(r.Context(), "pipeline error", "error", err.Error())
		s.respondMessage(w, http.StatusInternalServerError, "request failed")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload accepts a multipart form with a binary "file" field and a
// text "filename" field, runs the upload pipeline, and returns the
// ledger transaction id as the file handle.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.respondMessage(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.respondMessage(w, http.StatusBadRequest, "missing file or filename in request")
		return
	}
	defer file.Close()

	filename := r.FormValue("filename")
	if filename == "" {
		s.respondMessage(w, http.StatusBadRequest, "missing file or filename in request")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondMessage(w, http.StatusBadRequest, "failed to read file")
		return
	}

	txID, err := s.vault.Upload(r.Context(), filename, data)
	if err != nil {
		s.respondPipelineError(w, r, err)
		return
	}

	s.recordUpload(r, txID, filename, int64(len(data)))

	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "File uploaded successfully",
		"fileId":  txID,
	})
}

// recordUpload writes the local index entry. The ledger commit already
// succeeded, so a registry failure must not fail the request.
func (s *Server) recordUpload(r *http.Request, txID, filename string, size int64) {
	if s.uploads == nil {
		return
	}
	err := s.uploads.Create(r.Context(), &registry.Upload{
		TxID:      txID,
		Filename:  filename,
		SizeBytes: size,
	})
	if err != nil {
		s.logger.Warn(r.Context(), "failed to record upload in registry",
			"tx_id", txID, "error", err.Error())
	}
}

// handleDownload resolves the transaction id, runs the download
// pipeline, and streams the verified plaintext as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.respondMessage(w, http.StatusBadRequest, "missing file id")
		return
	}

	file, err := s.vault.Download(r.Context(), id)
	if err != nil {
		s.respondPipelineError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

// handleList returns the uploads recorded by this node. This is a local
// convenience index; files uploaded through other nodes do not appear.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.uploads == nil {
		s.respondMessage(w, http.StatusServiceUnavailable, "upload index unavailable")
		return
	}

	files, err := s.uploads.List(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "failed to list uploads", "error", err.Error())
		s.respondMessage(w, http.StatusInternalServerError, "request failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"files": files})
}
