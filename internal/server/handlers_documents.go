package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/jonathan/cv-optimizer/internal/config"
	"github.com/jonathan/cv-optimizer/internal/documents"
	"github.com/jonathan/cv-optimizer/internal/outline"
	"github.com/jonathan/cv-optimizer/internal/render"
)

// multipartOverhead allows for form boundaries and headers around the uploaded file.
const multipartOverhead = 64 << 10

type generatePDFRequest struct {
	Content  string `json:"content" validate:"required"`
	FileName string `json:"fileName" validate:"max=200"`
}

type fetchPostingRequest struct {
	URL string `json:"url" validate:"required"`
}

type outlineRequest struct {
	Content string `json:"content" validate:"required"`
}

// handleParseDocument extracts plain text from an uploaded PDF or DOCX file.
func (s *Server) handleParseDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(w, r, &documents.TooLargeError{Size: tooBig.Limit, Limit: config.MaxUploadBytes})
			return
		}
		fail(w, r, &ErrValidation{Message: "invalid multipart form"})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, r, &ErrValidation{Field: "file", Message: "is required"})
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > config.MaxUploadBytes {
		fail(w, r, &documents.TooLargeError{Size: header.Size, Limit: config.MaxUploadBytes})
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		fail(w, r, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	text, err := documents.Extract(header.Filename, data)
	if err != nil {
		fail(w, r, err)
		return
	}
	success(w, r, map[string]string{"text": text, "fileName": header.Filename})
}

// handleGeneratePDF lays out CV text and returns it as a PDF download.
func (s *Server) handleGeneratePDF(w http.ResponseWriter, r *http.Request) {
	var req generatePDFRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	pdf, err := s.renderer.Render(r.Context(), req.Content)
	if err != nil {
		fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.FileName(req.FileName)))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write PDF response")
	}
}

// handleFetchJobPosting imports the text of a job posting from a URL.
func (s *Server) handleFetchJobPosting(w http.ResponseWriter, r *http.Request) {
	var req fetchPostingRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	posting, err := s.importer.Import(r.Context(), req.URL)
	if err != nil {
		fail(w, r, err)
		return
	}
	success(w, r, map[string]any{"posting": posting})
}

// handleOutline returns the section outline of CV text.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	var req outlineRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	success(w, r, map[string]any{"outline": outline.Parse(req.Content)})
}
