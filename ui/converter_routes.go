package ui

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"tidytab/app"
	"tidytab/internal/errors"

	"github.com/gin-gonic/gin/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type convertFunc func(ctx context.Context, filename string, content []byte) (*app.FileResult, error)

// converterRouter serves the conversion endpoints. It is a plain net/http
// router mounted into gin, so gin's session middleware does not apply.
func (s *Server) converterRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Post("/convert/docx-to-pdf", s.convertHandler("Invalid DOCX file", s.convert.DocxToPDF))
	r.Post("/convert/pdf-to-docx", s.convertHandler("Invalid PDF file", s.convert.PDFToDocx))
	return r
}

func (s *Server) convertHandler(invalidMsg string, convert convertFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := s.config.Limits.MaxUploadBytes
		r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)

		file, header, err := r.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if stderrors.As(err, &maxErr) {
				writeError(w, r, errors.PayloadTooLarge("upload", maxErr.Limit, limit))
				return
			}
			writeError(w, r, errors.InvalidInput(invalidMsg))
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, errors.Wrap(err, "failed to read upload"))
			return
		}

		result, err := convert(r.Context(), header.Filename, content)
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", result.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Data)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(r.URL.Path, err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = render.WriteJSON(w, body)
}
