package app

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"tidytab/internal/errors"
	"tidytab/ports"

	"golang.org/x/sync/semaphore"
)

// ConvertService validates conversion requests and caps how many run at once
type ConvertService struct {
	converter ports.DocumentConverter
	slots     *semaphore.Weighted
	maxUpload int64
}

// NewConvertService creates a conversion service allowing maxConcurrent conversions
func NewConvertService(converter ports.DocumentConverter, maxConcurrent, maxUpload int64) *ConvertService {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &ConvertService{
		converter: converter,
		slots:     semaphore.NewWeighted(maxConcurrent),
		maxUpload: maxUpload,
	}
}

// DocxToPDF converts a .docx upload; the result is named after the input
func (s *ConvertService) DocxToPDF(ctx context.Context, filename string, content []byte) (*FileResult, error) {
	return s.convert(ctx, filename, content, ".docx", ".pdf", "application/pdf", "Invalid DOCX file", s.converter.DocxToPDF)
}

// PDFToDocx converts a .pdf upload; the result is named after the input
func (s *ConvertService) PDFToDocx(ctx context.Context, filename string, content []byte) (*FileResult, error) {
	return s.convert(ctx, filename, content, ".pdf", ".docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "Invalid PDF file", s.converter.PDFToDocx)
}

func (s *ConvertService) convert(
	ctx context.Context,
	filename string,
	content []byte,
	fromExt, toExt, contentType, invalidMsg string,
	fn func([]byte) ([]byte, error),
) (*FileResult, error) {
	ext := filepath.Ext(filename)
	if strings.ToLower(ext) != fromExt || len(content) == 0 {
		return nil, errors.InvalidInput(invalidMsg)
	}
	if s.maxUpload > 0 && int64(len(content)) > s.maxUpload {
		return nil, errors.PayloadTooLarge("upload", int64(len(content)), s.maxUpload)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !s.slots.TryAcquire(1) {
		log.Printf("[ConvertService] Rejected %s: all conversion slots busy", filename)
		return nil, errors.Busy("converter is busy, try again shortly")
	}
	defer s.slots.Release(1)

	out, err := fn(content)
	if err != nil {
		log.Printf("[ConvertService] Failed to convert %s: %v", filename, err)
		return nil, &errors.AppError{Code: errors.CodeInvalidInput, Message: invalidMsg, Cause: err}
	}

	stem := strings.TrimSuffix(filepath.Base(filename), ext)
	return &FileResult{
		Filename:    stem + toExt,
		ContentType: contentType,
		Data:        out,
	}, nil
}
