package convert

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/ledongthuc/pdf"
)

// Page layout for DOCX → PDF, in points
const (
	pageMargin  = 50.0
	lineLeading = 15.0
	fontSize    = 12.0
)

// DocumentConverter converts between DOCX and PDF entirely in memory
type DocumentConverter struct{}

// NewDocumentConverter creates a document converter
func NewDocumentConverter() *DocumentConverter {
	return &DocumentConverter{}
}

// DocxToPDF writes each paragraph of the document as one line on Letter pages
func (c *DocumentConverter) DocxToPDF(content []byte) ([]byte, error) {
	startTime := time.Now()
	paras, err := readDocxParagraphs(content)
	if err != nil {
		return nil, err
	}

	doc := fpdf.New("P", "pt", "Letter", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := doc.GetPageSize()
	doc.SetFont("Helvetica", "", fontSize)
	doc.SetAutoPageBreak(false, pageMargin)

	doc.AddPage()
	y := pageMargin
	for _, para := range paras {
		doc.Text(pageMargin, y, tr(para))
		y += lineLeading
		if y > pageHeight-pageMargin {
			doc.AddPage()
			y = pageMargin
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	log.Printf("[DocumentConverter] DOCX → PDF in %.2fms (%d paragraphs, %d pages)",
		float64(time.Since(startTime).Nanoseconds())/1e6, len(paras), doc.PageCount())
	return buf.Bytes(), nil
}

// PDFToDocx extracts the plain text of each page into a DOCX, one paragraph
// per text line and a page break between pages. Layout and images are not kept.
func (c *DocumentConverter) PDFToDocx(content []byte) (out []byte, err error) {
	startTime := time.Now()

	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("not a pdf: %w", err)
	}

	pages := make([][]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d: %w", i, err)
		}
		pages = append(pages, strings.Split(strings.TrimRight(text, "\n"), "\n"))
	}

	out, err = writeDocx(pages)
	if err != nil {
		return nil, err
	}
	log.Printf("[DocumentConverter] PDF → DOCX in %.2fms (%d pages)",
		float64(time.Since(startTime).Nanoseconds())/1e6, len(pages))
	return out, nil
}
