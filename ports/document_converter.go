package ports

// DocumentConverter converts documents between DOCX and PDF entirely in memory
type DocumentConverter interface {
	DocxToPDF(docx []byte) ([]byte, error)
	PDFToDocx(pdf []byte) ([]byte, error)
}
