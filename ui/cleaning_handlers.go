package ui

import (
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"tidytab/domain/cleaning"
	"tidytab/internal/errors"
	"tidytab/ui/middleware"

	"github.com/gin-gonic/gin"
)

// readUpload returns the name and content of the "file" form field
func (s *Server) readUpload(c *gin.Context) (string, []byte, error) {
	limit := s.config.Limits.MaxUploadBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			return "", nil, errors.PayloadTooLarge("upload", maxErr.Limit, limit)
		}
		return "", nil, errors.InvalidInput("No file selected")
	}
	if fileHeader.Size > limit {
		return "", nil, errors.PayloadTooLarge("upload", fileHeader.Size, limit)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to open upload")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to read upload")
	}
	return fileHeader.Filename, content, nil
}

func (s *Server) handleUpload(c *gin.Context) {
	filename, content, err := s.readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := s.cleaning.Upload(c.Request.Context(), middleware.SessionID(c), filename, content)
	if err != nil {
		log.Printf("[handleUpload] FAILED - %s: %v", filename, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename":                result.Filename,
		"columns":                 result.Preview.Columns,
		"preview_rows":            result.Preview.Rows,
		"row_count":               result.Preview.RowCount,
		"duplicates":              result.Duplicates,
		"allow_ignore_duplicates": true,
	})
}

// bindDecision accepts both the HTML form fields and a JSON body
func bindDecision(c *gin.Context) (cleaning.Decision, error) {
	var d cleaning.Decision
	if strings.HasPrefix(c.ContentType(), "application/json") {
		if err := c.ShouldBindJSON(&d); err != nil {
			return d, errors.InvalidInput(fmt.Sprintf("invalid decision: %v", err))
		}
		return d, nil
	}

	d.Ignore = c.PostForm("ignore_duplicates") != ""
	d.RemoveColumns = c.PostFormArray("remove_columns")
	return d, nil
}

func (s *Server) handleRemoveDuplicates(c *gin.Context) {
	decision, err := bindDecision(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := s.cleaning.Resolve(c.Request.Context(), middleware.SessionID(c), decision)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"columns":      result.Preview.Columns,
		"preview_rows": result.Preview.Rows,
		"row_count":    result.Preview.RowCount,
		"column_count": result.Preview.ColumnCount,
		"removed":      result.Removed,
	})
}

func (s *Server) handleDownload(c *gin.Context) {
	file, err := s.cleaning.Export(c.Request.Context(), middleware.SessionID(c), c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, file.Filename, file.ContentType, file.Data)
}

func (s *Server) handleSession(c *gin.Context) {
	session, err := s.cleaning.Session(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	preview := session.Table.Head(s.config.Limits.PreviewRows, 0)
	c.JSON(http.StatusOK, gin.H{
		"state":        session.State,
		"filename":     session.Filename,
		"columns":      preview.Columns,
		"preview_rows": preview.Rows,
		"row_count":    preview.RowCount,
		"duplicates":   session.Duplicates,
		"removed":      session.Removed,
		"updated_at":   session.UpdatedAt,
	})
}

func (s *Server) handleAbandon(c *gin.Context) {
	if err := s.cleaning.Abandon(c.Request.Context(), middleware.SessionID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func sendFile(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
