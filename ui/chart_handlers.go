package ui

import (
	"encoding/base64"
	"net/http"

	"tidytab/internal/errors"
	"tidytab/ui/middleware"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleUploadVisualization(c *gin.Context) {
	filename, content, err := s.readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := s.charts.UploadVisualization(c.Request.Context(), middleware.SessionID(c), filename, content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type generateChartRequest struct {
	XColumn   string `form:"x_column" json:"x_column" binding:"required"`
	YColumn   string `form:"y_column" json:"y_column" binding:"required"`
	ChartType string `form:"chart_type" json:"chart_type" binding:"required"`
}

func (s *Server) handleGenerateChart(c *gin.Context) {
	var req generateChartRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, errors.InvalidInput("x_column, y_column and chart_type are required"))
		return
	}

	result, err := s.charts.GenerateChart(c.Request.Context(), middleware.SessionID(c), req.ChartType, req.XColumn, req.YColumn)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"chart_type": result.Spec.Kind,
		"x_column":   result.Spec.X,
		"y_column":   result.Spec.Y,
		"index":      result.Index,
		"count":      result.Count,
		"image":      "data:image/png;base64," + base64.StdEncoding.EncodeToString(result.PNG),
	})
}

func (s *Server) handleDownloadChartsExcel(c *gin.Context) {
	file, err := s.charts.ExportExcel(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, file.Filename, file.ContentType, file.Data)
}

func (s *Server) handleDownloadChartsPDF(c *gin.Context) {
	file, err := s.charts.ExportPDF(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, file.Filename, file.ContentType, file.Data)
}
