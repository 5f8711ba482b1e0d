package ui

import (
	"log"
	"net/http"

	"tidytab/app"
	"tidytab/internal/config"
	"tidytab/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Services are the application services exposed over HTTP
type Services struct {
	Cleaning *app.CleaningService
	Charts   *app.ChartService
	Convert  *app.ConvertService
}

// Server is the tidytab web server
type Server struct {
	router   *gin.Engine
	config   *config.Config
	cleaning *app.CleaningService
	charts   *app.ChartService
	convert  *app.ConvertService
	pages    *pageSet
}

// NewServer wires routes and middleware around the given services
func NewServer(cfg *config.Config, services Services) (*Server, error) {
	pages, err := loadPages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:   gin.New(),
		config:   cfg,
		cleaning: services.Cleaning,
		charts:   services.Charts,
		convert:  services.Convert,
		pages:    pages,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery())
	s.router.MaxMultipartMemory = 8 << 20
	s.router.Use(middleware.SessionCookie(s.config.Session.CookieName, s.config.Session.MaxAge))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	// Data cleaner
	s.router.GET("/", s.handlePage("home"))
	s.router.POST("/", s.handleUpload)
	s.router.POST("/upload", s.handleUpload)
	s.router.POST("/remove-duplicates", s.handleRemoveDuplicates)
	s.router.GET("/download", s.handleDownload)
	s.router.GET("/session", s.handleSession)
	s.router.DELETE("/session", s.handleAbandon)

	// Visualization
	s.router.POST("/upload_visualization", s.handleUploadVisualization)
	s.router.POST("/generate_chart", s.handleGenerateChart)
	s.router.GET("/visualization/download-excel", s.handleDownloadChartsExcel)
	s.router.GET("/download/pdf", s.handleDownloadChartsPDF)

	// Converter
	s.router.GET("/convert", s.handleConvertPage)
	converter := gin.WrapH(s.converterRouter())
	s.router.POST("/convert/docx-to-pdf", converter)
	s.router.POST("/convert/pdf-to-docx", converter)

	// Pages
	s.router.GET("/about", s.handlePage("about"))
	s.router.GET("/terms", s.handlePage("terms"))
	s.router.GET("/privacy", s.handlePage("privacy"))
	s.router.GET("/contact", s.handlePage("contact"))
	s.router.GET("/sitemap.xml", s.handleSitemap)
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	log.Printf("[Server] Registered %d routes", len(s.router.Routes()))
}
