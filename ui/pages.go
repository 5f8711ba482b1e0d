package ui

import (
	"bytes"
	"embed"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"path"
	"strings"

	"tidytab/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed pages/*.md
var pageFiles embed.FS

// sitemapPages are the public pages listed in sitemap.xml, in order
var sitemapPages = []string{"home", "about", "terms", "privacy", "contact"}

type page struct {
	Title string
	HTML  []byte
}

// pageSet holds the rendered static pages keyed by name
type pageSet struct {
	pages map[string]page
}

// loadPages renders every embedded markdown page once at startup
func loadPages() (*pageSet, error) {
	entries, err := pageFiles.ReadDir("pages")
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	set := &pageSet{pages: make(map[string]page, len(entries))}
	for _, entry := range entries {
		source, err := pageFiles.ReadFile(path.Join("pages", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read page %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ".md")
		set.pages[name] = page{Title: pageTitle(source, name), HTML: renderMarkdown(source)}
	}
	return set, nil
}

func renderMarkdown(source []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return markdown.ToHTML(source, p, renderer)
}

// pageTitle is the text of the first level-one heading
func pageTitle(source []byte, fallback string) string {
	for _, line := range strings.Split(string(source), "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return fallback
}

func (s *Server) handlePage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := s.pages.pages[name]
		if !ok {
			respondError(c, errors.NotFound("page"))
			return
		}

		var doc bytes.Buffer
		fmt.Fprintf(&doc, "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n",
			html.EscapeString(p.Title))
		doc.Write(p.HTML)
		doc.WriteString("</body>\n</html>\n")
		c.Data(http.StatusOK, "text/html; charset=utf-8", doc.Bytes())
	}
}

func (s *Server) handleConvertPage(c *gin.Context) {
	s.handlePage("convert")(c)
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (s *Server) handleSitemap(c *gin.Context) {
	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, name := range sitemapPages {
		loc := s.config.Site.BaseURL + "/"
		if name != "home" {
			loc += name
		}
		set.URLs = append(set.URLs, sitemapURL{Loc: loc, ChangeFreq: "monthly", Priority: "0.5"})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
