package parser

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nontonanime/api/internal/config"
	"github.com/nontonanime/api/internal/models"
)

// SearchParser extracts search hits, including their genre tags and synopsis
type SearchParser struct{}

// NewSearchParser creates a new search parser instance
func NewSearchParser() Parser[models.SearchResult] {
	return &SearchParser{}
}

// ParseHtml parses a search result page
func (p *SearchParser) ParseHtml(body io.Reader) ([]models.SearchResult, error) {
	logger := config.GetLogger()

	doc, err := newDocument(body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse search page")
		return nil, err
	}

	sel := searchProfile

	// Icon glyphs sit inside the rating and type badges and would pollute their text.
	doc.Find(sel.Noise).Remove()

	results := make([]models.SearchResult, 0)
	doc.Find(sel.Root).Each(func(i int, hit *goquery.Selection) {
		href, _ := hit.Attr("href")
		result := models.SearchResult{
			Title:    text(hit, sel.Title),
			Image:    attr(hit, sel.Image, "src"),
			Rating:   text(hit, sel.Rating),
			Type:     text(hit, sel.Type),
			Season:   text(hit, sel.Season),
			Synopsis: text(hit, sel.Synopsis),
			Genres:   make([]string, 0),
			URL:      href,
		}
		hit.Find(sel.Genre).Each(func(j int, genre *goquery.Selection) {
			result.Genres = append(result.Genres, strings.TrimSpace(genre.Text()))
		})
		results = append(results, result)
	})

	logger.Debug().Int("results", len(results)).Msg("Parsed search page")
	return results, nil
}
