package parser

import (
	"io"

	"github.com/PuerkitoBio/goquery"

	"github.com/nontonanime/api/internal/config"
	"github.com/nontonanime/api/internal/models"
)

// CatalogParser extracts the anime cards of the home page listing
type CatalogParser struct{}

// NewCatalogParser creates a new catalog parser instance
func NewCatalogParser() Parser[models.CatalogEntry] {
	return &CatalogParser{}
}

// ParseHtml parses the home page and returns its cards in page order
func (p *CatalogParser) ParseHtml(body io.Reader) ([]models.CatalogEntry, error) {
	logger := config.GetLogger()

	doc, err := newDocument(body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse catalog page")
		return nil, err
	}

	sel := catalogProfile
	entries := make([]models.CatalogEntry, 0)
	doc.Find(sel.Root).Each(func(i int, card *goquery.Selection) {
		entries = append(entries, models.CatalogEntry{
			Title:    text(card, sel.Title),
			Image:    attr(card, sel.Image, "src"),
			Episodes: text(card, sel.Episodes),
			Status:   text(card, sel.Status),
			URL:      attr(card, sel.Link, "href"),
		})
	})

	logger.Debug().Int("entries", len(entries)).Msg("Parsed catalog page")
	return entries, nil
}
