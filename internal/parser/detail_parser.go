package parser

import (
	"io"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nontonanime/api/internal/config"
	"github.com/nontonanime/api/internal/models"
)

// DetailParser extracts an anime detail page: cover, synopsis, attribute table, genres and episodes
type DetailParser struct {
	lower cases.Caser
}

// NewDetailParser creates a new detail parser instance
func NewDetailParser() SingleResultParser[models.AnimeDetail] {
	return &DetailParser{lower: cases.Lower(language.Und)}
}

// ParseHtml parses a detail page. Absent sections produce empty values.
func (p *DetailParser) ParseHtml(body io.Reader) (models.AnimeDetail, error) {
	logger := config.GetLogger()

	doc, err := newDocument(body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse detail page")
		return models.AnimeDetail{}, err
	}

	sel := detailProfile
	root := doc.Selection

	cover := doc.Find(sel.Cover)
	title, _ := cover.Attr("alt")
	image, _ := cover.Attr("src")

	detail := models.AnimeDetail{
		Title:      title,
		Image:      image,
		Synopsis:   text(root, sel.Synopsis),
		Attributes: make(models.Attributes, 0),
		Genres:     make([]string, 0),
		Episodes:   make([]models.Episode, 0),
	}

	doc.Find(sel.Separator).Remove()

	doc.Find(sel.AttributeRow).Each(func(i int, row *goquery.Selection) {
		label := row.Find(sel.AttributeLabel)
		key := p.attributeKey(label.Text())
		label.Remove()
		detail.Attributes.Set(key, strings.TrimSpace(row.Text()))
	})

	doc.Find(sel.Genre).Each(func(i int, genre *goquery.Selection) {
		detail.Genres = append(detail.Genres, strings.TrimSpace(genre.Text()))
	})

	doc.Find(sel.Episode).Each(func(i int, ep *goquery.Selection) {
		href, _ := ep.Attr("href")
		detail.Episodes = append(detail.Episodes, models.Episode{
			Episode: text(ep, sel.EpisodeTitle),
			Date:    text(ep, sel.EpisodeDate),
			URL:     href,
		})
	})

	logger.Debug().
		Str("title", detail.Title).
		Int("attributes", len(detail.Attributes)).
		Int("genres", len(detail.Genres)).
		Int("episodes", len(detail.Episodes)).
		Msg("Parsed detail page")

	return detail, nil
}

// attributeKey turns a label like "Total Episode:" into "total_episode".
// Only the first colon is dropped and every whitespace rune becomes an underscore,
// so keys stay identical to what the site's own scripts derive.
func (p *DetailParser) attributeKey(label string) string {
	key := strings.Replace(label, ":", "", 1)
	key = p.lower.String(key)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, key)
}
