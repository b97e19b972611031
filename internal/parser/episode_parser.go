package parser

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nontonanime/api/internal/config"
	"github.com/nontonanime/api/internal/models"
)

// localServerMarker identifies the site's own ("lokal") server among the download links.
const localServerMarker = "lokal"

// EpisodeServerParser extracts the title, date and server links of an episode page
type EpisodeServerParser struct{}

// NewEpisodeServerParser creates a new episode server parser instance
func NewEpisodeServerParser() SingleResultParser[models.EpisodeServers] {
	return &EpisodeServerParser{}
}

// ParseHtml parses an episode page. When several links mention the local server the last one wins.
func (p *EpisodeServerParser) ParseHtml(body io.Reader) (models.EpisodeServers, error) {
	logger := config.GetLogger()

	doc, err := newDocument(body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse episode page")
		return models.EpisodeServers{}, err
	}

	sel := episodeProfile
	servers := models.EpisodeServers{
		Title:        text(doc.Selection, sel.Title),
		Date:         text(doc.Selection, sel.Date),
		Alternatives: make([]models.AlternativeServer, 0),
	}

	doc.Find(sel.ServerLink).Each(func(i int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		label := link.Text()
		if strings.Contains(strings.ToLower(label), localServerMarker) {
			servers.LocalURL = href
			return
		}
		servers.Alternatives = append(servers.Alternatives, models.AlternativeServer{
			Server: strings.TrimSpace(label),
			URL:    href,
		})
	})

	logger.Debug().
		Str("title", servers.Title).
		Bool("hasLocal", servers.LocalURL != "").
		Int("alternatives", len(servers.Alternatives)).
		Msg("Parsed episode page")

	return servers, nil
}
