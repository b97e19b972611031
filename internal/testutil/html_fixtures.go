package testutil

import (
	"fmt"
	"strings"
)

// CatalogCardOptions contains options for generating a home page card
type CatalogCardOptions struct {
	Title    string
	Image    string
	Episodes string
	Status   string
	URL      string
}

// SearchHitOptions contains options for generating a search result tile
type SearchHitOptions struct {
	Title    string
	Image    string
	Rating   string
	Type     string
	Season   string
	Synopsis string
	Genres   []string
	URL      string
}

// DetailPageOptions contains options for generating an anime detail page
type DetailPageOptions struct {
	Title      string
	Image      string
	Synopsis   string
	Attributes [][2]string // label (as rendered, e.g. "Status:") and value
	Genres     []string
	Episodes   []EpisodeItemOptions
}

// EpisodeItemOptions is one entry of a detail page's episode list
type EpisodeItemOptions struct {
	Title string
	Date  string
	URL   string
}

// ServerLinkOptions is one entry of an episode page's download list
type ServerLinkOptions struct {
	Label string
	URL   string
}

// PlayerPageOptions contains options for generating the local player page
type PlayerPageOptions struct {
	EncryptedParam *string
	TitleParam     *string
	ExtraScripts   []string // inline scripts placed before the player script
}

// GenerateCatalogHTML generates a home page with the given cards
// based on the real NontonAnimeID layout
func GenerateCatalogHTML(cards []CatalogCardOptions) string {
	var sb strings.Builder
	sb.WriteString(`<html>
<head><meta charset="UTF-8"><title>Nonton Anime ID</title></head>
<body>
<div class="misha_posts_wrap">
`)
	for _, card := range cards {
		fmt.Fprintf(&sb, `	<article class="animeseries">
		<a href="%s" title="%s">
			<div class="limit">
				<img src="%s" class="attachment-post-thumbnail" alt="%s">
				<span class="episodes">%s</span>
				<span class="status">%s</span>
			</div>
			<h3 class="title"><span>%s</span></h3>
		</a>
	</article>
`, card.URL, card.Title, card.Image, card.Title, card.Episodes, card.Status, card.Title)
	}
	sb.WriteString(`</div>
</body>
</html>`)
	return sb.String()
}

// GenerateSearchHTML generates a search result page
func GenerateSearchHTML(hits []SearchHitOptions) string {
	var sb strings.Builder
	sb.WriteString(`<html>
<head><meta charset="UTF-8"></head>
<body>
<div class="as-anime-grid">
`)
	for _, hit := range hits {
		fmt.Fprintf(&sb, `	<a href="%s" class="as-anime-card">
		<div class="as-card-thumbnail"><img src="%s" alt="%s"></div>
		<div class="as-card-content">
			<h3 class="as-anime-title">%s</h3>
			<div class="as-meta">
				<span class="as-rating"><span class="icon">★</span> %s</span>
				<span class="as-type"><span class="icon">▶</span> %s</span>
				<span class="as-season"><span class="icon">☀</span> %s</span>
			</div>
			<p class="as-synopsis">%s</p>
			<div class="as-genres">`, hit.URL, hit.Image, hit.Title, hit.Title, hit.Rating, hit.Type, hit.Season, hit.Synopsis)
		for _, genre := range hit.Genres {
			fmt.Fprintf(&sb, `<span class="as-genre-tag">%s</span>`, genre)
		}
		sb.WriteString(`</div>
		</div>
	</a>
`)
	}
	sb.WriteString(`</div>
</body>
</html>`)
	return sb.String()
}

// GenerateDetailHTML generates an anime detail page
func GenerateDetailHTML(opts DetailPageOptions) string {
	var sb strings.Builder
	sb.WriteString(`<html>
<head><meta charset="UTF-8"></head>
<body>
<div class="anime-card">
`)
	fmt.Fprintf(&sb, `	<div class="anime-card__sidebar"><img src="%s" alt="%s"></div>
	<div class="anime-card__main">
		<div class="synopsis-prose"><p>%s</p></div>
		<ul class="details-list">
`, opts.Image, opts.Title, opts.Synopsis)
	for _, attr := range opts.Attributes {
		fmt.Fprintf(&sb, `			<li><span class="detail-label">%s</span><span class="detail-separator">|</span> %s</li>
`, attr[0], attr[1])
	}
	sb.WriteString(`		</ul>
		<div class="anime-card__genres">`)
	for _, genre := range opts.Genres {
		fmt.Fprintf(&sb, `<a href="/genres/%s/" class="genre-tag">%s</a>`, strings.ToLower(genre), genre)
	}
	sb.WriteString(`</div>
	</div>
</div>
<div class="episode-list-items">
`)
	for _, ep := range opts.Episodes {
		fmt.Fprintf(&sb, `	<a href="%s" class="episode-item"><span class="ep-title">%s</span><span class="ep-date">%s</span></a>
`, ep.URL, ep.Title, ep.Date)
	}
	sb.WriteString(`</div>
</body>
</html>`)
	return sb.String()
}

// GenerateEpisodeHTML generates an episode page with its server list
func GenerateEpisodeHTML(title, date string, servers []ServerLinkOptions) string {
	var sb strings.Builder
	sb.WriteString(`<html>
<head><meta charset="UTF-8"></head>
<body>
`)
	fmt.Fprintf(&sb, `<h1 class="entry-title">%s</h1>
<div class="bottomtitle"><time datetime="">%s</time></div>
<div class="listlink">
`, title, date)
	for _, server := range servers {
		fmt.Fprintf(&sb, `	<a href="%s" target="_blank" rel="nofollow">%s</a>
`, server.URL, server.Label)
	}
	sb.WriteString(`</div>
</body>
</html>`)
	return sb.String()
}

// GeneratePlayerHTML generates the local server's player page.
// A nil parameter leaves its declaration out of the script.
func GeneratePlayerHTML(opts PlayerPageOptions) string {
	var sb strings.Builder
	sb.WriteString(`<html>
<head>
<meta charset="UTF-8">
<script src="https://cdn.example.test/player.min.js"></script>
`)
	for _, script := range opts.ExtraScripts {
		fmt.Fprintf(&sb, "<script>%s</script>\n", script)
	}
	sb.WriteString("<script>\n")
	if opts.EncryptedParam != nil {
		fmt.Fprintf(&sb, "        const ENCRYPTED_PARAM = \"%s\";\n", *opts.EncryptedParam)
	}
	if opts.TitleParam != nil {
		fmt.Fprintf(&sb, "        const TITLE_PARAM = \"%s\";\n", *opts.TitleParam)
	}
	sb.WriteString(`        document.addEventListener("DOMContentLoaded", initPlayer);
</script>
</head>
<body><div id="player"></div></body>
</html>`)
	return sb.String()
}

// StringPtr is a helper for creating *string values in tests
func StringPtr(v string) *string {
	return &v
}
