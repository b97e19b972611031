package parser

// Selector definitions are coupled to the site's current markup and kept here,
// one struct per profile, so a redesign only touches this file.

type catalogSelectors struct {
	Root, Title, Image, Episodes, Status, Link string
}

type searchSelectors struct {
	Noise, Root, Title, Image, Rating, Type, Season, Synopsis, Genre string
}

type detailSelectors struct {
	Cover, Synopsis, Separator, AttributeRow, AttributeLabel string
	Genre, Episode, EpisodeTitle, EpisodeDate                string
}

type episodeSelectors struct {
	Title, Date, ServerLink string
}

var (
	catalogProfile = catalogSelectors{
		Root:     "article.animeseries",
		Title:    "h3.title",
		Image:    "img",
		Episodes: ".episodes",
		Status:   ".status",
		Link:     "a",
	}

	searchProfile = searchSelectors{
		Noise:    ".icon",
		Root:     ".as-anime-grid a",
		Title:    ".as-anime-title",
		Image:    "img",
		Rating:   ".as-rating",
		Type:     ".as-type",
		Season:   ".as-season",
		Synopsis: ".as-synopsis",
		Genre:    ".as-genres span",
	}

	detailProfile = detailSelectors{
		Cover:          ".anime-card__sidebar img",
		Synopsis:       ".synopsis-prose",
		Separator:      ".detail-separator",
		AttributeRow:   ".details-list li",
		AttributeLabel: ".detail-label",
		Genre:          ".anime-card__genres a",
		Episode:        ".episode-list-items a",
		EpisodeTitle:   ".ep-title",
		EpisodeDate:    ".ep-date",
	}

	episodeProfile = episodeSelectors{
		Title:      "h1.entry-title",
		Date:       ".bottomtitle time",
		ServerLink: ".listlink a",
	}
)
