package parser

import (
	"fmt"
	"io"
)

// ProfileName selects one of the fixed page traversals
type ProfileName string

const (
	ProfileCatalog        ProfileName = "catalog"
	ProfileSearch         ProfileName = "search"
	ProfileDetail         ProfileName = "detail"
	ProfileEpisodeServers ProfileName = "episodeServers"
)

// Extract runs the parser registered for profile over body.
//
// The concrete result type depends on the profile:
//
//	catalog        []models.CatalogEntry
//	search         []models.SearchResult
//	detail         models.AnimeDetail
//	episodeServers models.EpisodeServers
func Extract(body io.Reader, profile ProfileName) (any, error) {
	switch profile {
	case ProfileCatalog:
		return NewCatalogParser().ParseHtml(body)
	case ProfileSearch:
		return NewSearchParser().ParseHtml(body)
	case ProfileDetail:
		return NewDetailParser().ParseHtml(body)
	case ProfileEpisodeServers:
		return NewEpisodeServerParser().ParseHtml(body)
	default:
		return nil, fmt.Errorf("unknown extraction profile %q", profile)
	}
}
