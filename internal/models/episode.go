package models

import "encoding/json"

// NoLocalServerMessage is reported in place of download links when an episode has no local server.
const NoLocalServerMessage = "No lokal server found"

// AlternativeServer is a third-party mirror listed on an episode page
type AlternativeServer struct {
	Server string `json:"server"`
	URL    string `json:"url"`
}

// EpisodeServers holds what the episode page itself exposes, before any resolution
type EpisodeServers struct {
	Title        string
	Date         string
	LocalURL     string // href of the "lokal" server, empty when absent
	Alternatives []AlternativeServer
}

// EpisodePage is the result of the download operation for one episode
type EpisodePage struct {
	Title        string              `json:"title"`
	Date         string              `json:"date"`
	Download     DownloadOutcome     `json:"download"`
	Alternatives []AlternativeServer `json:"alternative"`
}

// DownloadOutcome is exactly one of: resolved links, a resolution error, or no local server.
type DownloadOutcome struct {
	Links         []ResolvedLink
	Err           *ResolutionError
	NoLocalServer bool
}

// MarshalJSON renders the outcome as a link array, an {error, details} object, or a message string.
func (d DownloadOutcome) MarshalJSON() ([]byte, error) {
	switch {
	case d.NoLocalServer:
		return json.Marshal(NoLocalServerMessage)
	case d.Err != nil:
		return json.Marshal(d.Err)
	case d.Links == nil:
		return []byte("[]"), nil
	default:
		return json.Marshal(d.Links)
	}
}
