package models

// ScriptParameters are the values the player page embeds in its inline script
type ScriptParameters struct {
	EncryptedParam string
	TitleParam     string // empty when the page does not define it
}

// SecurityToken is the challenge/token/timestamp triple issued for one target URL.
// The values are replayed to the manifest endpoint exactly as received.
type SecurityToken struct {
	Challenge string
	Token     string
	Timestamp string
}

// ManifestEntry is one quality of the download manifest, in response order
type ManifestEntry struct {
	Quality string
	Paths   []string // candidate relative paths; only the first is used
}

// PendingLink points into the resolver host and still has to be resolved to its redirect target
type PendingLink struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
}

// ResolvedLink carries the final download URL for a quality.
// URL is empty when the resolver host answered without a Location header.
type ResolvedLink struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
}

// ResolutionError is the user-facing result of a failed download resolution
type ResolutionError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}
