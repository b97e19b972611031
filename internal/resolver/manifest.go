package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/nontonanime/api/internal/apperrors"
	"github.com/nontonanime/api/internal/models"
)

const manifestPath = "/video/get-download.php"

type manifestRequest struct {
	Challenge string `json:"challenge"`
	URL       string `json:"url"`
}

var (
	// url.QueryEscape output differs from encodeURIComponent only in these sequences.
	uriComponentFixer = strings.NewReplacer("+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")
	// ...and from a browser's form serializer in these.
	formComponentFixer = strings.NewReplacer("~", "%7E", "%2A", "*")
)

// encodeURIComponent escapes s the way browsers do for a single URI component.
func encodeURIComponent(s string) string {
	return uriComponentFixer.Replace(url.QueryEscape(s))
}

// formComponent escapes s as application/x-www-form-urlencoded, matching browser URLSearchParams.
func formComponent(s string) string {
	return formComponentFixer.Replace(url.QueryEscape(s))
}

// ManifestURL builds the download manifest URL for the given script parameters.
//
// The player escapes both values with encodeURIComponent before handing them to
// URLSearchParams, which escapes them again. The endpoint expects that doubly
// encoded form, in this exact parameter order.
func (r *Resolver) ManifestURL(params models.ScriptParameters) string {
	query := make([]string, 0, 5)
	add := func(key, value string) {
		query = append(query, formComponent(key)+"="+formComponent(value))
	}

	add("mode", "lokal")
	add("vid", encodeURIComponent(params.EncryptedParam))
	if params.TitleParam != "" {
		add("title", encodeURIComponent(params.TitleParam))
	}
	add("dl", "yes")
	add("json", "true")

	return r.host + manifestPath + "?" + strings.Join(query, "&")
}

// requestManifest posts the challenge to the manifest URL, replaying the token headers verbatim.
func (r *Resolver) requestManifest(ctx context.Context, targetURL, manifestURL string, token models.SecurityToken) ([]byte, error) {
	payload, err := encodeJSON(manifestRequest{Challenge: token.Challenge, URL: manifestURL})
	if err != nil {
		return nil, err
	}

	return r.postJSON(ctx, stageManifest, manifestURL, payload, func(req *http.Request) {
		r.headers.applyAPI(req, targetURL)
		req.Header.Set("X-Challenge", token.Challenge)
		req.Header.Set("X-Security-Token", token.Token)
		req.Header.Set("X-Timestamp", token.Timestamp)
	})
}

// parseManifest reads the links object in document order. A links array is accepted with
// the positions as quality names.
// Each quality must list at least one candidate and the first candidate must carry a url.
func parseManifest(body []byte) ([]models.ManifestEntry, error) {
	if !gjson.ValidBytes(body) {
		return nil, &apperrors.ErrManifestParse{Reason: "response is not valid JSON"}
	}

	links := gjson.GetBytes(body, "links")
	if !links.Exists() {
		return nil, &apperrors.ErrManifestParse{Reason: "links field missing"}
	}
	// PHP encodes an empty map as [], and a list keyed by position is read the same way.
	isList := links.IsArray()
	if !links.IsObject() && !isList {
		return nil, &apperrors.ErrManifestParse{Reason: "links is not an object"}
	}

	entries := make([]models.ManifestEntry, 0)
	var parseErr error
	index := 0
	links.ForEach(func(key, candidates gjson.Result) bool {
		quality := key.String()
		if isList {
			quality = strconv.Itoa(index)
		}
		index++

		first := candidates.Get("0.url")
		if !candidates.IsArray() || !first.Exists() {
			parseErr = &apperrors.ErrManifestParse{Reason: fmt.Sprintf("quality %q has no candidate url", quality)}
			return false
		}

		entry := models.ManifestEntry{Quality: quality}
		candidates.ForEach(func(_, candidate gjson.Result) bool {
			entry.Paths = append(entry.Paths, candidate.Get("url").String())
			return true
		})
		entries = append(entries, entry)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return entries, nil
}

// pendingLinks joins the resolver host and each quality's first path by plain concatenation.
func (r *Resolver) pendingLinks(entries []models.ManifestEntry) []models.PendingLink {
	links := make([]models.PendingLink, 0, len(entries))
	for _, entry := range entries {
		links = append(links, models.PendingLink{
			Quality: entry.Quality,
			URL:     r.host + entry.Paths[0],
		})
	}
	return links
}
