package parser

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nontonanime/api/internal/apperrors"
	"github.com/nontonanime/api/internal/config"
	"github.com/nontonanime/api/internal/models"
)

const (
	encryptedParamName = "ENCRYPTED_PARAM"
	titleParamName     = "TITLE_PARAM"
)

// constDeclaration builds the pattern for `const NAME = "value";`.
// The value may contain escaped characters but never a raw quote or newline.
func constDeclaration(name string) *regexp.Regexp {
	return regexp.MustCompile(`const\s+` + regexp.QuoteMeta(name) + `\s*=\s*"((?:[^"\\\n]|\\.)*)"\s*;`)
}

// RegexScriptParamExtractor reads the player parameters with textual patterns over the inline scripts.
// Values are returned exactly as written in the page, without unescaping.
type RegexScriptParamExtractor struct {
	encrypted *regexp.Regexp
	title     *regexp.Regexp
}

// NewScriptParamExtractor creates the regex based extractor
func NewScriptParamExtractor() ScriptParamExtractor {
	return &RegexScriptParamExtractor{
		encrypted: constDeclaration(encryptedParamName),
		title:     constDeclaration(titleParamName),
	}
}

// Extract implements ScriptParamExtractor.
func (e *RegexScriptParamExtractor) Extract(body io.Reader) (models.ScriptParameters, error) {
	logger := config.GetLogger()

	script, err := inlineScripts(body)
	if err != nil {
		return models.ScriptParameters{}, err
	}

	match := e.encrypted.FindStringSubmatch(script)
	if match == nil {
		logger.Warn().Msg("Player page has no encrypted parameter")
		return models.ScriptParameters{}, &apperrors.ErrMalformedUpstreamPage{Missing: encryptedParamName}
	}

	params := models.ScriptParameters{EncryptedParam: match[1]}
	if title := e.title.FindStringSubmatch(script); title != nil {
		params.TitleParam = title[1]
	}

	logger.Debug().
		Int("encryptedLength", len(params.EncryptedParam)).
		Bool("hasTitle", params.TitleParam != "").
		Msg("Extracted script parameters")

	return params, nil
}

// inlineScripts returns the raw text of every <script> element without a src attribute, joined by newlines.
func inlineScripts(body io.Reader) (string, error) {
	doc, err := newDocument(body)
	if err != nil {
		return "", fmt.Errorf("failed to read player page: %w", err)
	}

	var parts []string
	doc.Find("script").Each(func(i int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		parts = append(parts, s.Text())
	})
	return strings.Join(parts, "\n"), nil
}
