package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// newDocument converts body to UTF-8 and parses it with goquery.
func newDocument(body io.Reader) (*goquery.Document, error) {
	utf8Body, err := NewUTF8Reader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(utf8Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// text returns the trimmed combined text of the elements matching selector below s.
func text(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).Text())
}

// attr returns the attribute of the first element matching selector below s, or "".
func attr(s *goquery.Selection, selector, name string) string {
	value, _ := s.Find(selector).Attr(name)
	return value
}
