package parser

import (
	"io"

	"github.com/nontonanime/api/internal/models"
)

// Parser defines a generic interface for parsing a list of records from HTML content
type Parser[T any] interface {
	ParseHtml(body io.Reader) ([]T, error)
}

// SingleResultParser defines a generic interface for parsing a single record from HTML content
type SingleResultParser[T any] interface {
	ParseHtml(body io.Reader) (T, error)
}

// ScriptParamExtractor pulls the player parameters out of a page's inline scripts.
//
// Implementations understand the grammar
//
//	const NAME = "value";
//
// for the names ENCRYPTED_PARAM (required) and TITLE_PARAM (optional).
type ScriptParamExtractor interface {
	Extract(body io.Reader) (models.ScriptParameters, error)
}
