package parser

import (
	"io"

	"golang.org/x/net/html/charset"
)

// NewUTF8Reader wraps an io.Reader with automatic character encoding detection and conversion to UTF-8.
// The site serves UTF-8 today, but mirrors have shipped pages declared as windows-1252,
// so every profile goes through this before goquery sees the bytes.
//
// The charset is detected from:
// 1. HTML <meta charset="..."> or <meta http-equiv="Content-Type"> tags
// 2. Byte order marks (BOM)
// 3. Heuristic detection if none of the above are present
func NewUTF8Reader(body io.Reader) (io.Reader, error) {
	return charset.NewReader(body, "")
}
