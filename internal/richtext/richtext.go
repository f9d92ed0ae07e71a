// Package richtext turns note HTML into plain text for search and assistant
// prompts, and handles the document-extraction boundary for attachments.
package richtext

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
)

// ErrUnsupportedFormat is returned when a document cannot be converted to
// text. The caller keeps the original blob as an opaque attachment.
var ErrUnsupportedFormat = errors.New("richtext: unsupported document format")

// PlainText extracts the text content of an HTML fragment. Runs of
// whitespace collapse to single spaces. Input that is not HTML comes back
// as-is, trimmed.
func PlainText(fragment string) string {
	tok := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(tok.Text())
			b.WriteByte(' ')
		}
	}
}

// ExtractTitle splits a leading <h1> heading off an HTML fragment, returning
// the heading text and the remaining markup. Generated notes start with an
// <h1> carrying the title. When no heading is found the whole fragment comes
// back as body with an empty title.
func ExtractTitle(fragment string) (title, body string) {
	tok := html.NewTokenizer(strings.NewReader(fragment))
	var rest strings.Builder
	var heading strings.Builder
	inHeading := false
	found := false
	for {
		tt := tok.Next()
		if tt == html.ErrorToken {
			return strings.TrimSpace(heading.String()), strings.TrimSpace(rest.String())
		}
		switch tt {
		case html.StartTagToken:
			if name, _ := tok.TagName(); !found && string(name) == "h1" {
				inHeading = true
				continue
			}
		case html.EndTagToken:
			if name, _ := tok.TagName(); inHeading && string(name) == "h1" {
				inHeading = false
				found = true
				continue
			}
		case html.TextToken:
			if inHeading {
				heading.Write(tok.Text())
				continue
			}
		}
		if !inHeading {
			rest.Write(tok.Raw())
		}
	}
}

// ExtractDocument converts an attached document blob to markup text.
// HTML passes through, plain text is wrapped in paragraph tags, and anything
// else fails with ErrUnsupportedFormat so the caller can fall back to
// storing the blob untouched.
func ExtractDocument(blob []byte, mimeType string) (string, error) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case "text/html":
		return string(blob), nil
	case "text/plain", "text/markdown":
		var b strings.Builder
		for _, line := range strings.Split(strings.ReplaceAll(string(blob), "\r\n", "\n"), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			b.WriteString("<p>")
			b.WriteString(html.EscapeString(line))
			b.WriteString("</p>")
		}
		return b.String(), nil
	default:
		return "", ErrUnsupportedFormat
	}
}
