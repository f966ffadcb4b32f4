package scraper

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

const (
	// MaxNoticeLength bounds the resolver message kept for diagnostics
	MaxNoticeLength = 240

	// minDetectConfidence is the chardet confidence needed to override the default decoding
	minDetectConfidence = 80
)

// sanitizer is safe for concurrent use once built
var sanitizer = bluemonday.UGCPolicy()

// DecodeHTML converts a response body to UTF-8 text.
//
// A declared Content-Type charset wins. Without one, valid UTF-8 is kept
// as is, then <meta> tags are honoured, and statistical detection only
// replaces the windows-1252 fallback.
func DecodeHTML(body []byte, contentType string) string {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if !certain && utf8.Valid(body) {
		return string(body)
	}
	if !certain && name == "windows-1252" {
		if detected := DetectCharset(body); detected != "" {
			if e, _ := charset.Lookup(detected); e != nil {
				enc = e
			}
		}
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

// DetectCharset guesses the charset of raw bytes, returning "" when unsure
func DetectCharset(data []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil || result.Confidence < minDetectConfidence {
		return ""
	}
	return strings.ToLower(result.Charset)
}

// Sanitize strips scripts and unsafe attributes from a resolver page so it
// can be rendered back to a client
func Sanitize(html string) string {
	return sanitizer.Sanitize(html)
}

// NormalizeWhitespace collapses runs of whitespace into one space
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateText shortens s to at most maxLen runes, ending in "..."
func TruncateText(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string([]rune(s)[:maxLen])
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}
