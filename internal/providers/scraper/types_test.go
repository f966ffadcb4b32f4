package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeHTML(t *testing.T) {
	tests := []struct {
		name        string
		body        []byte
		contentType string
		want        string
	}{
		{
			name:        "utf-8 passes through",
			body:        []byte("<p>Café</p>"),
			contentType: "text/html",
			want:        "<p>Café</p>",
		},
		{
			name:        "declared charset",
			body:        []byte{'<', 'p', '>', 'c', 'a', 'f', 0xE9, '<', '/', 'p', '>'},
			contentType: "text/html; charset=windows-1252",
			want:        "<p>café</p>",
		},
		{
			name:        "meta charset",
			body:        append([]byte(`<html><head><meta charset="koi8-r"></head><body>`), 0xD0, 0xD2, 0xC9, 0xD7, 0xC5, 0xD4),
			contentType: "",
			want:        `<html><head><meta charset="koi8-r"></head><body>привет`,
		},
		{
			name:        "ascii",
			body:        []byte("<table class=\"tftable\"></table>"),
			contentType: "",
			want:        "<table class=\"tftable\"></table>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeHTML(tt.body, tt.contentType))
		})
	}
}

func TestSanitize(t *testing.T) {
	out := Sanitize(`<table class="tftable"><tr><td><a href="https://x/a.msix" onclick="steal()">App A</a></td></tr></table><script>alert(1)</script>`)

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "onclick")
	assert.Contains(t, out, "App A")
	assert.Contains(t, out, "https://x/a.msix")
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "abcdefg...", TruncateText("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", TruncateText("éééééééé", 6))
	assert.Equal(t, "ab", TruncateText("abcdef", 2))
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeWhitespace("  a \n\t b   c "))
	assert.Equal(t, "", NormalizeWhitespace(" \n "))
}
