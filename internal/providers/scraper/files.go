package scraper

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/GriffinCanCode/storefetch/internal/shared/types"
	"github.com/PuerkitoBio/goquery"
)

const (
	// FileTableSelector matches the resolver's file listing table
	FileTableSelector = "table.tftable"

	// Rows need name, expiry, checksum and size cells
	minFileCells = 4
)

// ErrNilInput is returned when there is no HTML to read at all
var ErrNilInput = errors.New("html input is nil")

// Extract turns a resolver HTML page into file records, in table order.
//
// Malformed markup, a missing table and malformed rows never fail; they
// yield fewer records. The returned slice is never nil.
func Extract(html string) []types.FileDescriptor {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return []types.FileDescriptor{}
	}
	return extractFiles(doc)
}

// ExtractReader is Extract over a stream. It only fails when the input
// itself cannot be read.
func ExtractReader(r io.Reader) ([]types.FileDescriptor, error) {
	if r == nil {
		return nil, ErrNilInput
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}
	return extractFiles(doc), nil
}

func extractFiles(doc *goquery.Document) []types.FileDescriptor {
	files := []types.FileDescriptor{}

	table := doc.Find(FileTableSelector).First()
	if table.Length() == 0 {
		return files
	}

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		// header row
		if i == 0 {
			return
		}
		if file, ok := parseFileRow(row); ok {
			files = append(files, file)
		}
	})

	return files
}

// parseFileRow reads [name+link, expiry, checksum, size]. The checksum cell
// is not part of the record.
func parseFileRow(row *goquery.Selection) (types.FileDescriptor, bool) {
	cells := row.Find("td")
	if cells.Length() < minFileCells {
		return types.FileDescriptor{}, false
	}

	link := cells.Eq(0).Find("a").First()
	if link.Length() == 0 {
		return types.FileDescriptor{}, false
	}

	name := strings.TrimSpace(link.Text())
	if name == "" {
		return types.FileDescriptor{}, false
	}

	href, _ := link.Attr("href")

	return types.FileDescriptor{
		Name: name,
		URL:  strings.TrimSpace(href),
		Time: strings.TrimSpace(cells.Eq(1).Text()),
		Size: strings.TrimSpace(cells.Eq(3).Text()),
	}, true
}
