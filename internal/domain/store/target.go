package store

import (
	"errors"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/storefetch/internal/providers/resolver"
)

var (
	ErrEmptyInput    = errors.New("enter a product id or store url")
	ErrNotDetailPage = errors.New("url is not an app store detail page")
)

const (
	detailHost = "apps.microsoft.com"
	detailPath = "/detail/"
)

// Target is normalized user input. An empty Type means the configured default.
type Target struct {
	Type  string `json:"type,omitempty"`
	Value string `json:"value"`
}

// ParseTarget classifies input as a detail-page URL or a bare identifier
func ParseTarget(input string) (Target, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Target{}, ErrEmptyInput
	}

	lower := strings.ToLower(input)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return Target{Value: input}, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return Target{}, ErrNotDetailPage
	}
	if !strings.EqualFold(u.Hostname(), detailHost) || !strings.HasPrefix(strings.ToLower(u.Path), detailPath) {
		return Target{}, ErrNotDetailPage
	}
	return Target{Type: resolver.TypeURL, Value: input}, nil
}
