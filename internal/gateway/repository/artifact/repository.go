package artifact

import (
	"context"
	"errors"
	"strings"
)

// Object names written for every completed report.
const (
	ReportJSON = "report.json"
	ReportHTML = "report.html"
)

// Store keeps rendered copies of completed reports, grouped by result id.
type Store interface {
	Put(ctx context.Context, resultID, name string, content []byte) error
	Get(ctx context.Context, resultID, name string) ([]byte, error)
	// GetURL returns a time-limited download link, or "" when the store
	// cannot serve links.
	GetURL(ctx context.Context, resultID, name string) (string, error)
	List(ctx context.Context, resultID string) ([]string, error)
}

var ErrNotFound = errors.New("artifact not found")

func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
