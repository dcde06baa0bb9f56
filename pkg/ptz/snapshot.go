package ptz

import (
	"fmt"
	"net/http"
)

// suspect size for a JPEG, small bodies are checked for an HTML error page
const minSnapshotSize = 1000

type Snapshot struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

func (c *Camera) Snapshot() (*Snapshot, error) {
	steps := make([]func() (*Snapshot, error), 0, len(SnapshotPaths))
	for _, path := range SnapshotPaths {
		path := path
		steps = append(steps, func() (*Snapshot, error) {
			return c.snapshot(path)
		})
	}
	return firstOf(steps...)
}

func (c *Camera) snapshot(path string) (*Snapshot, error) {
	res, err := c.get(path)
	if err != nil {
		return nil, err
	}

	if len(res.Body) == 0 {
		return nil, fmt.Errorf("%w: empty snapshot %s", ErrUnsupported, path)
	}

	if len(res.Body) < minSnapshotSize && isHTML(res.Body) {
		if isUnauthorizedBody(res.Body) {
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, path)
		}
		return nil, fmt.Errorf("%w: %w: %s", ErrUnsupported, ErrHTMLResponse, path)
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" || contentType == "text/html" {
		contentType = http.DetectContentType(res.Body)
	}

	return &Snapshot{Data: res.Body, ContentType: contentType}, nil
}
