// device/fileshare.go
package device

import (
	"context"
	"os"
	"path/filepath"
	"sync"
)

// FileShare is the server-side share surface: artifacts land in the uploads
// directory and are served back to the device over the uploads route.
type FileShare struct {
	dir     string
	urlBase string

	mu      sync.Mutex
	lastURL string
}

func NewFileShare(dir, urlBase string) (*FileShare, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileShare{dir: dir, urlBase: urlBase}, nil
}

func (f *FileShare) Share(_ context.Context, artifact Artifact) (ShareResult, error) {
	data := artifact.Data
	if len(data) == 0 {
		data = []byte(artifact.Text)
	}
	path := filepath.Join(f.dir, artifact.Filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ShareUnavailable, err
	}

	f.mu.Lock()
	f.lastURL = f.urlBase + "/" + artifact.Filename
	f.mu.Unlock()
	return ShareDelivered, nil
}

func (f *FileShare) LastURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastURL
}
