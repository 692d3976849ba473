// Package capture provides frame sources for the photo session: still files
// picked by the user and a local bridge that phones can stream frames to.
package capture

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
)

// FileSource serves a still photo from disk as the session frame. Pointing it
// at a new path swaps the frame; the decoded image is cached until then.
type FileSource struct {
	mu     sync.RWMutex
	path   string
	cached image.Image
}

// NewFileSource creates a source with no photo loaded.
func NewFileSource() *FileSource {
	return &FileSource{}
}

// SetPath loads the photo at path and makes it the current frame. The
// orientation tag is honored so phone photos come in upright.
func (f *FileSource) SetPath(path string) error {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("opening photo %s: %w", path, err)
	}
	f.mu.Lock()
	f.path = path
	f.cached = img
	f.mu.Unlock()
	return nil
}

// Path returns the currently loaded photo path, or empty.
func (f *FileSource) Path() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.path
}

// Frame returns the loaded photo.
func (f *FileSource) Frame(_ context.Context) (image.Image, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.cached == nil {
		return nil, fmt.Errorf("no photo loaded")
	}
	return f.cached, nil
}
