// Package imagestore holds uploaded puzzle images in memory and turns them
// into opaque data-URI references for the engine. Decoding only reads the
// image header: the store verifies the upload is a real image and records
// its dimensions, nothing more.
package imagestore

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	// Register the image formats a browser upload can reasonably carry.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrNotAnImage    = errors.New("uploaded data is not a supported image")
	ErrEmptyUpload   = errors.New("uploaded data is empty")
)

// Image is a decoded upload ready to be referenced by a puzzle session.
type Image struct {
	ID         string    `json:"id"`
	MIME       string    `json:"mime"`
	DataURI    string    `json:"data_uri"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Store keeps uploaded images in memory, keyed by generated ID.
type Store struct {
	images map[string]*Image
	mu     sync.RWMutex
}

// NewStore creates an empty image store.
func NewStore() *Store {
	return &Store{images: make(map[string]*Image)}
}

// Add decodes the upload header, builds the data-URI reference, and stores
// the image under a fresh ID.
func (s *Store) Add(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	mime := "image/" + format
	img := &Image{
		ID:         uuid.NewString(),
		MIME:       mime,
		DataURI:    "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
		Width:      cfg.Width,
		Height:     cfg.Height,
		UploadedAt: time.Now(),
	}

	s.mu.Lock()
	s.images[img.ID] = img
	s.mu.Unlock()

	return img, nil
}

// Get retrieves an image by ID.
func (s *Store) Get(id string) (*Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	img, ok := s.images[id]
	if !ok {
		return nil, ErrImageNotFound
	}
	return img, nil
}

// Delete removes an image by ID.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.images[id]; !ok {
		return ErrImageNotFound
	}
	delete(s.images, id)
	return nil
}

// Count returns the number of stored images.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}
