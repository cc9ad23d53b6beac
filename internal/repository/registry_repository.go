package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/noah-isme/advent-api/internal/models"
	"github.com/noah-isme/advent-api/pkg/storage"
)

// RegistryRepository maps door indices to stored filenames. The registry is
// the source of truth for "does this door have content".
type RegistryRepository struct {
	doc   *document
	media *storage.LocalStorage
}

// NewRegistryRepository builds a registry over the given document path. The
// media storage is consulted on delete to detect puzzle markers.
func NewRegistryRepository(path string, media *storage.LocalStorage) *RegistryRepository {
	return &RegistryRepository{doc: newDocument(path), media: media}
}

// GetAll returns the full door-index to filename mapping.
func (r *RegistryRepository) GetAll(ctx context.Context) (map[int]string, error) {
	raw := map[string]string{}
	if err := r.doc.view(&raw); err != nil {
		return nil, err
	}
	entries := make(map[int]string, len(raw))
	for key, filename := range raw {
		index, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		entries[index] = filename
	}
	return entries, nil
}

// Get returns the filename assigned to a door, or ErrNoEntry.
func (r *RegistryRepository) Get(ctx context.Context, index int) (string, error) {
	raw := map[string]string{}
	if err := r.doc.view(&raw); err != nil {
		return "", err
	}
	filename, ok := raw[strconv.Itoa(index)]
	if !ok {
		return "", ErrNoEntry
	}
	return filename, nil
}

// Set assigns a filename to a door index.
func (r *RegistryRepository) Set(ctx context.Context, index int, filename string) error {
	raw := map[string]string{}
	return r.doc.mutate(&raw, func() error {
		raw[strconv.Itoa(index)] = filename
		return nil
	})
}

// Delete removes a door's registry entry and returns the removed index to
// filename pairs. When the removed file is a puzzle marker the shifted
// image-index entry is removed in the same write. Returns ErrNoEntry when
// the door has no entry, distinct from storage errors.
func (r *RegistryRepository) Delete(ctx context.Context, index int) (map[int]string, error) {
	removed := map[int]string{}
	raw := map[string]string{}
	err := r.doc.mutate(&raw, func() error {
		key := strconv.Itoa(index)
		filename, ok := raw[key]
		if !ok {
			return ErrNoEntry
		}
		removed[index] = filename
		delete(raw, key)

		if r.isPuzzleMarker(filename) {
			imageKey := strconv.Itoa(index + models.PuzzleImageOffset)
			if imageFile, ok := raw[imageKey]; ok {
				removed[index+models.PuzzleImageOffset] = imageFile
				delete(raw, imageKey)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// PuzzleImageIndex returns the registry slot holding a puzzle's source image.
func (r *RegistryRepository) PuzzleImageIndex(index int) int {
	return index + models.PuzzleImageOffset
}

func (r *RegistryRepository) isPuzzleMarker(filename string) bool {
	if r.media == nil {
		return false
	}
	data, err := r.media.Read(filename)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == models.SentinelPuzzle
}
