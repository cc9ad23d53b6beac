package repository

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/noah-isme/advent-api/pkg/storage"
)

// MessageRepository stores the optional secondary markdown message per door
// as plain files under the messages directory.
type MessageRepository struct {
	store *storage.LocalStorage
}

// NewMessageRepository builds the repository over the messages storage.
func NewMessageRepository(store *storage.LocalStorage) *MessageRepository {
	return &MessageRepository{store: store}
}

// Get returns the message for a door. Absence yields an empty string, not an
// error.
func (r *MessageRepository) Get(ctx context.Context, door int) (string, error) {
	data, err := r.store.Read(r.filename(door))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// Set writes or replaces the message for a door.
func (r *MessageRepository) Set(ctx context.Context, door int, message string) error {
	_, err := r.store.Save(r.filename(door), []byte(message))
	return err
}

// Delete removes the message for a door. Idempotent.
func (r *MessageRepository) Delete(ctx context.Context, door int) error {
	return r.store.Delete(r.filename(door))
}

func (r *MessageRepository) filename(door int) string {
	return fmt.Sprintf("%d.md", door)
}
