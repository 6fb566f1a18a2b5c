// Package repository persists the race save record.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/ghostrace/internal/domain/model"
)

// Store loads and saves the single save record of a player.
type Store interface {
	// Load returns the stored save. It returns ErrNotFound when nothing was
	// saved yet and ErrCorrupt when the stored bytes cannot be decoded.
	Load(ctx context.Context) (model.Save, error)
	// Save overwrites the stored save.
	Save(ctx context.Context, s model.Save) error
	// Clear removes the stored save.
	Clear(ctx context.Context) error
}

// Encode serializes s as versioned JSON.
func Encode(s model.Save) ([]byte, error) {
	s.Version = model.SaveVersion
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	return b, nil
}

// Decode parses a versioned JSON save. Saves written by an older schema
// are upgraded in place; unknown future versions are corrupt.
func Decode(b []byte) (model.Save, error) {
	var s model.Save
	if err := json.Unmarshal(b, &s); err != nil {
		return model.Save{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if s.Version <= 0 || s.Version > model.SaveVersion {
		return model.Save{}, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, s.Version)
	}
	s.Version = model.SaveVersion
	return s, nil
}
