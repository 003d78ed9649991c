// Package storage persists session snapshots and serves tavern
// content. Snapshots are opaque to this layer beyond their identity;
// the world package owns their meaning.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/tavernkeep/tavern-engine/pkg/tavern"
	"github.com/tavernkeep/tavern-engine/pkg/world"
)

// Storage is the persistence boundary for the API.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session snapshots
	SaveSnapshot(ctx context.Context, id uuid.UUID, snap *world.Snapshot) error
	// LoadSnapshot returns (nil, nil) when the session does not exist.
	LoadSnapshot(ctx context.Context, id uuid.UUID) (*world.Snapshot, error)
	DeleteSnapshot(ctx context.Context, id uuid.UUID) error

	// Tavern content (read-only)
	GetTavern(ctx context.Context, filename string) (*tavern.Tavern, error)
	// ListTaverns maps tavern display names to content filenames.
	ListTaverns(ctx context.Context) (map[string]string, error)
}
