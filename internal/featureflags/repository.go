package featureflags

import "context"

// Repository defines the storage interface for feature flags.
type Repository interface {
	// GetFlag retrieves a single flag by key.
	// Returns ErrFlagNotFound if the flag does not exist.
	GetFlag(ctx context.Context, key string) (*Flag, error)

	// GetAllFlags retrieves all stored flags.
	GetAllFlags(ctx context.Context) ([]Flag, error)

	// SetFlag creates or updates a flag.
	SetFlag(ctx context.Context, flag Flag) error

	// SetFlags creates or updates multiple flags atomically.
	SetFlags(ctx context.Context, flags []Flag) error

	// DeleteFlag removes a flag.
	// Returns ErrFlagNotFound if the flag does not exist.
	DeleteFlag(ctx context.Context, key string) error
}
