package blob

import (
	"context"
	"fmt"

	"mendel/internal/infra/blob/fs"
	memorystore "mendel/internal/infra/blob/memory"
	infraS3 "mendel/internal/infra/blob/s3"
)

// S3Config re-exports the infra S3 configuration type.
type S3Config = infraS3.Config

// Config selects and parameterises a backend.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open constructs the Store named by cfg.Driver. An empty driver means fs.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewFilesystem constructs a filesystem-backed Store rooted at root.
func NewFilesystem(root string) (Store, error) { return fs.New(root) }

// NewMemory returns an in-memory Store.
func NewMemory() Store { return memorystore.New() }

// NewS3 constructs an S3-backed Store.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) { return infraS3.New(ctx, cfg) }

// NewMockS3ForTests exposes the in-memory S3 transport for cross-package tests.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests() }
