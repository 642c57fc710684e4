package core

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mendel/pkg/genetics"
)

func TestOpenSessionStoreMemory(t *testing.T) {
	store, err := OpenSessionStore(context.Background(), StorageConfig{})
	require.NoError(t, err)
	assert.NoError(t, CloseStore(store))
}

func TestOpenSessionStoreSQLitePersists(t *testing.T) {
	ctx := context.Background()
	cfg := StorageConfig{Driver: StorageSQLite, SQLitePath: filepath.Join(t.TempDir(), "mendel.db")}

	store, err := OpenSessionStore(ctx, cfg)
	require.NoError(t, err)
	svc := NewService(store)
	session, err := svc.CreateSession(ctx, "poly")
	require.NoError(t, err)
	_, err = svc.SetInheritance(ctx, session.ID, "b", genetics.GeneInheritance{Type: genetics.Codominance})
	require.NoError(t, err)
	require.NoError(t, CloseStore(store))

	reopened, err := OpenSessionStore(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = CloseStore(reopened) }()
	got, err := NewService(reopened).GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, genetics.Poly, got.Arity)
	assert.Equal(t, genetics.Codominance, got.Inheritance[genetics.GeneID('b')].Type)
}

func TestOpenSessionStoreUnknownDriver(t *testing.T) {
	_, err := OpenSessionStore(context.Background(), StorageConfig{Driver: "mongo"})
	assert.Error(t, err)
}
