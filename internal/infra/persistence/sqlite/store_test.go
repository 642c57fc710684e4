package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"mendel/pkg/domain"
	"mendel/pkg/genetics"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mendel.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if store.Path() != path {
		t.Fatalf("unexpected path %s", store.Path())
	}
	ctx := context.Background()
	var id string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		created, err := tx.CreateSession(domain.Session{
			Arity: genetics.Poly,
			Inheritance: genetics.InheritanceConfig{
				'r': {Type: genetics.Incomplete, Labels: genetics.Labels{Dominant: "Vermelha", Intermediate: "Rosa", Recessive: "Branca"}},
			},
		})
		id = created.ID
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	got, ok := reopened.GetSession(id)
	if !ok {
		t.Fatalf("expected session %s after reopen", id)
	}
	if got.Arity != genetics.Poly {
		t.Fatalf("expected poly arity, got %s", got.Arity)
	}
	if got.Inheritance.Lookup('r').Labels.Intermediate != "Rosa" {
		t.Fatalf("expected inheritance restored, got %+v", got.Inheritance)
	}
}

func TestStoreFailedTransactionDoesNotPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mendel.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteSession("missing")
	}); err == nil {
		t.Fatalf("expected delete of missing session to fail")
	}
	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no snapshot rows, got %d", count)
	}
	_ = store.Close()
}

func TestStoreDeletePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mendel.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateSession(domain.Session{ID: "s1", Arity: genetics.Mono})
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteSession("s1")
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_ = store.Close()

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if len(reopened.ListSessions()) != 0 {
		t.Fatalf("expected empty store after delete")
	}
}
