package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mendel/pkg/domain"
	"mendel/pkg/genetics"
)

func fixedClock(ts time.Time) func() time.Time { return func() time.Time { return ts } }

func TestStoreRunInTransactionAndSnapshots(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(WithClock(fixedClock(now)))
	ctx := context.Background()
	changes, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, ok := tx.FindSession("missing"); ok {
			t.Fatalf("expected missing session lookup")
		}
		created, err := tx.CreateSession(domain.Session{Arity: genetics.Mono})
		if err != nil {
			return err
		}
		if created.ID == "" {
			t.Fatalf("expected generated ID")
		}
		if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
			t.Fatalf("expected timestamps from clock, got %+v", created)
		}
		if len(tx.Snapshot().ListSessions()) != 1 {
			t.Fatalf("snapshot mismatch")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run transaction: %v", err)
	}
	if len(changes) != 1 || changes[0].Action != domain.ActionCreate || changes[0].After == nil {
		t.Fatalf("unexpected changes: %+v", changes)
	}
	if len(store.ListSessions()) != 1 {
		t.Fatalf("expected persisted session")
	}
	snapshot := store.ExportState()
	store.ImportState(Snapshot{})
	if len(store.ListSessions()) != 0 {
		t.Fatalf("expected cleared state")
	}
	store.ImportState(snapshot)
	if len(store.ListSessions()) != 1 {
		t.Fatalf("expected restored state")
	}
	if store.NowFunc() == nil {
		t.Fatalf("expected now func")
	}
}

func TestStoreRollsBackOnError(t *testing.T) {
	store := NewStore()
	boom := errors.New("boom")
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateSession(domain.Session{ID: "s1"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, ok := store.GetSession("s1"); ok {
		t.Fatalf("expected rollback to discard session")
	}
}

func TestStoreUpdateIsolatesInheritance(t *testing.T) {
	ids := 0
	store := NewStore(WithIDGenerator(func() string {
		ids++
		return fmt.Sprintf("s%d", ids)
	}))
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateSession(domain.Session{Arity: genetics.Di})
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	changes, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateSession("s1", func(s *domain.Session) error {
			s.ID = "hijack"
			s.Inheritance.Ensure('a', 'b')
			s.Inheritance.Set('a', genetics.GeneInheritance{Type: genetics.Codominance})
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(changes) != 1 || changes[0].Before == nil || len(changes[0].Before.Inheritance) != 0 {
		t.Fatalf("expected before image without inheritance, got %+v", changes)
	}
	got, ok := store.GetSession("s1")
	if !ok {
		t.Fatalf("expected session to keep its ID")
	}
	if got.Inheritance.Lookup('a').Type != genetics.Codominance {
		t.Fatalf("expected codominance, got %+v", got.Inheritance)
	}
	got.Inheritance.Set('a', genetics.GeneInheritance{Type: genetics.Complete})
	again, _ := store.GetSession("s1")
	if again.Inheritance.Lookup('a').Type != genetics.Codominance {
		t.Fatalf("mutating a returned session leaked into the store")
	}
}

func TestStoreNotFoundAndDuplicates(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateSession("nope", func(*domain.Session) error { return nil })
		return err
	})
	var nf domain.ErrSessionNotFound
	if !errors.As(err, &nf) || nf.ID != "nope" {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateSession(domain.Session{ID: "dup"}); err != nil {
			return err
		}
		_, err := tx.CreateSession(domain.Session{ID: "dup"})
		return err
	})
	if err == nil {
		t.Fatalf("expected duplicate create to fail")
	}
}

func TestStoreViewAndCancelledContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.RunInTransaction(ctx, func(domain.Transaction) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := store.View(ctx, func(domain.TransactionView) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled from view, got %v", err)
	}
	if err := store.View(context.Background(), func(v domain.TransactionView) error {
		if len(v.ListSessions()) != 0 {
			t.Fatalf("expected empty view")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}
