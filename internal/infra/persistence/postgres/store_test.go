package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mendel/internal/infra/persistence/postgres/testutil"
	"mendel/pkg/domain"
	"mendel/pkg/genetics"
)

func openStub(t *testing.T) (*testutil.StubConn, func()) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	return conn, restore
}

func TestNewStoreCreatesTableAndLoadsSnapshot(t *testing.T) {
	conn, restore := openStub(t)
	defer restore()
	seed := map[string]domain.Session{
		"s1": {ID: "s1", Arity: genetics.Di, Inheritance: genetics.InheritanceConfig{'a': genetics.DefaultGeneInheritance()}},
	}
	payload, err := json.Marshal(seed)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	conn.State[bucketSessions] = payload

	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	got, ok := store.GetSession("s1")
	if !ok || got.Arity != genetics.Di {
		t.Fatalf("expected seeded session, got %+v (found=%v)", got, ok)
	}
	var sawDDL bool
	for _, stmt := range conn.Execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE IF NOT EXISTS STATE") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got execs: %v", conn.Execs)
	}
}

func TestRunInTransactionPersistsState(t *testing.T) {
	conn, restore := openStub(t)
	defer restore()
	store, err := NewStore(context.Background(), "ignored")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateSession(domain.Session{ID: "abc", Arity: genetics.Mono})
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	payload, ok := conn.Payload(bucketSessions)
	if !ok {
		t.Fatalf("expected sessions bucket to be written")
	}
	var decoded map[string]domain.Session
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded["abc"].Arity != genetics.Mono {
		t.Fatalf("unexpected payload: %s", payload)
	}
}

func TestRunInTransactionSkipsPersistWithoutChanges(t *testing.T) {
	conn, restore := openStub(t)
	defer restore()
	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	before := len(conn.Execs)
	if _, err := store.RunInTransaction(context.Background(), func(domain.Transaction) error { return nil }); err != nil {
		t.Fatalf("noop tx: %v", err)
	}
	if len(conn.Execs) != before {
		t.Fatalf("expected no statements for empty transaction")
	}
}

func TestNewStoreErrors(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*testutil.StubConn)
		want  string
	}{
		{"ping", func(c *testutil.StubConn) { c.FailPing = true }, "ping postgres"},
		{"ddl", func(c *testutil.StubConn) { c.FailExec = true }, "ensure state table"},
		{"query", func(c *testutil.StubConn) { c.FailQuery = true }, "select state"},
		{"decode", func(c *testutil.StubConn) { c.State[bucketSessions] = []byte("{") }, "decode sessions"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conn, restore := openStub(t)
			defer restore()
			tc.setup(conn)
			_, err := NewStore(context.Background(), "")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}

	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, errors.New("dial") })
	defer restore()
	if _, err := NewStore(context.Background(), ""); err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestPersistFailures(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*testutil.StubConn)
		want  string
	}{
		{"begin", func(c *testutil.StubConn) { c.FailBegin = true }, "begin tx"},
		{"upsert", func(c *testutil.StubConn) { c.FailExec = true }, "upsert sessions"},
		{"commit", func(c *testutil.StubConn) { c.FailCommit = true }, "commit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conn, restore := openStub(t)
			defer restore()
			store, err := NewStore(context.Background(), "")
			if err != nil {
				t.Fatalf("NewStore: %v", err)
			}
			tc.setup(conn)
			_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
				_, err := tx.CreateSession(domain.Session{Arity: genetics.Poly})
				return err
			})
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
