// Package testutil provides an in-memory database/sql driver that understands
// the handful of statements the postgres session store issues.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

var stubSeq atomic.Int64

// StubConn records statements and keeps the state table rows keyed by bucket.
type StubConn struct {
	mu         sync.Mutex
	Execs      []string
	State      map[string][]byte
	FailPing   bool
	FailExec   bool
	FailBegin  bool
	FailCommit bool
	FailQuery  bool
}

// NewStubDB registers a uniquely named driver and opens a sql.DB on it.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{State: make(map[string][]byte)}
	name := fmt.Sprintf("stubpg%d", stubSeq.Add(1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Ping implements driver.Pinger.
func (c *StubConn) Ping(context.Context) error {
	if c.FailPing {
		return errors.New("ping fail")
	}
	return nil
}

// BeginTx implements driver.ConnBeginTx.
func (c *StubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, errors.New("begin fail")
	}
	return &stubTx{conn: c}, nil
}

// ExecContext implements driver.ExecerContext. Upserts outside a transaction
// are applied immediately.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, errors.New("exec fail")
	}
	if isUpsert(query) {
		bucket, payload, err := upsertArgs(args)
		if err != nil {
			return nil, err
		}
		c.State[bucket] = payload
	}
	return driver.RowsAffected(1), nil
}

// QueryContext implements driver.QueryerContext for SELECT bucket, payload FROM state.
func (c *StubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailQuery {
		return nil, errors.New("query fail")
	}
	if !strings.Contains(strings.ToLower(query), "from state") {
		return nil, fmt.Errorf("unsupported query: %s", query)
	}
	rows := &stubRows{cols: []string{"bucket", "payload"}}
	for bucket, payload := range c.State {
		rows.rows = append(rows.rows, []driver.Value{bucket, payload})
	}
	return rows, nil
}

// Payload returns the stored payload for bucket.
func (c *StubConn) Payload(bucket string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.State[bucket]
	return p, ok
}

func isUpsert(query string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO STATE")
}

func upsertArgs(args []driver.NamedValue) (string, []byte, error) {
	if len(args) != 2 {
		return "", nil, fmt.Errorf("expected 2 args, got %d", len(args))
	}
	bucket, ok := args[0].Value.(string)
	if !ok {
		return "", nil, fmt.Errorf("bucket must be a string")
	}
	payload, ok := args[1].Value.([]byte)
	if !ok {
		return "", nil, fmt.Errorf("payload must be bytes")
	}
	return bucket, append([]byte(nil), payload...), nil
}

type stubTx struct {
	conn *StubConn
}

func (t *stubTx) Commit() error {
	if t.conn.FailCommit {
		return errors.New("commit fail")
	}
	return nil
}

func (t *stubTx) Rollback() error { return nil }

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
