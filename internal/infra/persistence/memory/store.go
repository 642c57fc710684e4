// Package memory provides an in-memory implementation of the session store
// used for tests and ephemeral environments. The sqlite and postgres
// backends embed it and snapshot its state after every transaction.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mendel/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.SessionStore = (*Store)(nil)

type (
	// Session aliases domain.Session for in-memory persistence operations.
	Session = domain.Session
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	sessions map[string]Session
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Sessions map[string]Session `json:"sessions"`
}

func newMemoryState() memoryState {
	return memoryState{sessions: make(map[string]Session)}
}

func (s memoryState) clone() memoryState {
	out := memoryState{sessions: make(map[string]Session, len(s.sessions))}
	for k, v := range s.sessions {
		out.sessions[k] = v.Clone()
	}
	return out
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	return Snapshot{Sessions: state.clone().sessions}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Sessions {
		if v.ID == "" {
			v.ID = k
		}
		state.sessions[k] = v.Clone()
	}
	return state
}

// Store provides an in-memory transactional session store.
type Store struct {
	mu    sync.RWMutex
	state memoryState
	nowFn func() time.Time
	idFn  func() string
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used for CreatedAt/UpdatedAt.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.nowFn = fn
		}
	}
}

// WithIDGenerator overrides session identifier generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.idFn = fn
		}
	}
}

// NewStore constructs an empty in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		state: newMemoryState(),
		nowFn: func() time.Time { return time.Now().UTC() },
		idFn:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// NowFunc returns the time provider used by the store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

func (v transactionView) ListSessions() []Session {
	return sortedSessions(v.state.sessions)
}

func (v transactionView) FindSession(id string) (Session, bool) {
	s, ok := v.state.sessions[id]
	if !ok {
		return Session{}, false
	}
	return s.Clone(), true
}

// RunInTransaction applies fn to a private copy of the state and commits it
// only when fn succeeds. The returned changes describe what was committed.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) ([]Change, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}
	if err := fn(tx); err != nil {
		return nil, err
	}
	s.state = tx.state
	return tx.changes, nil
}

// View executes fn against a read-only snapshot of the state.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state.clone()
	return fn(newTransactionView(&state))
}

// GetSession returns a session by ID.
func (s *Store) GetSession(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.state.sessions[id]
	if !ok {
		return Session{}, false
	}
	return session.Clone(), true
}

// ListSessions returns all sessions ordered by creation time then ID.
func (s *Store) ListSessions() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedSessions(s.state.sessions)
}

func sortedSessions(m map[string]Session) []Session {
	out := make([]Session, 0, len(m))
	for _, v := range m {
		out = append(out, v.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view of the in-flight transaction state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindSession looks up a session inside the transaction.
func (tx *transaction) FindSession(id string) (Session, bool) {
	return newTransactionView(&tx.state).FindSession(id)
}

// CreateSession stores a new session, assigning an ID when missing.
func (tx *transaction) CreateSession(session Session) (Session, error) {
	if session.ID == "" {
		session.ID = tx.store.idFn()
	}
	if _, exists := tx.state.sessions[session.ID]; exists {
		return Session{}, fmt.Errorf("session %q already exists", session.ID)
	}
	session = session.Clone()
	session.CreatedAt = tx.now
	session.UpdatedAt = tx.now
	tx.state.sessions[session.ID] = session
	after := session.Clone()
	tx.recordChange(Change{Action: domain.ActionCreate, After: &after})
	return session.Clone(), nil
}

// UpdateSession mutates a session using the provided mutator function.
func (tx *transaction) UpdateSession(id string, mutator func(*Session) error) (Session, error) {
	current, ok := tx.state.sessions[id]
	if !ok {
		return Session{}, domain.ErrSessionNotFound{ID: id}
	}
	before := current.Clone()
	current = current.Clone()
	if err := mutator(&current); err != nil {
		return Session{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.sessions[id] = current.Clone()
	after := current.Clone()
	tx.recordChange(Change{Action: domain.ActionUpdate, Before: &before, After: &after})
	return current, nil
}

// DeleteSession removes a session from the transaction state.
func (tx *transaction) DeleteSession(id string) error {
	current, ok := tx.state.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound{ID: id}
	}
	delete(tx.state.sessions, id)
	before := current.Clone()
	tx.recordChange(Change{Action: domain.ActionDelete, Before: &before})
	return nil
}
