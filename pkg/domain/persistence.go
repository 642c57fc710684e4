package domain

import "context"

// Action describes the kind of mutation recorded in a Change.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Change captures one session mutation applied within a transaction.
type Change struct {
	Action Action   `json:"action"`
	Before *Session `json:"before,omitempty"`
	After  *Session `json:"after,omitempty"`
}

// Transaction exposes the session operations a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateSession(Session) (Session, error)
	UpdateSession(id string, mutator func(*Session) error) (Session, error)
	DeleteSession(id string) error
	FindSession(id string) (Session, bool)
}

// TransactionView provides read-only access to a snapshot of the store.
type TransactionView interface {
	ListSessions() []Session
	FindSession(id string) (Session, bool)
}

// SessionStore is the abstraction over durable session backends. Mutations
// run inside RunInTransaction and are either applied together or not at all.
type SessionStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) ([]Change, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetSession(id string) (Session, bool)
	ListSessions() []Session
}
