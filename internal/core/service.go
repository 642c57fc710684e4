package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"mendel/internal/blob"
	"mendel/internal/infra/persistence/memory"
	"mendel/pkg/domain"
	"mendel/pkg/genetics"
)

// DefaultCrossTTL is how long a submitted cross stays available to the
// detail, probability and export operations.
const DefaultCrossTTL = 30 * time.Minute

// ErrNoActiveCross is returned when an operation needs a submitted cross and
// the session has none, or it expired.
var ErrNoActiveCross = errors.New("no active cross")

// ErrInvalidInput reports a malformed request argument.
type ErrInvalidInput struct {
	Field  string
	Reason string
}

func (e ErrInvalidInput) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrRecordOutOfRange reports a cross record index outside the current cross.
type ErrRecordOutOfRange struct {
	Index int
	Count int
}

func (e ErrRecordOutOfRange) Error() string {
	return fmt.Sprintf("cross record %d out of range (%d records)", e.Index, e.Count)
}

// ErrFormInvalid is returned by SubmitCross when the parents may not be
// crossed. Form carries every field's validation.
type ErrFormInvalid struct {
	Form FormValidation
}

func (e ErrFormInvalid) Error() string {
	if e.Form.Error != nil {
		return e.Form.Error.Message
	}
	return "parents are incomplete"
}

// Service runs genetics crosses on behalf of sessions. Sessions live in a
// domain.SessionStore; the latest cross of each session lives in a TTL cache.
type Service struct {
	store   domain.SessionStore
	crosses *cache.Cache
	blobs   blob.Store
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder
	now     func() time.Time
	newKey  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsRecorder sets the metrics sink.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithAuditRecorder sets the audit sink for mutating operations.
func WithAuditRecorder(a AuditRecorder) Option {
	return func(s *Service) {
		if a != nil {
			s.audit = a
		}
	}
}

// WithClock overrides the time source.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithBlobStore sets where exports are written.
func WithBlobStore(b blob.Store) Option {
	return func(s *Service) {
		if b != nil {
			s.blobs = b
		}
	}
}

// WithCrossTTL sets how long submitted crosses are retained.
func WithCrossTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.crosses = cache.New(ttl, 0)
		}
	}
}

// WithKeyGenerator overrides the export key generator.
func WithKeyGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newKey = fn
		}
	}
}

// NewService constructs a service backed by store. Expired crosses are only
// evicted by PruneCrosses, so long-running callers should schedule it.
func NewService(store domain.SessionStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		crosses: cache.New(DefaultCrossTTL, 0),
		logger:  noopLogger{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
		audit:   noopAuditRecorder{},
		now:     func() time.Time { return time.Now().UTC() },
		newKey:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.blobs == nil {
		s.blobs = blob.NewMemory()
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory session store.
func NewInMemoryService(opts ...Option) *Service {
	return NewService(memory.NewStore(), opts...)
}

// Store returns the underlying session store.
func (s *Service) Store() domain.SessionStore { return s.store }

// PruneCrosses evicts expired crosses.
func (s *Service) PruneCrosses() { s.crosses.DeleteExpired() }

func parseArity(raw string) (genetics.CrossArity, error) {
	if raw == "" {
		return genetics.Mono, nil
	}
	arity, ok := genetics.ParseCrossArity(raw)
	if !ok {
		return "", ErrInvalidInput{Field: "arity", Reason: fmt.Sprintf("unknown cross type %q", raw)}
	}
	return arity, nil
}

// CreateSession starts a session with the given arity; blank means mono.
func (s *Service) CreateSession(ctx context.Context, arity string) (domain.Session, error) {
	var created domain.Session
	err := s.observe(ctx, "create_session", "", true, func(ctx context.Context) error {
		a, err := parseArity(arity)
		if err != nil {
			return err
		}
		_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateSession(domain.Session{Arity: a, Inheritance: genetics.InheritanceConfig{}})
			return err
		})
		return err
	})
	if err == nil {
		s.logger.Info("session created", "session_id", created.ID, "arity", created.Arity)
	}
	return created, err
}

// GetSession returns a session by id.
func (s *Service) GetSession(ctx context.Context, id string) (domain.Session, error) {
	var session domain.Session
	err := s.observe(ctx, "get_session", id, false, func(context.Context) error {
		var err error
		session, err = s.session(id)
		return err
	})
	return session, err
}

func (s *Service) session(id string) (domain.Session, error) {
	session, ok := s.store.GetSession(id)
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound{ID: id}
	}
	return session, nil
}

// ListSessions returns every session ordered by creation time.
func (s *Service) ListSessions(ctx context.Context) ([]domain.Session, error) {
	var sessions []domain.Session
	err := s.observe(ctx, "list_sessions", "", false, func(ctx context.Context) error {
		return s.store.View(ctx, func(v domain.TransactionView) error {
			sessions = v.ListSessions()
			return nil
		})
	})
	return sessions, err
}

// DeleteSession removes a session and forgets its cross.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.observe(ctx, "delete_session", id, true, func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteSession(id)
		})
		if err == nil {
			s.crosses.Delete(id)
		}
		return err
	})
}

// SetArity changes the session's cross type. The current cross is discarded
// because it was validated against the previous arity.
func (s *Service) SetArity(ctx context.Context, id, arity string) (domain.Session, error) {
	var updated domain.Session
	err := s.observe(ctx, "set_arity", id, true, func(ctx context.Context) error {
		a, err := parseArity(arity)
		if err != nil {
			return err
		}
		_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			updated, err = tx.UpdateSession(id, func(session *domain.Session) error {
				session.Arity = a
				return nil
			})
			return err
		})
		if err == nil {
			s.crosses.Delete(id)
		}
		return err
	})
	return updated, err
}

// Inheritance returns the session's configured genes with defaults filled in.
func (s *Service) Inheritance(ctx context.Context, id string) (genetics.InheritanceConfig, error) {
	var cfg genetics.InheritanceConfig
	err := s.observe(ctx, "get_inheritance", id, false, func(context.Context) error {
		session, err := s.session(id)
		if err != nil {
			return err
		}
		cfg = make(genetics.InheritanceConfig, len(session.Inheritance))
		for gene := range session.Inheritance {
			cfg[gene] = session.Inheritance.Lookup(gene)
		}
		return nil
	})
	return cfg, err
}

// SetInheritance updates one gene's dominance model and labels. Blank fields
// of gi keep their current value. The current cross stays valid; its
// phenotype views are recomputed on the next read.
func (s *Service) SetInheritance(ctx context.Context, id, gene string, gi genetics.GeneInheritance) (genetics.GeneInheritance, error) {
	var out genetics.GeneInheritance
	err := s.observe(ctx, "set_inheritance", id, true, func(ctx context.Context) error {
		var g genetics.GeneID
		if err := g.UnmarshalText([]byte(gene)); err != nil {
			return ErrInvalidInput{Field: "gene", Reason: err.Error()}
		}
		if gi.Type != "" {
			t, ok := genetics.ParseInheritanceType(string(gi.Type))
			if !ok {
				return ErrInvalidInput{Field: "type", Reason: fmt.Sprintf("unknown inheritance type %q", gi.Type)}
			}
			gi.Type = t
		}
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			session, err := tx.UpdateSession(id, func(session *domain.Session) error {
				if session.Inheritance == nil {
					session.Inheritance = genetics.InheritanceConfig{}
				}
				session.Inheritance.Set(g, gi)
				return nil
			})
			out = session.Inheritance.Lookup(g)
			return err
		})
		return err
	})
	return out, err
}
