package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mendel/pkg/domain"
	"mendel/pkg/genetics"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewInMemoryService(opts...)
}

func TestCreateSessionDefaultsToMono(t *testing.T) {
	svc := newTestService(t)
	session, err := svc.CreateSession(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, genetics.Mono, session.Arity)
	assert.NotNil(t, session.Inheritance)

	got, err := svc.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestCreateSessionRejectsUnknownArity(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.CreateSession(context.Background(), "tri")
	var invalid ErrInvalidInput
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "arity", invalid.Field)
}

func TestGetSessionNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.GetSession(context.Background(), "missing")
	var notFound domain.ErrSessionNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ID)
}

func TestListAndDeleteSessions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	a, err := svc.CreateSession(ctx, "mono")
	require.NoError(t, err)
	b, err := svc.CreateSession(ctx, "poly")
	require.NoError(t, err)

	sessions, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	_, err = svc.SubmitCross(ctx, a.ID, "Aa", "Aa")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteSession(ctx, a.ID))

	_, err = svc.CurrentCross(ctx, a.ID)
	var notFound domain.ErrSessionNotFound
	assert.ErrorAs(t, err, &notFound)

	sessions, err = svc.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, b.ID, sessions[0].ID)

	assert.Error(t, svc.DeleteSession(ctx, a.ID))
}

func TestSetArityResetsCurrentCross(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session, err := svc.CreateSession(ctx, "mono")
	require.NoError(t, err)
	_, err = svc.SubmitCross(ctx, session.ID, "Aa", "aa")
	require.NoError(t, err)

	updated, err := svc.SetArity(ctx, session.ID, "DI")
	require.NoError(t, err)
	assert.Equal(t, genetics.Di, updated.Arity)

	_, err = svc.CurrentCross(ctx, session.ID)
	assert.True(t, errors.Is(err, ErrNoActiveCross))

	_, err = svc.SetArity(ctx, session.ID, "hexa")
	var invalid ErrInvalidInput
	assert.ErrorAs(t, err, &invalid)
}

func TestSetInheritance(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	session, err := svc.CreateSession(ctx, "mono")
	require.NoError(t, err)

	gi, err := svc.SetInheritance(ctx, session.ID, "A", genetics.GeneInheritance{
		Type:   "Incomplete",
		Labels: genetics.Labels{Dominant: "Vermelha", Intermediate: "Rosa"},
	})
	require.NoError(t, err)
	assert.Equal(t, genetics.Incomplete, gi.Type)
	assert.Equal(t, "Vermelha", gi.Labels.Dominant)
	assert.Equal(t, genetics.DefaultLabels.Recessive, gi.Labels.Recessive)

	cfg, err := svc.Inheritance(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, gi, cfg[genetics.GeneID('a')])

	_, err = svc.SetInheritance(ctx, session.ID, "ab", genetics.GeneInheritance{})
	var invalid ErrInvalidInput
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "gene", invalid.Field)

	_, err = svc.SetInheritance(ctx, session.ID, "a", genetics.GeneInheritance{Type: "partial"})
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "type", invalid.Field)

	_, err = svc.SetInheritance(ctx, "missing", "a", genetics.GeneInheritance{})
	var notFound domain.ErrSessionNotFound
	assert.ErrorAs(t, err, &notFound)
}
