package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommand struct {
	name string
	ran  int
	err  error
}

func (s *stubCommand) Name() string        { return s.name }
func (s *stubCommand) Description() string { return "stub " + s.name }
func (s *stubCommand) Run(ctx context.Context, inv *Invocation) error {
	s.ran++
	return s.err
}

func TestRegistry_GetAllSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubCommand{name: "snap"})
	r.Register(&stubCommand{name: "about"})
	r.Register(&stubCommand{name: "ping"})

	var names []string
	for _, c := range r.GetAll() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"about", "ping", "snap"}, names)
	assert.Nil(t, r.Get("missing"))
	assert.NotNil(t, r.Get("snap"))
}

func TestApply_OrderAndRoot(t *testing.T) {
	inner := &stubCommand{name: "snap"}
	var trace []string
	mw := func(tag string) Middleware {
		return func(c Command) Command {
			return Wrap(c, func(ctx context.Context, inv *Invocation) error {
				trace = append(trace, tag)
				return c.Run(ctx, inv)
			})
		}
	}

	c := Apply(inner, mw("first"), mw("second"))
	require.NoError(t, c.Run(context.Background(), &Invocation{}))

	assert.Equal(t, []string{"second", "first"}, trace)
	assert.Equal(t, 1, inner.ran)
	assert.Same(t, inner, Root(c))
	assert.Equal(t, "snap", c.Name())
	assert.Equal(t, "stub snap", c.Description())
}

func TestWrapped_NilRunFuncDelegates(t *testing.T) {
	boom := errors.New("boom")
	inner := &stubCommand{name: "snap", err: boom}
	w := &Wrapped{Inner: inner}

	assert.ErrorIs(t, w.Run(context.Background(), nil), boom)
	assert.Equal(t, 1, inner.ran)
}

func TestInvocation_Option(t *testing.T) {
	inv := &Invocation{Options: map[string]string{"policy_id": "abc123"}}

	v, ok := inv.Option("policy_id")
	assert.True(t, ok)
	assert.Equal(t, "abc123", v)

	_, ok = inv.Option("missing")
	assert.False(t, ok)

	var nilInv *Invocation
	_, ok = nilInv.Option("policy_id")
	assert.False(t, ok)
}
