package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCommand struct {
	Value   string
	invalid bool

	Result string
}

func (c *fakeCommand) Validate() error {
	if c.invalid {
		return errors.New("bad command")
	}
	return nil
}

func TestCommandBus_SendDispatchesByType(t *testing.T) {
	b := NewCommandBus()

	err := b.Register(&fakeCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		cmd.(*fakeCommand).Result = "handled:" + cmd.(*fakeCommand).Value
		return nil
	}))
	require.NoError(t, err)

	cmd := &fakeCommand{Value: "x"}
	require.NoError(t, b.Send(context.Background(), cmd))
	assert.Equal(t, "handled:x", cmd.Result, "handlers write results back into the command")
}

func TestCommandBus_SendValidatesFirst(t *testing.T) {
	b := NewCommandBus()

	called := false
	err := b.Register(&fakeCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		called = true
		return nil
	}))
	require.NoError(t, err)

	err = b.Send(context.Background(), &fakeCommand{invalid: true})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestCommandBus_SendUnregistered(t *testing.T) {
	err := NewCommandBus().Send(context.Background(), &fakeCommand{})
	assert.Error(t, err)
}

func TestCommandBus_RegisterTwice(t *testing.T) {
	b := NewCommandBus()
	handler := CommandHandlerFunc(func(ctx context.Context, cmd Command) error { return nil })

	require.NoError(t, b.Register(&fakeCommand{}, handler))
	assert.Error(t, b.Register(&fakeCommand{}, handler))
}

func TestChain_OrdersMiddleware(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	handler := Chain(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		order = append(order, "handler")
		return nil
	}), mw("outer"), mw("inner"))

	require.NoError(t, handler.Handle(context.Background(), &fakeCommand{}))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestLoggingMiddleware_PassesErrorsThrough(t *testing.T) {
	boom := errors.New("boom")
	handler := Chain(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return boom
	}), LoggingMiddleware(zap.NewNop()))

	err := handler.Handle(context.Background(), &fakeCommand{})
	assert.ErrorIs(t, err, boom)
}
