package actors

import (
	stdctx "context"
	"fmt"
	"time"

	"netlibrarium/internal/engine"
	"netlibrarium/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Client sends requests to the engine supervisor and waits for the reply.
type Client struct {
	context actor.SenderContext
	pid     *actor.PID
	timeout time.Duration
}

// Spawn starts a Supervisor for e under system's root and returns a Client
// for it. timeout bounds every request.
func Spawn(system *actor.ActorSystem, e *engine.Engine, timeout time.Duration) *Client {
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewSupervisor(e, timeout)
	})
	pid := system.Root.Spawn(props)
	return &Client{context: system.Root, pid: pid, timeout: timeout}
}

func (c *Client) PID() *actor.PID {
	return c.pid
}

// Ask sends msg and waits for the reply, no longer than the request timeout
// or ctx's deadline, whichever comes first. An error reply is returned as
// the error.
func (c *Client) Ask(ctx stdctx.Context, msg Request) (interface{}, error) {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, utils.NewActorTimeoutError(fmt.Sprintf("%T", msg))
	}

	result, err := c.context.RequestFuture(c.pid, msg, timeout).Result()
	if err != nil {
		return nil, utils.NewAppError(utils.ErrActorTimeout, "Actor communication timeout: "+fmt.Sprintf("%T", msg), err)
	}
	if replyErr, ok := result.(error); ok {
		return nil, replyErr
	}
	return result, nil
}

// Ask sends msg through c and asserts the reply type.
func Ask[T any](ctx stdctx.Context, c *Client, msg Request) (T, error) {
	var zero T
	result, err := c.Ask(ctx, msg)
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, utils.NewAppError(utils.ErrMessageRejected, fmt.Sprintf("Unexpected reply %T", result), nil)
	}
	return typed, nil
}
