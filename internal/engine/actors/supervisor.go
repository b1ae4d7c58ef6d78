package actors

import (
	stdctx "context"
	"fmt"
	"time"

	"netlibrarium/internal/engine"
	"netlibrarium/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/rs/zerolog/log"
)

// Supervisor receives every request and hands it to a fresh worker, so a
// slow request never holds up the ones behind it. The worker answers the
// original sender directly.
type Supervisor struct {
	engine  *engine.Engine
	timeout time.Duration
}

func NewSupervisor(e *engine.Engine, timeout time.Duration) actor.Actor {
	return &Supervisor{engine: e, timeout: timeout}
}

func (s *Supervisor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Debug().Str("pid", context.Self().String()).Msg("Engine supervisor started")

	case *actor.Stopping, *actor.Stopped, *actor.Restarting, *actor.Terminated:
		// lifecycle

	case Request:
		props := actor.PropsFromProducer(func() actor.Actor {
			return &worker{engine: s.engine, timeout: s.timeout}
		})
		pid := context.Spawn(props)
		context.Forward(pid)

	default:
		log.Warn().Str("type", fmt.Sprintf("%T", msg)).Msg("Engine supervisor rejected message")
		if context.Sender() != nil {
			context.Respond(utils.NewAppError(utils.ErrMessageRejected, "Unsupported request", nil))
		}
	}
}

// worker runs exactly one request and stops.
type worker struct {
	engine  *engine.Engine
	timeout time.Duration
}

func (w *worker) Receive(context actor.Context) {
	req, ok := context.Message().(Request)
	if !ok {
		return
	}
	defer context.Stop(context.Self())

	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), w.timeout)
	defer cancel()

	result, err := req.run(ctx, w.engine)
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(result)
}
