package loop

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/wricardo/blockfall/game/engine"
)

// ErrLoopStopped is returned by calls made after Stop
var ErrLoopStopped = errors.New("game loop stopped")

// Scheduler arms a one-shot timer. A nil channel never fires.
type Scheduler func(d time.Duration) <-chan time.Time

// Loop owns a GameEngine on a single goroutine. Gravity ticks, player
// commands and reads are all executed there one at a time, so a tick
// (including any landing and line clear) always finishes before the next
// command runs.
type Loop struct {
	engine   *engine.GameEngine
	inbox    chan request
	quit     chan struct{}
	done     chan struct{}
	schedule Scheduler
	onTick   func(*engine.GameState)
	stopOnce sync.Once
}

type request struct {
	fn    func(*engine.GameEngine)
	reply chan struct{}
}

// Option configures a Loop
type Option func(*Loop)

// WithScheduler replaces the real timer, mainly for tests
func WithScheduler(s Scheduler) Option {
	return func(l *Loop) {
		if s != nil {
			l.schedule = s
		}
	}
}

// WithOnTick registers a callback run on the loop goroutine after every
// gravity tick with a snapshot of the state.
func WithOnTick(fn func(*engine.GameState)) Option {
	return func(l *Loop) {
		l.onTick = fn
	}
}

// New creates a loop around e. Call Run to start processing.
func New(e *engine.GameEngine, opts ...Option) *Loop {
	l := &Loop{
		engine:   e,
		inbox:    make(chan request),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		schedule: time.After,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run processes ticks and requests until Stop is called
func (l *Loop) Run() {
	defer close(l.done)

	var tick <-chan time.Time
	for {
		select {
		case <-l.quit:
			return

		case req := <-l.inbox:
			before := l.engine.GetState()
			wasRunning := l.engine.Status() == engine.StatusRunning
			req.fn(l.engine)

			// StartGame swaps in a fresh state, which restarts the timer
			restarted := l.engine.GetState() != before
			switch {
			case l.engine.Status() != engine.StatusRunning:
				tick = nil
			case restarted || !wasRunning:
				tick = l.schedule(l.engine.Speed())
			}
			close(req.reply)

		case <-tick:
			l.engine.Tick()
			if l.engine.Status() == engine.StatusRunning {
				tick = l.schedule(l.engine.Speed())
			} else {
				tick = nil
			}
			if l.onTick != nil {
				l.onTick(l.engine.Snapshot())
			}
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish. fn must not
// keep references to the engine or its state after returning.
func (l *Loop) Do(ctx context.Context, fn func(*engine.GameEngine)) error {
	req := request{fn: fn, reply: make(chan struct{})}
	select {
	case l.inbox <- req:
	case <-l.quit:
		return ErrLoopStopped
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// An accepted request always completes before the loop looks at quit
	select {
	case <-req.reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start begins a new game and arms the gravity timer
func (l *Loop) Start(ctx context.Context) error {
	return l.Do(ctx, func(e *engine.GameEngine) {
		e.StartGame()
	})
}

// Snapshot returns a copy of the current state
func (l *Loop) Snapshot(ctx context.Context) (*engine.GameState, error) {
	var state *engine.GameState
	err := l.Do(ctx, func(e *engine.GameEngine) {
		state = e.Snapshot()
	})
	return state, err
}

// Listen applies commands from src until the context ends, the source
// closes or the loop stops.
func (l *Loop) Listen(ctx context.Context, src engine.InputSource) error {
	cmds := src.Commands()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-cmds:
			if !ok {
				return nil
			}
			err := l.Do(ctx, func(e *engine.GameEngine) {
				e.Apply(cmd)
			})
			if err != nil {
				return err
			}
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)
		log.Printf("[LOOP] stopped")
	})
}

// Done is closed once Run has returned
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// ChannelInput is an InputSource backed by a channel
type ChannelInput chan engine.Command

// Commands returns the channel itself
func (c ChannelInput) Commands() <-chan engine.Command {
	return c
}
