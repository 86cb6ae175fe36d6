// Package loop drives a game engine in time.
//
// A Loop owns one engine.GameEngine on a single goroutine. A re-armable
// one-shot timer fires the engine's Tick; after every tick the timer is armed
// again with the engine's current Speed, so a level-up takes effect on the
// very next tick. Game over disarms the timer and starting a new game arms it
// again.
//
// Everything else that touches the engine goes through Do, which executes a
// function on the loop goroutine and waits for it. Commands and ticks can
// therefore never interleave.
//
// Usage:
//
//	l := loop.New(eng, loop.WithOnTick(push))
//	go l.Run()
//	defer l.Stop()
//
//	if err := l.Start(ctx); err != nil {
//		return err
//	}
//	err := l.Do(ctx, func(e *engine.GameEngine) {
//		e.Apply(engine.Rotate)
//	})
package loop
