package loop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/blockfall/game/engine"
)

// fakeClock hands out one-shot channels the test fires by hand
type fakeClock struct {
	mu      sync.Mutex
	armed   []time.Duration
	current chan time.Time
}

func (c *fakeClock) schedule(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armed = append(c.armed, d)
	c.current = make(chan time.Time, 1)
	return c.current
}

func (c *fakeClock) fire() {
	c.mu.Lock()
	ch := c.current
	c.mu.Unlock()
	ch <- time.Now()
}

func (c *fakeClock) arms() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.armed...)
}

func testConfig(rows, columns int) *engine.GameConfig {
	return &engine.GameConfig{
		Name:         "loop",
		Description:  "loop test board",
		Rows:         rows,
		Columns:      columns,
		InitialSpeed: 500,
		MinSpeed:     100,
		SpeedStep:    20,
	}
}

type harness struct {
	loop  *Loop
	clock *fakeClock
	ticks chan *engine.GameState
}

func newHarness(t *testing.T, config *engine.GameConfig, shapes ...engine.Shape) *harness {
	t.Helper()
	eng, err := engine.NewEngine(config, engine.WithPieceSource(engine.NewSequenceSource(shapes...)))
	require.NoError(t, err)

	h := &harness{clock: &fakeClock{}, ticks: make(chan *engine.GameState, 64)}
	h.loop = New(eng,
		WithScheduler(h.clock.schedule),
		WithOnTick(func(s *engine.GameState) { h.ticks <- s }),
	)
	go h.loop.Run()
	t.Cleanup(h.loop.Stop)
	return h
}

func (h *harness) tick(t *testing.T) *engine.GameState {
	t.Helper()
	h.clock.fire()
	select {
	case s := <-h.ticks:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tick")
		return nil
	}
}

func TestStartArmsTimer(t *testing.T) {
	h := newHarness(t, testConfig(20, 10), engine.ShapeI)
	ctx := context.Background()

	assert.Empty(t, h.clock.arms(), "timer armed before start")

	require.NoError(t, h.loop.Start(ctx))
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, h.clock.arms())

	state := h.tick(t)
	assert.Equal(t, 1, state.Active.Origin.Row)
	assert.Equal(t, engine.StatusRunning, state.Status)
	assert.Len(t, h.clock.arms(), 2)
}

func TestCommandsDoNotRearm(t *testing.T) {
	h := newHarness(t, testConfig(20, 10), engine.ShapeI)
	ctx := context.Background()
	require.NoError(t, h.loop.Start(ctx))

	var moved bool
	require.NoError(t, h.loop.Do(ctx, func(e *engine.GameEngine) {
		moved = e.Apply(engine.MoveLeft)
	}))
	assert.True(t, moved)
	assert.Len(t, h.clock.arms(), 1)
}

func TestSpeedChangeAppliesOnNextArm(t *testing.T) {
	h := newHarness(t, testConfig(20, 10), engine.ShapeI)
	ctx := context.Background()
	require.NoError(t, h.loop.Start(ctx))

	require.NoError(t, h.loop.Do(ctx, func(e *engine.GameEngine) {
		e.GetState().Level = 5
		e.UpdateScore()
	}))
	// The pending timer keeps its old interval
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, h.clock.arms())

	h.tick(t)
	arms := h.clock.arms()
	require.Len(t, arms, 2)
	assert.Equal(t, 400*time.Millisecond, arms[1])
}

func TestGameOverDisarmsAndStartRearms(t *testing.T) {
	// Two O pieces fill a 4x4 board's middle columns; the third cannot spawn
	h := newHarness(t, testConfig(4, 4), engine.ShapeO)
	ctx := context.Background()
	require.NoError(t, h.loop.Start(ctx))

	var state *engine.GameState
	for i := 0; i < 4; i++ {
		state = h.tick(t)
	}
	require.True(t, state.IsGameOver)
	assert.Equal(t, engine.StatusGameOver, state.Status)
	assert.Len(t, h.clock.arms(), 4, "no re-arm after game over")

	// Input after game over changes nothing and does not arm the timer
	var moved bool
	require.NoError(t, h.loop.Do(ctx, func(e *engine.GameEngine) {
		moved = e.Apply(engine.MoveDown)
	}))
	assert.False(t, moved)
	assert.Len(t, h.clock.arms(), 4)

	require.NoError(t, h.loop.Start(ctx))
	arms := h.clock.arms()
	require.Len(t, arms, 5)
	assert.Equal(t, 500*time.Millisecond, arms[4])

	snap, err := h.loop.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, snap.IsGameOver)
	assert.Equal(t, 0, snap.Grid.OccupiedCount())
}

func TestRestartWhileRunningRearms(t *testing.T) {
	h := newHarness(t, testConfig(20, 10), engine.ShapeT)
	ctx := context.Background()
	require.NoError(t, h.loop.Start(ctx))
	require.NoError(t, h.loop.Start(ctx))
	assert.Len(t, h.clock.arms(), 2)
}

func TestDoSerializesCallers(t *testing.T) {
	h := newHarness(t, testConfig(20, 10), engine.ShapeI)
	ctx := context.Background()
	require.NoError(t, h.loop.Start(ctx))

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, h.loop.Do(ctx, func(e *engine.GameEngine) {
				e.GetState().Score++
			}))
		}()
	}
	wg.Wait()

	snap, err := h.loop.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers, snap.Score)
}

func TestListenAppliesCommands(t *testing.T) {
	h := newHarness(t, testConfig(20, 10), engine.ShapeI)
	ctx := context.Background()
	require.NoError(t, h.loop.Start(ctx))

	input := make(ChannelInput, 3)
	input <- engine.MoveLeft
	input <- engine.MoveLeft
	input <- engine.MoveDown
	close(input)

	require.NoError(t, h.loop.Listen(ctx, input))

	snap, err := h.loop.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.Coord{Row: 1, Col: 1}, snap.Active.Origin)
}

func TestListenStopsWithContext(t *testing.T) {
	h := newHarness(t, testConfig(20, 10), engine.ShapeI)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- h.loop.Listen(ctx, make(ChannelInput)) }()
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

func TestStop(t *testing.T) {
	h := newHarness(t, testConfig(20, 10), engine.ShapeI)
	h.loop.Stop()
	h.loop.Stop()

	select {
	case <-h.loop.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	err := h.loop.Do(context.Background(), func(*engine.GameEngine) {})
	assert.ErrorIs(t, err, ErrLoopStopped)
	assert.ErrorIs(t, h.loop.Start(context.Background()), ErrLoopStopped)
}

func TestRealTimerTicks(t *testing.T) {
	config := testConfig(20, 10)
	config.InitialSpeed = 10
	config.MinSpeed = 10
	eng, err := engine.NewEngine(config, engine.WithPieceSource(engine.NewSequenceSource(engine.ShapeT)))
	require.NoError(t, err)

	ticks := make(chan *engine.GameState, 64)
	l := New(eng, WithOnTick(func(s *engine.GameState) {
		select {
		case ticks <- s:
		default:
		}
	}))
	go l.Run()
	defer l.Stop()

	require.NoError(t, l.Start(context.Background()))
	select {
	case s := <-ticks:
		assert.GreaterOrEqual(t, s.Active.Origin.Row, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("no tick from the real timer")
	}
}
