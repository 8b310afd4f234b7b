// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"gioui.org/touch/f32"
	"gioui.org/touch/internal/fling"
	"gioui.org/touch/io/pointer"
	"gioui.org/touch/multitouch"
	"gioui.org/touch/taplock"
)

// Engine is the gesture state machine of one element.
//
// Process and the long press timer are serialized by the engine.
// Results are queued while the engine is locked and delivered after it
// is unlocked, one at a time and in order, so listeners, callbacks and
// commands may call any method of the engine, Process and Dispose
// included.
type Engine struct {
	log *zap.SugaredLogger

	mu       sync.Mutex
	cfg      Config
	listener Listener
	handlers map[Result][]func(*Event)
	commands map[Result]binding
	limiter  *taplock.Limiter
	tapKey   string

	tracker multitouch.Tracker
	// last is the previous sample of the gesture.
	last *Event
	// down is the most recent press.
	down     *Event
	result   Result
	tapSlop  float32
	maybeTap bool
	// flingX and flingY follow the contact that started the gesture.
	flingX, flingY fling.Extrapolation
	flingID        pointer.ID

	// Long press timer state, see longpress.go.
	lp        longPressState
	lpLocked  bool
	lpGen     uint64
	timer     timer
	afterFunc func(d time.Duration, f func()) timer

	onDispose []func()

	// queue holds results not yet delivered.
	queue       []emission
	dispatching atomic.Bool

	mode         atomic.Uint32
	lock         atomic.Int32
	panning      atomic.Bool
	longPressing atomic.Bool
	disposed     atomic.Bool
}

type binding struct {
	cmd   Command
	param any
}

// emission is a result waiting for delivery.
type emission struct {
	kind   pointer.Kind
	event  *Event
	result Result
	// down, when set, cancels the delivery if its PreventDefault was
	// set by an earlier consumer.
	down *Event
}

// subscribers is the delivery state read under the lock for one
// emission.
type subscribers struct {
	listener Listener
	command  binding
	bound    bool
	handlers []func(*Event)
	limiter  *taplock.Limiter
	tapKey   string
	tapLock  time.Duration
}

// New returns an Engine configured by cfg. A nil log discards log
// output.
func New(log *zap.SugaredLogger, cfg Config) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	g := &Engine{
		log:       log,
		handlers:  make(map[Result][]func(*Event)),
		commands:  make(map[Result]binding),
		afterFunc: afterFunc,
	}
	g.tracker.Reset()
	g.configure(cfg)
	return g
}

// Configure replaces the configuration. A gesture in progress keeps
// its long press timer and tap slop.
func (g *Engine) Configure(cfg Config) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.configure(cfg)
}

func (g *Engine) configure(cfg Config) {
	g.cfg = cfg
	g.mode.Store(uint32(cfg.Mode))
}

// Mode returns the configured sharing mode.
func (g *Engine) Mode() Mode {
	return Mode(g.mode.Load())
}

// SetListener sets the listener receiving every result.
func (g *Engine) SetListener(l Listener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listener = l
}

// Handle registers fn to be called for every r result. Callbacks run
// in registration order.
func (g *Engine) Handle(r Result, fn func(*Event)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handlers[r] = append(g.handlers[r], fn)
}

// BindCommand binds cmd to r results, replacing any previous binding.
// The command receives param, or the *Event when param is nil. A nil
// cmd removes the binding.
func (g *Engine) BindCommand(r Result, cmd Command, param any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cmd == nil {
		delete(g.commands, r)
		return
	}
	g.commands[r] = binding{cmd: cmd, param: param}
}

// SetTapLimiter debounces Tapped callbacks and commands through l
// under key, for Config.TapLock after each tap.
func (g *Engine) SetTapLimiter(l *taplock.Limiter, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.limiter, g.tapKey = l, key
}

// OnDispose registers fn to run once when the engine is disposed.
// Backends use it to release captured input.
func (g *Engine) OnDispose(fn func()) {
	g.mu.Lock()
	if !g.disposed.Load() {
		g.onDispose = append(g.onDispose, fn)
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()
	g.safeCall(fn)
}

// LockState returns the sharing decision for the current gesture.
func (g *Engine) LockState() LockState {
	return LockState(g.lock.Load())
}

// SetLockState records the sharing decision for the current gesture.
// It is reset to Initial whenever Down or Up is reported.
func (g *Engine) SetLockState(s LockState) {
	if old := LockState(g.lock.Swap(int32(s))); old != s {
		g.log.Debugw("lock state changed", "from", old, "to", s)
	}
}

// IsPanning reports whether the current gesture is panning.
func (g *Engine) IsPanning() bool {
	return g.panning.Load()
}

// IsLongPressing reports whether the current gesture turned into a
// long press.
func (g *Engine) IsLongPressing() bool {
	return g.longPressing.Load()
}

// Disposed reports whether Dispose was called.
func (g *Engine) Disposed() bool {
	return g.disposed.Load()
}

// Dispose stops the long press timer and runs the dispose hooks. Later
// calls to Process are ignored and results not yet delivered are
// dropped. Dispose may be called more than once, from callbacks too.
func (g *Engine) Dispose() {
	if !g.disposed.CAS(false, true) {
		return
	}
	g.mu.Lock()
	g.disarm()
	hooks := g.onDispose
	g.onDispose = nil
	g.queue = nil
	g.last, g.down = nil, nil
	g.tracker.Reset()
	g.mu.Unlock()

	var errs error
	for _, fn := range hooks {
		errs = multierr.Append(errs, call(fn))
	}
	if errs != nil {
		g.log.Errorw("dispose hook failed", "error", errs)
	}
}

// Process feeds one sample to the engine. Samples of one element must
// arrive in capture order.
func (g *Engine) Process(s pointer.Sample) {
	if g.disposed.Load() {
		return
	}
	if err := s.Validate(); err != nil {
		g.log.Warnw("dropping pointer sample", "kind", s.Kind, "id", s.PointerID, "error", err)
		return
	}
	g.mu.Lock()
	if g.disposed.Load() || g.cfg.Mode == Disabled {
		g.mu.Unlock()
		return
	}
	if err := g.update(&Event{Sample: s}); err != nil {
		g.log.Errorw("gesture processing failed", "kind", s.Kind, "id", s.PointerID, "error", err)
	}
	g.mu.Unlock()
	g.dispatch()
}

// update runs the state machine for e. The engine must be locked.
func (g *Engine) update(e *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gesture: processing %v: %v", e.Kind, r)
		}
		g.last = e
	}()
	g.process(e)
	return nil
}

func (g *Engine) process(e *Event) {
	kind := e.Kind

	if kind&(pointer.Entered|pointer.Pressed) != 0 {
		prior := g.last
		g.last = nil
		g.tapSlop = g.cfg.tapSlop()
		g.lpLocked = false
		g.disarm()
		g.maybeTap = false
		g.setLongPress(lpIdle)
		if prior == nil || !prior.InContact {
			g.maybeTap = true
			g.tracker.Restart(e.PointerID, e.Position)
			g.flingX.Reset()
			g.flingY.Reset()
			g.flingID = e.PointerID
			g.sampleFling(e)
			g.arm()
		}
		e.InContact = true
		g.down = e
		g.emit(kind, e, Down)
		g.result = Down
	}

	fillMotion(e, g.last)

	switch {
	case kind == pointer.Wheel:
		g.lpLocked = true
		g.emit(kind, e, Wheel)
		g.result = Wheel
	case kind == pointer.Pointer:
		g.emit(kind, e, Pointer)
		g.result = Pointer
	case kind&pointer.Pan != 0:
		if m, ok := g.tracker.AddMovement(e.PointerID, e.Position); ok {
			e.Manipulation = &m
		}
		if kind == pointer.Moved {
			g.sampleFling(e)
		}
		if kind != pointer.Moved {
			// Explicit pan signals rule out a long press.
			g.lpLocked = true
			g.disarm()
		}
		if kind == pointer.Moved || kind == pointer.PanEnded {
			if !e.Inside && !g.cfg.Draggable {
				kind = pointer.Exited
			} else {
				g.panning.Store(true)
				g.result = Panning
			}
		} else {
			g.result = Panning
		}
	}

	if kind&pointer.Terminal != 0 {
		e.InContact = e.Touches >= 2
		if e.InContact {
			g.maybeTap = false
			g.tracker.RemoveTouch(e.PointerID)
		} else {
			g.tracker.Reset()
			g.disarm()
			e.Motion.Fling = f32.Pt(g.flingX.Velocity(), g.flingY.Velocity())
			if g.tappable(kind, e) {
				g.queue = append(g.queue, emission{kind: kind, event: e, result: Tapped, down: g.down})
				g.result = Tapped
			} else {
				g.log.Debugw("tap skipped", "kind", kind, "total", e.Motion.Total)
			}
			g.panning.Store(false)
		}
		g.emit(kind, e, Up)
		g.result = Up
	}

	if !e.Motion.Delta.IsZero() && g.result == Panning {
		g.emit(kind, e, Panning)
		g.panning.Store(true)
	}
}

func (g *Engine) sampleFling(e *Event) {
	if e.PointerID != g.flingID {
		return
	}
	g.flingX.Sample(e.Time, e.Position.X)
	g.flingY.Sample(e.Time, e.Position.Y)
}

// tappable reports whether a contact ending with e is a tap.
func (g *Engine) tappable(kind pointer.Kind, e *Event) bool {
	return !g.IsLongPressing() &&
		e.Touches == 1 &&
		g.maybeTap &&
		g.down != nil &&
		kind == pointer.Released &&
		math.Abs(float64(e.Motion.Total.X)) < float64(g.tapSlop) &&
		math.Abs(float64(e.Motion.Total.Y)) < float64(g.tapSlop)
}

// emit queues r for delivery. The engine must be locked.
func (g *Engine) emit(k pointer.Kind, e *Event, r Result) {
	g.queue = append(g.queue, emission{kind: k, event: e, result: r})
}

// dispatch delivers the queued results with the engine unlocked. One
// goroutine delivers at a time: results queued while another delivery
// runs, by a nested Process for instance, are left to that delivery.
func (g *Engine) dispatch() {
	for g.dispatching.CAS(false, true) {
		var errs error
		for {
			g.mu.Lock()
			if len(g.queue) == 0 {
				g.mu.Unlock()
				break
			}
			em := g.queue[0]
			g.queue = g.queue[1:]
			sub := g.subscribers(em.result)
			g.mu.Unlock()
			errs = multierr.Append(errs, g.deliver(em, sub))
		}
		g.dispatching.Store(false)
		if errs != nil {
			g.log.Errorw("gesture callback failed", "error", errs)
		}
		// A result queued between the last check and the release of
		// dispatching would otherwise wait for the next sample.
		g.mu.Lock()
		pending := len(g.queue) > 0
		g.mu.Unlock()
		if !pending {
			return
		}
	}
}

func (g *Engine) subscribers(r Result) subscribers {
	b, ok := g.commands[r]
	return subscribers{
		listener: g.listener,
		command:  b,
		bound:    ok,
		handlers: g.handlers[r],
		limiter:  g.limiter,
		tapKey:   g.tapKey,
		tapLock:  g.cfg.TapLock,
	}
}

// deliver hands em to the listener, the bound command and the
// callbacks, in that order. Failures are collected, not propagated.
func (g *Engine) deliver(em emission, sub subscribers) error {
	if em.down != nil && em.down.PreventDefault {
		return nil
	}
	k, e, r := em.kind, em.event, em.result
	var errs error
	if l := sub.listener; l != nil {
		if t, ok := l.(transparent); !ok || !t.InputTransparent() {
			errs = multierr.Append(errs, call(func() { l.GestureEvent(k, e, r) }))
		}
	}
	if r == Up || r == Down {
		g.lock.Store(int32(Initial))
	}
	if r == Tapped && sub.tapLocked() {
		g.log.Debugw("tap debounced", "key", sub.tapKey)
		return errs
	}
	if sub.bound {
		param := sub.command.param
		if param == nil {
			param = e
		}
		e.Context = sub.command.param
		errs = multierr.Append(errs, execute(sub.command.cmd, param))
	}
	for _, fn := range sub.handlers {
		fn := fn
		errs = multierr.Append(errs, call(func() { fn(e) }))
	}
	return errs
}

func (s subscribers) tapLocked() bool {
	if s.limiter == nil || s.tapLock <= 0 {
		return false
	}
	return s.limiter.CheckAndSet(s.tapKey, s.tapLock)
}

func (g *Engine) safeCall(fn func()) {
	if err := call(fn); err != nil {
		g.log.Errorw("gesture callback failed", "error", err)
	}
}

// call runs fn, turning a panic into an error.
func call(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gesture: callback panic: %v", r)
		}
	}()
	fn()
	return nil
}

func execute(cmd Command, param any) error {
	var cerr error
	if err := call(func() { cerr = cmd.Execute(param) }); err != nil {
		return err
	}
	if cerr != nil {
		return fmt.Errorf("gesture: command: %w", cerr)
	}
	return nil
}
