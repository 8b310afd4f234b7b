// SPDX-License-Identifier: Unlicense OR MIT

package wsinput

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gioui.org/touch/f32"
	"gioui.org/touch/gesture"
	"gioui.org/touch/io/pointer"
	"gioui.org/touch/platform"
)

// WheelID is the pointer ID of wheel samples.
const WheelID pointer.ID = -1

// conn is the adapter of one websocket client.
type conn struct {
	log     *zap.SugaredLogger
	ws      *websocket.Conn
	element string
	record  func(element string, s pointer.Sample)

	eng     *gesture.Engine
	sharing *platform.Sharing
	proc    platform.Processor

	sendMu sync.Mutex

	// Read loop state.
	contacts platform.Contacts
	wheel    platform.WheelScale
	size     f32.Point
	sized    bool
	now      func() time.Time
	start    time.Time
	last     time.Duration
}

var _ platform.Adapter = (*conn)(nil)
var _ platform.Host = (*conn)(nil)

func newConn(log *zap.SugaredLogger, ws *websocket.Conn, element string, cfg gesture.Config, record func(string, pointer.Sample)) *conn {
	c := &conn{
		log:     log,
		ws:      ws,
		element: element,
		record:  record,
		now:     time.Now,
	}
	c.start = c.now()
	c.eng = gesture.New(log, cfg)
	c.eng.SetListener(gesture.ListenerFunc(c.report))
	c.sharing = platform.NewSharing(log, c.eng, c)
	c.Attach(c.sharing)
	return c
}

func (c *conn) Attach(p platform.Processor) {
	c.proc = p
}

func (c *conn) Detach() {
	c.proc = nil
	c.contacts.Clear()
}

func (c *conn) Capture() {
	c.sendLogged(OutMsg{Type: TypeCapture})
}

func (c *conn) Release() {
	c.sendLogged(OutMsg{Type: TypeRelease})
}

func (c *conn) serve() {
	defer func() {
		c.Detach()
		c.eng.Dispose()
		c.ws.Close()
	}()
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warnw("read failed", "error", err)
			}
			return
		}
		var msg InMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			c.fail(fmt.Errorf("decode message: %w", err))
			continue
		}
		if err := c.handle(msg); err != nil {
			c.fail(err)
		}
	}
}

func (c *conn) handle(msg InMsg) error {
	switch msg.Type {
	case TypeTouch:
		if msg.TouchEvent == nil {
			return fmt.Errorf("%s without touchEvent", msg.Type)
		}
		if s, ok := c.touch(*msg.TouchEvent); ok {
			c.deliver(s)
		}
	case TypeWheel:
		if msg.WheelEvent == nil {
			return fmt.Errorf("%s without wheelEvent", msg.Type)
		}
		c.deliver(c.wheelSample(*msg.WheelEvent))
	case TypeSize:
		if msg.Size == nil {
			return fmt.Errorf("%s without size", msg.Type)
		}
		c.size = f32.Pt(msg.Size.Width, msg.Size.Height)
		c.sized = true
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (c *conn) touch(te TouchEvent) (pointer.Sample, bool) {
	id := pointer.ID(te.ID)
	s := c.sample(id, f32.Pt(float32(te.X), float32(te.Y)), te.Time)
	s.Source = pointer.Touch
	switch {
	case te.Pressure > 0 && !c.contacts.Has(id):
		s.Kind = pointer.Pressed
		s.Touches = c.contacts.Down(id)
	case te.Pressure > 0:
		s.Kind = pointer.Moved
		s.Touches = c.contacts.Len()
	case c.contacts.Has(id):
		s.Kind = pointer.Released
		s.Touches = c.contacts.Up(id)
	default:
		return s, false
	}
	return s, true
}

func (c *conn) wheelSample(we WheelEvent) pointer.Sample {
	s := c.sample(WheelID, f32.Pt(we.X, we.Y), we.Time)
	s.Kind = pointer.Wheel
	s.Source = pointer.Mouse
	s.Touches = c.contacts.Len()
	s.Wheel = c.wheel.Wheel(we.Delta, s.Position)
	return s
}

func (c *conn) sample(id pointer.ID, p f32.Point, ms int64) pointer.Sample {
	t := c.now().Sub(c.start)
	if ms > 0 {
		t = time.Duration(ms) * time.Millisecond
	}
	if t < c.last {
		t = c.last
	}
	c.last = t
	return pointer.Sample{
		PointerID: id,
		Position:  p,
		Inside:    !c.sized || platform.Inside(p, c.size),
		Time:      t,
	}
}

func (c *conn) deliver(s pointer.Sample) {
	if c.record != nil {
		c.record(c.element, s)
	}
	if c.proc != nil {
		platform.Feed(c.log, c.proc, s)
	}
}

func (c *conn) report(k pointer.Kind, e *gesture.Event, r gesture.Result) {
	c.sendLogged(OutMsg{Type: TypeGesture, Gesture: gestureMsg(k, e, r)})
}

func (c *conn) fail(err error) {
	c.log.Debugw("bad message", "error", err)
	line := err.Error()
	c.sendLogged(OutMsg{Type: TypeError, Line: &line})
}

func (c *conn) send(msg OutMsg) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.ws.WriteJSON(msg)
}

func (c *conn) sendLogged(msg OutMsg) {
	if err := c.send(msg); err != nil {
		c.log.Debugw("send failed", "type", msg.Type, "error", err)
	}
}

func (c *conn) close() {
	c.sendMu.Lock()
	err := c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"),
		time.Now().Add(time.Second))
	c.sendMu.Unlock()
	if err != nil {
		c.ws.Close()
	}
}
