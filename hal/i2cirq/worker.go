// Package i2cirq carries interrupt-driven transfer completions out of ISR
// context. The i2cm callback does a non-blocking channel send and nothing
// else; a worker goroutine stamps the outcome and hands it to the foreground.
package i2cirq

import (
	"context"
	"sync/atomic"
	"time"

	"i2cstack-go/hal/i2cm"
)

// Completion is a finished transfer as seen by the foreground. Seq is the
// handle's transfer number (i2cm.Handle.Seq) for the transfer that ended.
type Completion struct {
	Bus   string
	Event i2cm.Event
	Err   error
	Seq   uint32
	TS    time.Time

	h *i2cm.Handle
}

type isrEvent struct {
	h   *i2cm.Handle
	ev  i2cm.Event
	seq uint32
}

type Worker struct {
	// Written by ISR; MUST NOT block the ISR:
	isrQ    chan isrEvent
	outQ    chan Completion
	stopped chan struct{}

	cb i2cm.Callback

	drops atomic.Uint32 // ISR-side drops
	lost  atomic.Uint32 // consumer too slow
	stale atomic.Uint32 // completions nobody was waiting for
}

func New(isrBuf, outBuf int) *Worker {
	if isrBuf <= 0 {
		isrBuf = 4
	}
	if outBuf <= 0 {
		outBuf = 4
	}
	w := &Worker{
		isrQ:    make(chan isrEvent, isrBuf),
		outQ:    make(chan Completion, outBuf),
		stopped: make(chan struct{}),
	}
	w.cb = w.complete
	return w
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.stopped)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-w.isrQ:
				c := Completion{
					Bus:   ev.h.String(),
					Event: ev.ev,
					Err:   ev.ev.Err(),
					Seq:   ev.seq,
					TS:    time.Now(),
					h:     ev.h,
				}
				select {
				case w.outQ <- c:
				default:
					w.lost.Add(1)
				}
			}
		}
	}()
}

// Callback returns the ISR-side hook to pass to StartSend/StartReceive.
func (w *Worker) Callback() i2cm.Callback { return w.cb }

func (w *Worker) complete(h *i2cm.Handle, ev i2cm.Event) {
	select {
	case w.isrQ <- isrEvent{h: h, ev: ev, seq: h.Seq()}:
	default:
		w.drops.Add(1)
	}
}

func (w *Worker) Events() <-chan Completion { return w.outQ }
func (w *Worker) Stopped() <-chan struct{}  { return w.stopped }

// Drops counts completions discarded in ISR context or by a slow consumer.
func (w *Worker) Drops() uint32 { return w.drops.Load() + w.lost.Load() }

// Stale counts completions Send and Receive discarded because they belonged
// to another transfer, typically one whose caller gave up on its context.
func (w *Worker) Stale() uint32 { return w.stale.Load() }

// Await returns the next completion.
func (w *Worker) Await(ctx context.Context) (Completion, error) {
	select {
	case c := <-w.outQ:
		return c, nil
	case <-ctx.Done():
		return Completion{}, ctx.Err()
	}
}

// awaitTransfer waits for the completion of transfer seq on h.
func (w *Worker) awaitTransfer(ctx context.Context, h *i2cm.Handle, seq uint32) error {
	for {
		c, err := w.Await(ctx)
		if err != nil {
			return err
		}
		if c.h == h && c.Seq == seq {
			return c.Err
		}
		w.stale.Add(1)
	}
}

// Send starts an interrupt-driven write and waits for it to finish. If ctx
// ends first the transfer keeps running; the handle stays busy until it does.
func (w *Worker) Send(ctx context.Context, h *i2cm.Handle, buf []byte, addr uint8, holdBus bool) error {
	if err := h.StartSend(buf, addr, holdBus, w.Callback()); err != nil {
		return err
	}
	return w.awaitTransfer(ctx, h, h.Seq())
}

// Receive starts an interrupt-driven read and waits for it to finish.
func (w *Worker) Receive(ctx context.Context, h *i2cm.Handle, buf []byte, addr uint8, holdBus bool) error {
	if err := h.StartReceive(buf, addr, holdBus, w.Callback()); err != nil {
		return err
	}
	return w.awaitTransfer(ctx, h, h.Seq())
}
