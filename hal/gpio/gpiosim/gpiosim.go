// Package gpiosim is a host-side GPIO bank for tests.
//
// Every line has an external pull-up (I2C and LCD boards both carry them),
// so an open-drain output reads back high unless it drives low or some
// simulated device holds the line low. Writes are recorded in order.
package gpiosim

import (
	"sync"

	"i2cstack-go/hal/gpio"
)

// Write is one recorded Bank.Write call.
type Write struct {
	Line  gpio.Line
	Level gpio.Level
}

type line struct {
	cfg     gpio.Config
	latch   gpio.Level
	held    bool // an external device pulls the line low
	lag     int  // reads that still return the previous level after a write
	lastLvl gpio.Level
}

// Bank implements gpio.Controller.
type Bank struct {
	mu     sync.Mutex
	lines  map[gpio.Line]*line
	writes []Write
	reads  int
}

var _ gpio.Controller = (*Bank)(nil)

func New() *Bank {
	return &Bank{lines: map[gpio.Line]*line{}}
}

func (b *Bank) get(l gpio.Line) *line {
	ln, ok := b.lines[l]
	if !ok {
		ln = &line{latch: gpio.High, lastLvl: gpio.High}
		b.lines[l] = ln
	}
	return ln
}

func (b *Bank) Configure(l gpio.Line, cfg gpio.Config) {
	b.mu.Lock()
	b.get(l).cfg = cfg
	b.mu.Unlock()
}

func (b *Bank) Write(l gpio.Line, lv gpio.Level) {
	b.mu.Lock()
	ln := b.get(l)
	ln.lastLvl = ln.level()
	ln.latch = lv
	b.writes = append(b.writes, Write{Line: l, Level: lv})
	b.mu.Unlock()
}

func (b *Bank) Read(l gpio.Line) gpio.Level {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	ln := b.get(l)
	if ln.lag > 0 {
		ln.lag--
		return ln.lastLvl
	}
	return ln.level()
}

// level resolves the wire: pull-up, wired-AND with any holder.
func (ln *line) level() gpio.Level {
	if ln.held {
		return gpio.Low
	}
	// Open-drain high releases to the pull-up, which reads the same as a
	// push-pull high. Inputs and alternate function idle high.
	if ln.cfg.Mode == gpio.ModeOutput {
		return ln.latch
	}
	return gpio.High
}

// Hold makes an external device pull l low (true) or release it (false).
func (b *Bank) Hold(l gpio.Line, low bool) {
	b.mu.Lock()
	b.get(l).held = low
	b.mu.Unlock()
}

// Lag makes the next n reads of l return the level from before the most
// recent write, emulating a slow rise time.
func (b *Bank) Lag(l gpio.Line, n int) {
	b.mu.Lock()
	b.get(l).lag = n
	b.mu.Unlock()
}

// Config returns the last configuration applied to l.
func (b *Bank) Config(l gpio.Line) gpio.Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.get(l).cfg
}

// Latch returns the output latch of l.
func (b *Bank) Latch(l gpio.Line) gpio.Level {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.get(l).latch
}

// Writes returns a copy of the recorded writes.
func (b *Bank) Writes() []Write {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Write(nil), b.writes...)
}

// Reads returns how many times Read was called.
func (b *Bank) Reads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads
}

// Reset forgets recorded writes and reads.
func (b *Bank) Reset() {
	b.mu.Lock()
	b.writes = nil
	b.reads = 0
	b.mu.Unlock()
}
