// Package progress renders sort and generation progress for people.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gosuri/uilive"
	"go.uber.org/zap"
)

// Console prints progress to a terminal. Overwritten messages are redrawn in
// place with uilive.
type Console struct {
	mu   sync.Mutex
	out  io.Writer
	live *uilive.Writer
}

// NewConsole returns a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Line prints msg on its own line below anything printed before.
func (c *Console) Line(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// whatever was overwritten so far stays on screen
	c.live = nil
	fmt.Fprintln(c.out, msg)
}

// Mark starts a new region that the following Overwrite calls redraw.
func (c *Console) Mark() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mark()
}

func (c *Console) mark() {
	c.live = uilive.New()
	c.live.Out = c.out
}

// Overwrite replaces the region started by the last Mark with msg.
func (c *Console) Overwrite(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live == nil {
		c.mark()
	}
	fmt.Fprintln(c.live, msg)
	// Ignore any errors.
	_ = c.live.Flush()
}

// Zap logs progress messages at info level, for runs without a terminal.
type Zap struct {
	log *zap.Logger
}

// NewZap returns a Zap logging to log.
func NewZap(log *zap.Logger) *Zap {
	return &Zap{log: log.Named("progress")}
}

func (z *Zap) Line(msg string) {
	z.log.Info(msg)
}

// Mark does nothing, log lines are never overwritten.
func (z *Zap) Mark() {}

func (z *Zap) Overwrite(msg string) {
	z.log.Info(msg)
}

const (
	barWidth  = 24
	barFilled = "#"
	barEmpty  = "-"
)

// Bar draws a percentage bar like "[######------------------] 25%".
type Bar struct {
	mu      sync.Mutex
	live    *uilive.Writer
	percent int
}

// NewBar returns a Bar drawn on out. Nothing is drawn before the first Observe.
func NewBar(out io.Writer) *Bar {
	live := uilive.New()
	live.Out = out
	return &Bar{live: live, percent: -1}
}

// Observe redraws the bar for fraction, which is clamped to [0, 1].
func (b *Bar) Observe(fraction float64) {
	percent := int(fraction * 100)
	percent = max(0, min(100, percent))

	b.mu.Lock()
	defer b.mu.Unlock()
	if percent == b.percent {
		return
	}
	b.percent = percent
	filled := barWidth * percent / 100
	fmt.Fprintf(b.live, "[%s%s] %d%%\n", strings.Repeat(barFilled, filled), strings.Repeat(barEmpty, barWidth-filled), percent)
	_ = b.live.Flush()
}

// Finish draws the complete bar.
func (b *Bar) Finish() {
	b.Observe(1)
}
