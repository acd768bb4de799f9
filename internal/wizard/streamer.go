package wizard

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// coalescer consolidates high-frequency text deltas into paced emissions of
// the accumulated total: at most one emit per interval, plus a final flush on
// close. The producer never blocks; the capacity-1 notify channel absorbs
// bursts between emitter wakeups.
type coalescer struct {
	interval time.Duration
	emit     func(total string)

	mu    sync.Mutex
	buf   strings.Builder
	dirty bool

	notify  chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

func newCoalescer(interval time.Duration, emit func(total string)) *coalescer {
	c := &coalescer{
		interval: interval,
		emit:     emit,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go c.run()
	return c
}

// add appends a delta and wakes the emitter if it is idle.
func (c *coalescer) add(text string) {
	if text == "" {
		return
	}
	c.mu.Lock()
	c.buf.WriteString(text)
	c.dirty = true
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// total returns the full accumulated text.
func (c *coalescer) total() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// close stops the emitter after one final flush of any unemitted text.
func (c *coalescer) close() {
	close(c.done)
	<-c.stopped
}

func (c *coalescer) run() {
	defer close(c.stopped)
	for {
		select {
		case <-c.done:
			c.flush()
			return
		case <-c.notify:
			c.flush()
			select {
			case <-c.done:
				c.flush()
				return
			case <-time.After(c.interval):
			}
		}
	}
}

func (c *coalescer) flush() {
	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return
	}
	c.dirty = false
	total := c.buf.String()
	c.mu.Unlock()
	c.emit(total)
}

// utf8Splitter decodes a byte stream into text fragments without ever
// splitting a multi-byte rune across fragments: trailing bytes of an
// incomplete rune are held back until the next feed completes them.
type utf8Splitter struct {
	pending []byte
}

// feed appends raw bytes and returns the longest prefix that ends on a rune
// boundary.
func (d *utf8Splitter) feed(p []byte) string {
	d.pending = append(d.pending, p...)
	n := len(d.pending)

	cut := n
	for i := n - 1; i >= 0 && i >= n-utf8.UTFMax; i-- {
		b := d.pending[i]
		if b < utf8.RuneSelf {
			break
		}
		if b >= 0xC0 {
			if !utf8.FullRune(d.pending[i:]) {
				cut = i
			}
			break
		}
	}

	out := string(d.pending[:cut])
	d.pending = append(d.pending[:0], d.pending[cut:]...)
	return out
}

// flush returns whatever bytes remain, including any unterminated rune at
// end of stream.
func (d *utf8Splitter) flush() string {
	out := string(d.pending)
	d.pending = nil
	return out
}
