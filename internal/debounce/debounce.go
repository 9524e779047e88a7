// Package debounce confirms an anomaly only after a run of consecutive
// positive observations.
package debounce

// DefaultWindow is the number of consecutive detections needed to confirm.
const DefaultWindow = 3

// Debouncer is a bounded FIFO of boolean observations.
// It is not safe for concurrent use.
type Debouncer struct {
	window []bool
	size   int
}

func New(size int) *Debouncer {
	if size < 1 {
		size = 1
	}
	return &Debouncer{
		window: make([]bool, 0, size),
		size:   size,
	}
}

// Observe pushes a flag, evicting the oldest one when the window is full.
func (d *Debouncer) Observe(flag bool) {
	if len(d.window) == d.size {
		copy(d.window, d.window[1:])
		d.window = d.window[:d.size-1]
	}
	d.window = append(d.window, flag)
}

// Confirmed reports whether the window is full and every entry is true.
func (d *Debouncer) Confirmed() bool {
	if len(d.window) < d.size {
		return false
	}
	for _, v := range d.window {
		if !v {
			return false
		}
	}
	return true
}

// Reset empties the window.
func (d *Debouncer) Reset() {
	d.window = d.window[:0]
}

// Len returns the number of buffered observations.
func (d *Debouncer) Len() int {
	return len(d.window)
}

// Step observes flag and reports whether that completed a confirmed run.
// A confirmed run is cleared so the same detections cannot trigger twice.
func (d *Debouncer) Step(flag bool) bool {
	d.Observe(flag)
	if !d.Confirmed() {
		return false
	}
	d.Reset()
	return true
}
