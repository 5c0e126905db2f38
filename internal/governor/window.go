package governor

import "time"

// sampleWindow is a fixed-size ring of recent frame durations with a
// running sum, so the moving average is O(1) per tick and memory stays
// constant regardless of uptime.
type sampleWindow struct {
	buf  []time.Duration
	size int
	idx  int
	n    int
	sum  time.Duration
}

func newSampleWindow(size int) *sampleWindow {
	if size < 1 {
		size = 1
	}
	return &sampleWindow{buf: make([]time.Duration, size), size: size}
}

func (w *sampleWindow) add(d time.Duration) {
	if w.n == w.size {
		w.sum -= w.buf[w.idx]
	} else {
		w.n++
	}
	w.buf[w.idx] = d
	w.sum += d
	w.idx = (w.idx + 1) % w.size
}

func (w *sampleWindow) full() bool { return w.n == w.size }

func (w *sampleWindow) average() time.Duration {
	if w.n == 0 {
		return 0
	}
	return w.sum / time.Duration(w.n)
}

func (w *sampleWindow) reset() {
	w.idx, w.n, w.sum = 0, 0, 0
}
