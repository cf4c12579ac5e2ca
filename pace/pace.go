// Package pace measures render cost per frame and sleeps a fixed slice
// after every frame. Timing is reported only; it never changes scheduling.
package pace

import "time"

// WindowSize is the number of frame durations averaged.
const WindowSize = 10

// DefaultPeriod is the fixed end-of-frame sleep.
const DefaultPeriod = time.Second / 60

// Window is a fixed-size FIFO of the most recent frame durations.
// The zero value is empty and ready to use.
type Window struct {
	samples [WindowSize]time.Duration
	next    int
	n       int
	sum     time.Duration
}

// Add records d, evicting the oldest sample once the window is full.
func (w *Window) Add(d time.Duration) {
	if w.n == WindowSize {
		w.sum -= w.samples[w.next]
	} else {
		w.n++
	}
	w.samples[w.next] = d
	w.sum += d
	w.next = (w.next + 1) % WindowSize
}

// Full reports whether WindowSize samples have been recorded.
func (w *Window) Full() bool { return w.n == WindowSize }

// Len returns the number of samples held.
func (w *Window) Len() int { return w.n }

// Average returns the mean of the samples held; ok is false until the
// window is full.
func (w *Window) Average() (avg time.Duration, ok bool) {
	if !w.Full() {
		return 0, false
	}
	return w.sum / WindowSize, true
}

// Pacer times the render step and sleeps Period after each frame.
type Pacer struct {
	Period time.Duration

	// OnAverage receives the rolling mean each time a sample arrives
	// while the window is full.
	OnAverage func(avg time.Duration)

	window Window
	sleep  func(time.Duration)
}

func New(period time.Duration) *Pacer {
	return &Pacer{Period: period, sleep: time.Sleep}
}

// Record adds the duration of one render step.
func (p *Pacer) Record(d time.Duration) {
	p.window.Add(d)
	if avg, ok := p.window.Average(); ok && p.OnAverage != nil {
		p.OnAverage(avg)
	}
}

// Time runs fn and records how long it took, whether or not it failed.
func (p *Pacer) Time(fn func() error) error {
	start := time.Now()
	err := fn()
	p.Record(time.Since(start))
	return err
}

// Average returns the current rolling mean.
func (p *Pacer) Average() (time.Duration, bool) {
	return p.window.Average()
}

// Wait sleeps the fixed period, whatever the frame cost.
func (p *Pacer) Wait() {
	if p.Period <= 0 {
		return
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(p.Period)
}
