package pace

import (
	"errors"
	"testing"
	"time"
)

func TestWindowNotFull(t *testing.T) {
	var w Window
	for i := 0; i < WindowSize-1; i++ {
		w.Add(time.Millisecond)
		if _, ok := w.Average(); ok {
			t.Fatalf("average reported after %d samples", i+1)
		}
	}
	if w.Len() != WindowSize-1 {
		t.Fatalf("Len=%d", w.Len())
	}
}

func TestWindowSlides(t *testing.T) {
	var w Window
	for i := 1; i <= WindowSize; i++ {
		w.Add(time.Duration(i) * time.Microsecond)
	}
	avg, ok := w.Average()
	if !ok {
		t.Fatal("expected average once full")
	}
	// (1+...+10)/10 = 5.5us
	if avg != 5500*time.Nanosecond {
		t.Fatalf("avg=%v, want 5.5us", avg)
	}

	// Evicts 1us, adds 21us: (2+...+10+21)/10 = 7.5us
	w.Add(21 * time.Microsecond)
	avg, _ = w.Average()
	if avg != 7500*time.Nanosecond {
		t.Fatalf("avg=%v, want 7.5us", avg)
	}
	if w.Len() != WindowSize {
		t.Fatalf("Len=%d, want %d", w.Len(), WindowSize)
	}
}

func TestWindowForgetsOldSamples(t *testing.T) {
	var w Window
	w.Add(time.Hour)
	for i := 0; i < WindowSize; i++ {
		w.Add(time.Millisecond)
	}
	avg, _ := w.Average()
	if avg != time.Millisecond {
		t.Fatalf("avg=%v, the hour-long sample should have been evicted", avg)
	}
}

func TestPacerReportsOnceFull(t *testing.T) {
	p := New(DefaultPeriod)
	var reports []time.Duration
	p.OnAverage = func(avg time.Duration) { reports = append(reports, avg) }

	for i := 0; i < WindowSize+2; i++ {
		p.Record(2 * time.Millisecond)
	}
	if len(reports) != 3 {
		t.Fatalf("reports=%d, want 3", len(reports))
	}
	for _, r := range reports {
		if r != 2*time.Millisecond {
			t.Fatalf("report=%v", r)
		}
	}
}

func TestPacerTime(t *testing.T) {
	p := New(0)
	want := errors.New("boom")
	if err := p.Time(func() error { return want }); err != want {
		t.Fatalf("err=%v", err)
	}
	if p.window.Len() != 1 {
		t.Fatal("failed frame was not recorded")
	}
}

func TestPacerWaitsFixedPeriod(t *testing.T) {
	p := New(DefaultPeriod)
	var slept []time.Duration
	p.sleep = func(d time.Duration) { slept = append(slept, d) }

	p.Record(time.Second)
	p.Wait()
	p.Record(time.Microsecond)
	p.Wait()

	if len(slept) != 2 || slept[0] != DefaultPeriod || slept[1] != DefaultPeriod {
		t.Fatalf("slept=%v, want two slices of %v", slept, DefaultPeriod)
	}
}

func TestPacerZeroPeriod(t *testing.T) {
	p := New(0)
	p.sleep = func(time.Duration) { t.Fatal("slept with zero period") }
	p.Wait()
}
