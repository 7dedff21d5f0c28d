package glloop

import (
	"context"
	"time"
)

// ManualTicker delivers a tick for every value sent to C. Closing C closes the ticker.
type ManualTicker struct {
	C chan struct{}
}

// NewManualTicker returns a ticker with a channel buffered to size.
func NewManualTicker(size int) *ManualTicker {
	return &ManualTicker{C: make(chan struct{}, size)}
}

// Tick queues a tick. It blocks if the buffer is full.
func (mt *ManualTicker) Tick() { mt.C <- struct{}{} }

// Next implements [Ticker].
func (mt *ManualTicker) Next(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case _, ok := <-mt.C:
		if !ok {
			return ErrClosed
		}
		return nil
	}
}

// CountTicker ticks N times and then reports [ErrClosed].
type CountTicker struct {
	N     int
	ticks int
}

// Next implements [Ticker].
func (ct *CountTicker) Next(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ct.ticks >= ct.N {
		return ErrClosed
	}
	ct.ticks++
	return nil
}

// IntervalTicker ticks at a fixed frequency. Used when no display refresh drives frames.
type IntervalTicker struct {
	ticker *time.Ticker
}

// NewIntervalTicker returns a ticker at targetHz. Non-positive values select 60Hz.
func NewIntervalTicker(targetHz float64) *IntervalTicker {
	if targetHz <= 0 {
		targetHz = 60
	}
	interval := time.Duration(float64(time.Second) / targetHz)
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &IntervalTicker{ticker: time.NewTicker(interval)}
}

// Next implements [Ticker].
func (it *IntervalTicker) Next(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-it.ticker.C:
		return nil
	}
}

// Stop releases the underlying timer.
func (it *IntervalTicker) Stop() { it.ticker.Stop() }
