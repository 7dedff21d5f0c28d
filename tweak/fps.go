package tweak

import "time"

const fpsSamples = 64

// FPSGraph keeps a ring of recent frame measurements. Begin marks the start of
// a frame and End its completion.
type FPSGraph struct {
	// Now returns the current time. Defaults to [time.Now].
	Now       func() time.Time
	intervals [fpsSamples]time.Duration
	busy      [fpsSamples]time.Duration
	n         int
	idx       int
	lastBegin time.Time
	begin     time.Time
}

func (g *FPSGraph) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Begin marks the start of a frame.
func (g *FPSGraph) Begin() {
	now := g.now()
	if !g.lastBegin.IsZero() {
		g.intervals[g.idx] = now.Sub(g.lastBegin)
	}
	g.lastBegin = now
	g.begin = now
}

// End marks the end of a frame started with Begin.
func (g *FPSGraph) End() {
	if g.begin.IsZero() {
		return
	}
	g.busy[g.idx] = g.now().Sub(g.begin)
	g.begin = time.Time{}
	if g.intervals[g.idx] > 0 {
		g.idx = (g.idx + 1) % fpsSamples
		g.n = min(g.n+1, fpsSamples)
	}
}

// FPS returns the average frame rate over the recorded frames.
func (g *FPSGraph) FPS() float32 {
	var sum time.Duration
	for i := 0; i < g.n; i++ {
		sum += g.intervals[i]
	}
	if sum <= 0 {
		return 0
	}
	return float32(g.n) / float32(sum.Seconds())
}

// FrameTime returns the average duration between Begin and End.
func (g *FPSGraph) FrameTime() time.Duration {
	if g.n == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < g.n; i++ {
		sum += g.busy[i]
	}
	return sum / time.Duration(g.n)
}

// AppendIntervals appends the recorded frame intervals, oldest first.
func (g *FPSGraph) AppendIntervals(dst []time.Duration) []time.Duration {
	start := g.idx - g.n
	for i := 0; i < g.n; i++ {
		dst = append(dst, g.intervals[(start+i+fpsSamples)%fpsSamples])
	}
	return dst
}
