// Package jump implements a two-phase hop: rise to a peak, then fall back,
// advanced once per frame instead of chained animation callbacks.
package jump

// Phase of a hop
type Phase uint8

const (
	Idle Phase = iota
	Rising
	Falling
)

func (p Phase) String() string {
	switch p {
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	default:
		return "idle"
	}
}

// Hop is a timed vertical offset. Rise and Fall are durations in seconds.
type Hop struct {
	Height float64
	Rise   float64
	Fall   float64

	phase   Phase
	elapsed float64
	offset  float64
}

// Start begins a hop. It reports false when a hop is already running.
func (h *Hop) Start() bool {
	if h.phase != Idle {
		return false
	}
	h.phase = Rising
	h.elapsed = 0
	return true
}

func (h *Hop) Phase() Phase {
	return h.phase
}

// Offset is the current height above the resting position
func (h *Hop) Offset() float64 {
	return h.offset
}

// Advance moves the hop forward by dt seconds and returns the new offset.
// Time left over at the end of the rise carries into the fall.
func (h *Hop) Advance(dt float64) float64 {
	if h.phase == Idle || dt <= 0 {
		return h.offset
	}
	h.elapsed += dt

	if h.phase == Rising {
		if h.elapsed < h.Rise {
			h.offset = h.Height * easeOutQuad(h.elapsed/h.Rise)
			return h.offset
		}
		h.elapsed -= h.Rise
		h.phase = Falling
	}

	if h.elapsed < h.Fall {
		h.offset = h.Height * (1 - easeInQuad(h.elapsed/h.Fall))
		return h.offset
	}

	h.phase = Idle
	h.elapsed = 0
	h.offset = 0
	return h.offset
}

func easeOutQuad(t float64) float64 {
	return t * (2 - t)
}

func easeInQuad(t float64) float64 {
	return t * t
}
