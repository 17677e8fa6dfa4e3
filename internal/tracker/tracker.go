// Package tracker implements the rider's progression along a route.
//
// The tracker only ever compares the rider's position with the stop directly
// after the current one and moves forward by a single stop per check. It never
// re-evaluates the nearest stop after seeding, so a noisy fix near a stop
// boundary cannot make it jump or regress.
package tracker

import (
	"sync"

	"github.com/UnknownOlympus/trackbus/internal/geometry"
	"github.com/UnknownOlympus/trackbus/internal/models"
	"github.com/UnknownOlympus/trackbus/internal/route"
)

// State is the progression state of a tracker.
type State int

const (
	// Unseeded means no position has been observed yet.
	Unseeded State = iota
	// Tracking means there is a next stop to approach.
	Tracking
	// Terminal means the last stop has been reached.
	Terminal
)

func (s State) String() string {
	switch s {
	case Unseeded:
		return "unseeded"
	case Tracking:
		return "tracking"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// StopReached describes an advance of the tracker.
type StopReached struct {
	Stop     models.Stop `json:"stop"`
	Index    int         `json:"index"`
	Distance float64     `json:"distance"`
}

// ProximityTracker is the rider progression state machine.
type ProximityTracker struct {
	route     *route.Route
	threshold float64

	mu          sync.RWMutex
	seeded      bool
	current     int
	position    models.Coordinates
	hasPosition bool
}

// New creates an unseeded tracker over r. A stop counts as reached once the
// rider is within threshold of it.
func New(r *route.Route, threshold float64) *ProximityTracker {
	return &ProximityTracker{route: r, threshold: threshold}
}

// Seed sets the current stop to the one closest to c. Only the first call has
// an effect; it reports whether seeding happened.
func (t *ProximityTracker) Seed(c models.Coordinates, distance geometry.DistanceFunc) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.seeded {
		return false, nil
	}

	_, idx, err := t.route.ClosestStopTo(c, distance)
	if err != nil {
		return false, err
	}

	t.current = idx
	t.seeded = true

	return true, nil
}

// Observe records the rider's last-known position.
func (t *ProximityTracker) Observe(c models.Coordinates) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.position = c
	t.hasPosition = true
}

// CheckProximity compares the last-known position with the next stop. When it
// is within the threshold the tracker advances by one stop and returns it.
// It does nothing while unseeded, terminal, or without a position.
func (t *ProximityTracker) CheckProximity(distance geometry.DistanceFunc) (*StopReached, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, ok := t.nextLocked()
	if !ok || !t.hasPosition {
		return nil, false
	}

	d := distance(t.position, next.Coordinates)
	if d > t.threshold {
		return nil, false
	}

	t.current++

	return &StopReached{Stop: next, Index: t.current, Distance: d}, true
}

// DistanceToNext returns the distance between the last-known position and the next stop.
func (t *ProximityTracker) DistanceToNext(distance geometry.DistanceFunc) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	next, ok := t.nextLocked()
	if !ok || !t.hasPosition {
		return 0, false
	}

	return distance(t.position, next.Coordinates), true
}

// CurrentStop returns the stop last reached, unset while unseeded.
func (t *ProximityTracker) CurrentStop() (models.Stop, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.seeded {
		return models.Stop{}, false
	}

	stop, err := t.route.StopAt(t.current)
	return stop, err == nil
}

// NextStop returns the stop being approached, unset while unseeded or terminal.
func (t *ProximityTracker) NextStop() (models.Stop, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.nextLocked()
}

// CurrentIndex returns the index of the current stop, or -1 while unseeded.
func (t *ProximityTracker) CurrentIndex() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.seeded {
		return -1
	}
	return t.current
}

// State returns the progression state.
func (t *ProximityTracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch {
	case !t.seeded:
		return Unseeded
	case t.current >= t.route.Len()-1:
		return Terminal
	default:
		return Tracking
	}
}

func (t *ProximityTracker) nextLocked() (models.Stop, bool) {
	if !t.seeded {
		return models.Stop{}, false
	}

	stop, err := t.route.StopAt(t.current + 1)
	return stop, err == nil
}
