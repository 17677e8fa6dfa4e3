// Package route holds the ordered, immutable sequence of stops a rider travels along.
package route

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/UnknownOlympus/trackbus/internal/geometry"
	"github.com/UnknownOlympus/trackbus/internal/models"
)

// Common errors for routes.
var (
	ErrInvalidRoute    = errors.New("invalid route")
	ErrEmptyRoute      = errors.New("route has no stops")
	ErrIndexOutOfRange = errors.New("stop index out of range")
)

// Ordering compares two stops and defines travel order. It follows the
// slices.SortStableFunc convention.
type Ordering func(a, b models.Stop) int

// BySequence orders stops by their path sequence number.
func BySequence(a, b models.Stop) int {
	return cmp.Compare(a.Sequence, b.Sequence)
}

// Route is an ordered sequence of stops. Its order never changes after Build.
type Route struct {
	stops []models.Stop
	index map[int]int // stop ID -> position
}

// Build stable-sorts a copy of stops with order (BySequence when nil) and
// returns the resulting route. Empty input and duplicate stop IDs are rejected
// with ErrInvalidRoute.
func Build(stops []models.Stop, order Ordering) (*Route, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("%w: no stops given", ErrInvalidRoute)
	}
	if order == nil {
		order = BySequence
	}

	sorted := slices.Clone(stops)
	slices.SortStableFunc(sorted, order)

	index := make(map[int]int, len(sorted))
	for i, stop := range sorted {
		if _, dup := index[stop.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate stop id %d", ErrInvalidRoute, stop.ID)
		}
		index[stop.ID] = i
	}

	return &Route{stops: sorted, index: index}, nil
}

// Len returns the number of stops.
func (r *Route) Len() int {
	return len(r.stops)
}

// Stops returns a copy of the stops in travel order.
func (r *Route) Stops() []models.Stop {
	return slices.Clone(r.stops)
}

// StopAt returns the stop at position i.
func (r *Route) StopAt(i int) (models.Stop, error) {
	if i < 0 || i >= len(r.stops) {
		return models.Stop{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(r.stops))
	}
	return r.stops[i], nil
}

// IndexOf returns the position of the stop with the given ID.
func (r *Route) IndexOf(id int) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// ClosestStopTo scans every stop and returns the one nearest to c along with
// its index. Ties go to the lowest index.
func (r *Route) ClosestStopTo(c models.Coordinates, distance geometry.DistanceFunc) (models.Stop, int, error) {
	if len(r.stops) == 0 {
		return models.Stop{}, -1, ErrEmptyRoute
	}

	best, bestDist := 0, math.Inf(1)
	for i, stop := range r.stops {
		if d := distance(c, stop.Coordinates); d < bestDist {
			best, bestDist = i, d
		}
	}

	return r.stops[best], best, nil
}
