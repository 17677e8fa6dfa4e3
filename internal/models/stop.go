package models

// Stop represents a single bus stop (waypoint) of a route.
type Stop struct {
	ID          int         `json:"id"`          // ID is unique within a route.
	Sequence    int         `json:"sequence"`    // Sequence is the position of the stop along the route path.
	Description string      `json:"description"` // Description is display text, opaque to the tracker.
	Coordinates Coordinates `json:"coordinates"` // Coordinates of the stop.
}
