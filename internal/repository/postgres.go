package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/trackbus/internal/models"
)

// FetchRouteStops retrieves every stop of the given route ordered by path sequence.
//
// Parameters:
// - ctx: The context for the operation, allowing for cancellation and timeout.
// - routeID: The identifier of the route (bus line) to load.
//
// Returns:
// - A slice of models.Stop; empty when the route is unknown.
// - An error if the query fails or if there is an issue scanning the results.
func (r *Repository) FetchRouteStops(ctx context.Context, routeID string) ([]models.Stop, error) {
	var stops []models.Stop
	query := `
		SELECT stop_id, sequence, description, latitude, longitude
		FROM public.route_stops
		WHERE route_id = $1
		ORDER BY sequence ASC;
	`

	rows, err := r.db.Query(ctx, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query route stops: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stop models.Stop
		if errScan := rows.Scan(
			&stop.ID,
			&stop.Sequence,
			&stop.Description,
			&stop.Coordinates.Latitude,
			&stop.Coordinates.Longitude,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan route stop: %w", errScan)
		}
		stops = append(stops, stop)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.DebugContext(ctx, "Route stops loaded", "route", routeID, "stops", len(stops))

	return stops, nil
}
