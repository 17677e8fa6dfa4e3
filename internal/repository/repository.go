package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/trackbus/internal/models"
)

// Repository reads route data from PostgreSQL.
type Repository struct {
	db  Database
	log *slog.Logger
}

// Interface is the read side used to build a route.
type Interface interface {
	FetchRouteStops(ctx context.Context, routeID string) ([]models.Stop, error)
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
