// File: database/repository/catalog/interface.go
package catalogRepo

import (
	"context"
	"errors"

	"phonedesk/database"
	"phonedesk/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrBusinessNotFound is returned when no business matches a lookup.
var ErrBusinessNotFound = errors.New("business not found")

// CatalogRepository is the read side of the dashboard-owned catalog.
type CatalogRepository interface {
	GetBusinessByID(ctx context.Context, businessID string) (*models.Business, error)
	GetBusinessByPhone(ctx context.Context, phone string) (*models.Business, error)
	ListEntries(ctx context.Context, businessID string) ([]models.CatalogEntry, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoCatalogRepo struct {
	businesses *mongo.Collection
	entries    *mongo.Collection
}

// NewMongoCatalogRepo constructs a new MongoDB CatalogRepository.
func NewMongoCatalogRepo() CatalogRepository {
	db := database.Database()
	return &mongoCatalogRepo{
		businesses: db.Collection("businesses"),
		entries:    db.Collection("catalog_entries"),
	}
}
