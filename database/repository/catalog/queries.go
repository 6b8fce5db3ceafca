package catalogRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phonedesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoCatalogRepo) findBusiness(ctx context.Context, filter bson.M) (*models.Business, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Business
	if err := r.businesses.FindOne(ctx, filter).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("error fetching business: %w", err)
	}
	return &b, nil
}

func (r *mongoCatalogRepo) GetBusinessByID(ctx context.Context, businessID string) (*models.Business, error) {
	return r.findBusiness(ctx, bson.M{"id": businessID})
}

func (r *mongoCatalogRepo) GetBusinessByPhone(ctx context.Context, phone string) (*models.Business, error) {
	return r.findBusiness(ctx, bson.M{"phone_number": phone})
}

// ListEntries returns every item, modifier and service of a business, sorted by name.
func (r *mongoCatalogRepo) ListEntries(ctx context.Context, businessID string) ([]models.CatalogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.entries.Find(ctx, bson.M{"business_id": businessID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing catalog for %s: %w", businessID, err)
	}
	defer cursor.Close(ctx)

	var entries []models.CatalogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
