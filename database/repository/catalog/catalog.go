// File: database/repository/catalog/catalog.go
package catalogRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"slotify/database"
	"slotify/models"
)

// CatalogRepository reads the service catalog. The booking core only needs
// unit price and tenant ownership; catalog management lives elsewhere.
type CatalogRepository interface {
	GetServiceByID(ctx context.Context, serviceID string) (*models.Service, error)
}

type mongoCatalogRepo struct {
	coll *mongo.Collection
}

// NewMongoCatalogRepo constructs a new MongoDB CatalogRepository.
func NewMongoCatalogRepo() CatalogRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	return &mongoCatalogRepo{
		coll: db.Collection("services"),
	}
}

func (r *mongoCatalogRepo) GetServiceByID(ctx context.Context, serviceID string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.Service
	err := r.coll.FindOne(ctx, bson.M{"id": serviceID}).Decode(&svc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find service %s: %w", serviceID, err)
	}
	return &svc, nil
}
