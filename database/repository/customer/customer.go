// File: database/repository/customer/customer.go
package customerRepo

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

// CustomerRepository resolves customer identities. Lookups return (nil, nil)
// when no record exists: a missing customer is never an error, the booking
// simply proceeds as a guest booking.
type CustomerRepository interface {
	GetByID(ctx context.Context, tenantID, customerID string) (*models.Customer, error)
	GetByPhone(ctx context.Context, tenantID, phone string) (*models.Customer, error)
}

type mongoCustomerRepo struct {
	coll *mongo.Collection
}

// NewMongoCustomerRepo constructs a new MongoDB CustomerRepository.
func NewMongoCustomerRepo() CustomerRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	return &mongoCustomerRepo{
		coll: db.Collection("customers"),
	}
}

func (r *mongoCustomerRepo) GetByID(ctx context.Context, tenantID, customerID string) (*models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": customerID, "tenantId": tenantID}
	var customer models.Customer
	err := r.coll.FindOne(ctx, filter).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find customer %s: %w", customerID, err)
	}
	return &customer, nil
}

func (r *mongoCustomerRepo) GetByPhone(ctx context.Context, tenantID, phone string) (*models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"phone": phone, "tenantId": tenantID}
	var customer models.Customer
	err := r.coll.FindOne(ctx, filter).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find customer by phone: %w", err)
	}
	return &customer, nil
}
