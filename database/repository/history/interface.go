package historyRepo

import (
	"context"

	"verdebot/database"
	"verdebot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingHistoryRepository is the append-only sink for confirmed
// bookings, plus read access for the history endpoint.
type BookingHistoryRepository interface {
	Append(ctx context.Context, record models.BookingRecord) (string, error)
	ListByUser(ctx context.Context, userID string) ([]models.BookingRecord, error)
}

type mongoHistoryRepo struct {
	coll *mongo.Collection
}

// NewMongoHistoryRepo returns a BookingHistoryRepository backed by MongoDB.
func NewMongoHistoryRepo() BookingHistoryRepository {
	db := database.MongoClient.Database("verdebot")
	return &mongoHistoryRepo{
		coll: db.Collection("booking_records"),
	}
}
