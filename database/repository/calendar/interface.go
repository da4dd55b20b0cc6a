package calendarRepo

import (
	"time"

	"verdebot/database"
	"verdebot/services/schedule"

	"go.mongodb.org/mongo-driver/mongo"
)

// eventDoc is the stored shape of one calendar event.
type eventDoc struct {
	ID          string    `bson:"id"`
	Summary     string    `bson:"summary"`
	Description string    `bson:"description"`
	Start       time.Time `bson:"start"`
	End         time.Time `bson:"end"`
	CreatedAt   time.Time `bson:"createdAt"`
}

type mongoCalendarRepo struct {
	coll *mongo.Collection
}

// NewMongoCalendarRepo returns a schedule.Calendar backed by MongoDB.
func NewMongoCalendarRepo() schedule.Calendar {
	db := database.MongoClient.Database("verdebot")
	return &mongoCalendarRepo{
		coll: db.Collection("calendar_events"),
	}
}
