package calendarRepo

import (
	"context"
	"time"

	"verdebot/models"
	"verdebot/services/schedule"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FreeBusy returns busy intervals overlapping [from, to), sorted by
// start time.
func (r *mongoCalendarRepo) FreeBusy(ctx context.Context, from, to time.Time) ([]models.BusyInterval, error) {
	filter := bson.M{
		"start": bson.M{"$lt": to},
		"end":   bson.M{"$gt": from},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []eventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	busy := make([]models.BusyInterval, 0, len(docs))
	for _, d := range docs {
		busy = append(busy, models.BusyInterval{Start: d.Start, End: d.End})
	}
	return busy, nil
}

// CreateEvent re-checks the range for conflicts before inserting, so a
// slot confirmed after someone else booked it is rejected with
// schedule.ErrSlotTaken instead of silently double-booked.
func (r *mongoCalendarRepo) CreateEvent(ctx context.Context, ev models.CalendarEvent) (string, error) {
	conflict := bson.M{
		"start": bson.M{"$lt": ev.End},
		"end":   bson.M{"$gt": ev.Start},
	}
	count, err := r.coll.CountDocuments(ctx, conflict)
	if err != nil {
		return "", err
	}
	if count > 0 {
		return "", schedule.ErrSlotTaken
	}

	doc := eventDoc{
		ID:          uuid.New().String(),
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       ev.Start,
		End:         ev.End,
		CreatedAt:   time.Now(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}
