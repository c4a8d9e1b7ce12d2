// Package reports is the Mongo-backed scan history: append-only report
// writes plus the per-user aggregations the dashboard renders.
package reports

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/granth1406/HawkEye/models"
)

type Store struct {
	coll *mongo.Collection
}

func NewStore(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// Save inserts a terminal scan report. Reports are immutable: there is no
// update or delete path.
func (s *Store) Save(ctx context.Context, report *models.ScanReport) error {
	_, err := s.coll.InsertOne(ctx, report)
	return err
}

// ListByUser returns a user's reports, newest first, optionally filtered
// by scan type. limit <= 0 means no limit.
func (s *Store) ListByUser(ctx context.Context, userID, scanType string, limit int64) ([]models.ScanReport, error) {
	filter := bson.M{"userId": userID}
	if scanType != "" {
		filter["type"] = scanType
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ScanReport
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AllByUser returns every report for a user in insertion order, for the
// stats computation.
func (s *Store) AllByUser(ctx context.Context, userID string) ([]models.ScanReport, error) {
	cur, err := s.coll.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ScanReport
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
