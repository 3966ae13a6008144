package database

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the zone queries depend on.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	zoneIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "createdBy", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "parentZoneId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	if _, err := db.Collection("zones").Indexes().CreateMany(ctx, zoneIndexes); err != nil {
		return err
	}

	logrus.Info("Database indexes ensured")
	return nil
}
