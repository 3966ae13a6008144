package repositories

import (
	"context"

	"zonetrack/models"
	"zonetrack/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoZoneRepository stores zone records and ACLs in MongoDB. Insertion
// order is preserved by sorting List on createdAt, which the engine relies
// on for event ordering.
type MongoZoneRepository struct {
	collection       *mongo.Collection
	accessCollection *mongo.Collection
}

type zoneAccessDocument struct {
	ZoneID  string                   `bson:"_id"`
	Entries []models.ZoneAccessEntry `bson:"entries"`
}

func NewMongoZoneRepository(db *mongo.Database) *MongoZoneRepository {
	return &MongoZoneRepository{
		collection:       db.Collection("zones"),
		accessCollection: db.Collection("zone_access"),
	}
}

func (r *MongoZoneRepository) Insert(ctx context.Context, zone *models.Zone) error {
	_, err := r.collection.InsertOne(ctx, zone)
	if err != nil {
		return utils.NewDatabaseError("insert zone", err)
	}
	return nil
}

func (r *MongoZoneRepository) Get(ctx context.Context, zoneID string) (*models.Zone, error) {
	var zone models.Zone
	err := r.collection.FindOne(ctx, bson.M{"_id": zoneID}).Decode(&zone)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, utils.NewDatabaseError("get zone", err)
	}
	return &zone, nil
}

func (r *MongoZoneRepository) Update(ctx context.Context, zone *models.Zone) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": zone.ID}, zone)
	if err != nil {
		return utils.NewDatabaseError("update zone", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewZoneNotFoundError(zone.ID)
	}
	return nil
}

func (r *MongoZoneRepository) Delete(ctx context.Context, zoneID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": zoneID})
	if err != nil {
		return utils.NewDatabaseError("delete zone", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewZoneNotFoundError(zoneID)
	}
	return nil
}

func (r *MongoZoneRepository) List(ctx context.Context) ([]*models.Zone, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, utils.NewDatabaseError("list zones", err)
	}
	defer cursor.Close(ctx)

	var zones []*models.Zone
	if err := cursor.All(ctx, &zones); err != nil {
		return nil, utils.NewDatabaseError("decode zones", err)
	}
	return zones, nil
}

func (r *MongoZoneRepository) CountByCreator(ctx context.Context, userID string) (int, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"createdBy": userID})
	if err != nil {
		return 0, utils.NewDatabaseError("count zones", err)
	}
	return int(count), nil
}

func (r *MongoZoneRepository) GetAccess(ctx context.Context, zoneID string) ([]models.ZoneAccessEntry, error) {
	var doc zoneAccessDocument
	err := r.accessCollection.FindOne(ctx, bson.M{"_id": zoneID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, utils.NewDatabaseError("get zone access", err)
	}
	return doc.Entries, nil
}

func (r *MongoZoneRepository) SetAccess(ctx context.Context, zoneID string, entries []models.ZoneAccessEntry) error {
	doc := zoneAccessDocument{ZoneID: zoneID, Entries: entries}
	opts := options.Replace().SetUpsert(true)
	_, err := r.accessCollection.ReplaceOne(ctx, bson.M{"_id": zoneID}, doc, opts)
	if err != nil {
		return utils.NewDatabaseError("set zone access", err)
	}
	return nil
}

func (r *MongoZoneRepository) DeleteAccess(ctx context.Context, zoneID string) error {
	_, err := r.accessCollection.DeleteOne(ctx, bson.M{"_id": zoneID})
	if err != nil {
		return utils.NewDatabaseError("delete zone access", err)
	}
	return nil
}

func (r *MongoZoneRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, nil)
}
