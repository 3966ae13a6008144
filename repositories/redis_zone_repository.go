package repositories

import (
	"context"
	"encoding/json"

	"zonetrack/models"
	"zonetrack/utils"

	"github.com/go-redis/redis/v8"
)

const (
	redisZoneHashKey   = "zonetrack:zones"
	redisZoneOrderKey  = "zonetrack:zones:order"
	redisZoneAccessKey = "zonetrack:zone_access"
)

// RedisZoneRepository stores zone records as JSON in a Redis hash, with a
// separate list holding insertion order.
type RedisZoneRepository struct {
	client *redis.Client
}

func NewRedisZoneRepository(client *redis.Client) *RedisZoneRepository {
	return &RedisZoneRepository{client: client}
}

func (r *RedisZoneRepository) Insert(ctx context.Context, zone *models.Zone) error {
	data, err := json.Marshal(zone)
	if err != nil {
		return utils.NewDatabaseError("marshal zone", err)
	}

	exists, err := r.client.HExists(ctx, redisZoneHashKey, zone.ID).Result()
	if err != nil {
		return utils.NewDatabaseError("insert zone", err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, redisZoneHashKey, zone.ID, data)
	if !exists {
		pipe.RPush(ctx, redisZoneOrderKey, zone.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return utils.NewDatabaseError("insert zone", err)
	}
	return nil
}

func (r *RedisZoneRepository) Get(ctx context.Context, zoneID string) (*models.Zone, error) {
	data, err := r.client.HGet(ctx, redisZoneHashKey, zoneID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, utils.NewDatabaseError("get zone", err)
	}

	var zone models.Zone
	if err := json.Unmarshal([]byte(data), &zone); err != nil {
		return nil, utils.NewDatabaseError("unmarshal zone", err)
	}
	return &zone, nil
}

func (r *RedisZoneRepository) Update(ctx context.Context, zone *models.Zone) error {
	exists, err := r.client.HExists(ctx, redisZoneHashKey, zone.ID).Result()
	if err != nil {
		return utils.NewDatabaseError("update zone", err)
	}
	if !exists {
		return utils.NewZoneNotFoundError(zone.ID)
	}

	data, err := json.Marshal(zone)
	if err != nil {
		return utils.NewDatabaseError("marshal zone", err)
	}
	if err := r.client.HSet(ctx, redisZoneHashKey, zone.ID, data).Err(); err != nil {
		return utils.NewDatabaseError("update zone", err)
	}
	return nil
}

func (r *RedisZoneRepository) Delete(ctx context.Context, zoneID string) error {
	removed, err := r.client.HDel(ctx, redisZoneHashKey, zoneID).Result()
	if err != nil {
		return utils.NewDatabaseError("delete zone", err)
	}
	if removed == 0 {
		return utils.NewZoneNotFoundError(zoneID)
	}
	if err := r.client.LRem(ctx, redisZoneOrderKey, 0, zoneID).Err(); err != nil {
		return utils.NewDatabaseError("delete zone", err)
	}
	return nil
}

func (r *RedisZoneRepository) List(ctx context.Context) ([]*models.Zone, error) {
	ids, err := r.client.LRange(ctx, redisZoneOrderKey, 0, -1).Result()
	if err != nil {
		return nil, utils.NewDatabaseError("list zones", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	values, err := r.client.HMGet(ctx, redisZoneHashKey, ids...).Result()
	if err != nil {
		return nil, utils.NewDatabaseError("list zones", err)
	}

	zones := make([]*models.Zone, 0, len(values))
	for _, value := range values {
		data, ok := value.(string)
		if !ok {
			continue
		}
		var zone models.Zone
		if err := json.Unmarshal([]byte(data), &zone); err != nil {
			return nil, utils.NewDatabaseError("unmarshal zone", err)
		}
		zones = append(zones, &zone)
	}
	return zones, nil
}

func (r *RedisZoneRepository) CountByCreator(ctx context.Context, userID string) (int, error) {
	zones, err := r.List(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, zone := range zones {
		if zone.CreatedBy == userID {
			count++
		}
	}
	return count, nil
}

func (r *RedisZoneRepository) GetAccess(ctx context.Context, zoneID string) ([]models.ZoneAccessEntry, error) {
	data, err := r.client.HGet(ctx, redisZoneAccessKey, zoneID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, utils.NewDatabaseError("get zone access", err)
	}

	var entries []models.ZoneAccessEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, utils.NewDatabaseError("unmarshal zone access", err)
	}
	return entries, nil
}

func (r *RedisZoneRepository) SetAccess(ctx context.Context, zoneID string, entries []models.ZoneAccessEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return utils.NewDatabaseError("marshal zone access", err)
	}
	if err := r.client.HSet(ctx, redisZoneAccessKey, zoneID, data).Err(); err != nil {
		return utils.NewDatabaseError("set zone access", err)
	}
	return nil
}

func (r *RedisZoneRepository) DeleteAccess(ctx context.Context, zoneID string) error {
	if err := r.client.HDel(ctx, redisZoneAccessKey, zoneID).Err(); err != nil {
		return utils.NewDatabaseError("delete zone access", err)
	}
	return nil
}

func (r *RedisZoneRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
