package repositories

import (
	"context"
	"sync"

	"zonetrack/models"
	"zonetrack/utils"
)

// MemoryZoneRepository keeps all zone records and ACLs in process memory.
// It preserves insertion order so that location-update event derivation
// evaluates zones in the order they were created.
type MemoryZoneRepository struct {
	zones  map[string]models.Zone
	order  []string
	access map[string][]models.ZoneAccessEntry
	mutex  sync.RWMutex
}

func NewMemoryZoneRepository() *MemoryZoneRepository {
	return &MemoryZoneRepository{
		zones:  make(map[string]models.Zone),
		access: make(map[string][]models.ZoneAccessEntry),
	}
}

func (r *MemoryZoneRepository) Insert(ctx context.Context, zone *models.Zone) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.zones[zone.ID]; !exists {
		r.order = append(r.order, zone.ID)
	}
	r.zones[zone.ID] = cloneZone(*zone)
	return nil
}

func (r *MemoryZoneRepository) Get(ctx context.Context, zoneID string) (*models.Zone, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	zone, exists := r.zones[zoneID]
	if !exists {
		return nil, nil
	}
	copied := cloneZone(zone)
	return &copied, nil
}

func (r *MemoryZoneRepository) Update(ctx context.Context, zone *models.Zone) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.zones[zone.ID]; !exists {
		return utils.NewZoneNotFoundError(zone.ID)
	}
	r.zones[zone.ID] = cloneZone(*zone)
	return nil
}

func (r *MemoryZoneRepository) Delete(ctx context.Context, zoneID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.zones[zoneID]; !exists {
		return utils.NewZoneNotFoundError(zoneID)
	}
	delete(r.zones, zoneID)
	r.order = utils.RemoveStringFromSlice(r.order, zoneID)
	return nil
}

func (r *MemoryZoneRepository) List(ctx context.Context) ([]*models.Zone, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	zones := make([]*models.Zone, 0, len(r.order))
	for _, id := range r.order {
		zone := cloneZone(r.zones[id])
		zones = append(zones, &zone)
	}
	return zones, nil
}

func (r *MemoryZoneRepository) CountByCreator(ctx context.Context, userID string) (int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	count := 0
	for _, zone := range r.zones {
		if zone.CreatedBy == userID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryZoneRepository) GetAccess(ctx context.Context, zoneID string) ([]models.ZoneAccessEntry, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entries := r.access[zoneID]
	copied := make([]models.ZoneAccessEntry, len(entries))
	copy(copied, entries)
	return copied, nil
}

func (r *MemoryZoneRepository) SetAccess(ctx context.Context, zoneID string, entries []models.ZoneAccessEntry) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	copied := make([]models.ZoneAccessEntry, len(entries))
	copy(copied, entries)
	r.access[zoneID] = copied
	return nil
}

func (r *MemoryZoneRepository) DeleteAccess(ctx context.Context, zoneID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.access, zoneID)
	return nil
}

func (r *MemoryZoneRepository) Ping(ctx context.Context) error {
	return nil
}

// cloneZone deep-copies the slice and map fields so callers never alias the
// stored record.
func cloneZone(zone models.Zone) models.Zone {
	zone.ChildZoneIDs = append([]string(nil), zone.ChildZoneIDs...)
	zone.DeviceIDs = append([]string(nil), zone.DeviceIDs...)
	if zone.Metadata != nil {
		metadata := make(map[string]string, len(zone.Metadata))
		for k, v := range zone.Metadata {
			metadata[k] = v
		}
		zone.Metadata = metadata
	}
	return zone
}
