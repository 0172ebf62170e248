package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shankarelec/stocktrack/internal/domain/models"
)

// MemoryRepository is an in-process Repository used for local development
// runs without MongoDB and as a test double. Mutations fan out snapshots to
// active watchers on the caller's goroutine.
type MemoryRepository struct {
	mu       sync.Mutex
	units    []models.InventoryUnit
	watchers map[int]func([]models.InventoryUnit)
	nextID   int
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		watchers: make(map[int]func([]models.InventoryUnit)),
	}
}

// Insert stores a new unit under a generated identifier.
func (r *MemoryRepository) Insert(_ context.Context, unit models.InventoryUnit) (string, error) {
	r.mu.Lock()
	unit.ID = uuid.NewString()
	r.units = append(r.units, unit)
	snapshot := r.snapshotLocked()
	watchers := r.watchersLocked()
	r.mu.Unlock()

	fanOut(watchers, snapshot)
	return unit.ID, nil
}

// UpdateStatus applies a status transition to the identified unit.
func (r *MemoryRepository) UpdateStatus(_ context.Context, id string, status models.Status, actionDate time.Time) error {
	r.mu.Lock()

	idx := -1
	for i := range r.units {
		if r.units[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return fmt.Errorf("update unit %s: %w", id, models.ErrNotFound)
	}

	r.units[idx].Status = status
	date := actionDate
	r.units[idx].ActionDate = &date

	snapshot := r.snapshotLocked()
	watchers := r.watchersLocked()
	r.mu.Unlock()

	fanOut(watchers, snapshot)
	return nil
}

// FindAll returns a copy of all units in insertion order.
func (r *MemoryRepository) FindAll(_ context.Context) ([]models.InventoryUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(), nil
}

// Watch registers a snapshot consumer, delivers the current snapshot, and
// blocks until ctx is cancelled.
func (r *MemoryRepository) Watch(ctx context.Context, publish func([]models.InventoryUnit)) error {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.watchers[id] = publish
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	publish(snapshot)

	<-ctx.Done()

	r.mu.Lock()
	delete(r.watchers, id)
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) snapshotLocked() []models.InventoryUnit {
	snapshot := make([]models.InventoryUnit, len(r.units))
	copy(snapshot, r.units)
	return snapshot
}

func (r *MemoryRepository) watchersLocked() []func([]models.InventoryUnit) {
	out := make([]func([]models.InventoryUnit), 0, len(r.watchers))
	for _, w := range r.watchers {
		out = append(out, w)
	}
	return out
}

func fanOut(watchers []func([]models.InventoryUnit), snapshot []models.InventoryUnit) {
	for _, publish := range watchers {
		publish(snapshot)
	}
}
