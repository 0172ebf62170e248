package stock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shankarelec/stocktrack/internal/domain/models"
	repo "github.com/shankarelec/stocktrack/internal/repository/inventory"
)

// CreateUnitInput carries the caller-supplied fields for a new unit.
type CreateUnitInput struct {
	Model        string
	Variant      string
	IMEI         string
	Quantity     int
	PurchaseDate time.Time
}

// Store is the authoritative owner of the inventory collection. It never
// mutates its published snapshot in place: writes go to the repository, and
// the watcher delivers a replacement snapshot through the SyncChannel once
// the change is acknowledged. A failed operation therefore leaves the
// snapshot exactly as it was.
type Store struct {
	repo   repo.Repository
	sync   *SyncChannel
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	snapshot []models.InventoryUnit
}

// NewStore wires a store around the given repository.
func NewStore(repository repo.Repository, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		repo:   repository,
		sync:   NewSyncChannel(),
		logger: logger,
		now:    time.Now,
	}
}

// Create validates the input and persists a new unit in the IN_STOCK state.
// The assigned identifier is returned; the unit appears in the snapshot once
// the watcher delivers the next one.
func (s *Store) Create(ctx context.Context, in CreateUnitInput) (string, error) {
	if err := validateCreate(in); err != nil {
		return "", err
	}

	unit := models.InventoryUnit{
		Model:        strings.TrimSpace(in.Model),
		Variant:      strings.TrimSpace(in.Variant),
		IMEI:         strings.TrimSpace(in.IMEI),
		Quantity:     in.Quantity,
		PurchaseDate: in.PurchaseDate,
		Status:       models.StatusInStock,
		ActionDate:   nil,
		CreatedAt:    s.now().UTC(),
	}

	id, err := s.repo.Insert(ctx, unit)
	if err != nil {
		return "", err
	}

	s.logger.Info("unit created",
		zap.String("id", id),
		zap.String("model", unit.Model),
		zap.String("imei", unit.IMEI))
	return id, nil
}

// MarkSold records a sale against the unit on the caller-chosen date.
// Backdating is allowed.
func (s *Store) MarkSold(ctx context.Context, id string, date time.Time) error {
	return s.transition(ctx, id, models.StatusSold, date)
}

// MarkReturned records a return against the unit on the caller-chosen date.
func (s *Store) MarkReturned(ctx context.Context, id string, date time.Time) error {
	return s.transition(ctx, id, models.StatusReturned, date)
}

func (s *Store) transition(ctx context.Context, id string, status models.Status, date time.Time) error {
	if date.IsZero() {
		return fmt.Errorf("%w: action date is required", models.ErrValidation)
	}

	unit, ok := s.find(id)
	if !ok {
		return fmt.Errorf("unit %s: %w", id, models.ErrNotFound)
	}
	if unit.Status.Terminal() {
		return fmt.Errorf("unit %s is %s: %w", id, unit.Status, models.ErrUnitFinalized)
	}

	if err := s.repo.UpdateStatus(ctx, id, status, date); err != nil {
		return err
	}

	s.logger.Info("unit transitioned",
		zap.String("id", id),
		zap.String("status", string(status)),
		zap.Time("action_date", date))
	return nil
}

func (s *Store) find(id string) (models.InventoryUnit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, unit := range s.snapshot {
		if unit.ID == id {
			return unit, true
		}
	}
	return models.InventoryUnit{}, false
}

// Snapshot returns the currently published snapshot. Callers must treat the
// slice as read-only; replacements swap the whole slice.
func (s *Store) Snapshot() []models.InventoryUnit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Replace atomically publishes a new full snapshot.
func (s *Store) Replace(units []models.InventoryUnit) {
	s.mu.Lock()
	s.snapshot = units
	s.mu.Unlock()

	s.logger.Debug("snapshot replaced", zap.Int("units", len(units)))
}

// Sync exposes the channel the persistence watcher publishes into.
func (s *Store) Sync() *SyncChannel {
	return s.sync
}

// Run consumes delivered snapshots until ctx is cancelled. It is the single
// consumer of the SyncChannel.
func (s *Store) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot := <-s.sync.Recv():
			s.Replace(snapshot)
		}
	}
}

func validateCreate(in CreateUnitInput) error {
	switch {
	case strings.TrimSpace(in.Model) == "":
		return fmt.Errorf("%w: model is required", models.ErrValidation)
	case strings.TrimSpace(in.Variant) == "":
		return fmt.Errorf("%w: variant is required", models.ErrValidation)
	case strings.TrimSpace(in.IMEI) == "":
		return fmt.Errorf("%w: imei is required", models.ErrValidation)
	case in.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be a positive number", models.ErrValidation)
	case in.PurchaseDate.IsZero():
		return fmt.Errorf("%w: purchase date is required", models.ErrValidation)
	}
	return nil
}
