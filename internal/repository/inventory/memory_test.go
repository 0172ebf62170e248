package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shankarelec/stocktrack/internal/domain/models"
)

func TestMemoryInsertAssignsID(t *testing.T) {
	repo := NewMemoryRepository()

	id, err := repo.Insert(context.Background(), models.InventoryUnit{Model: "Galaxy S24"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	units, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, id, units[0].ID)
}

func TestMemoryUpdateStatus(t *testing.T) {
	repo := NewMemoryRepository()
	id, err := repo.Insert(context.Background(), models.InventoryUnit{Model: "Pixel 8", Status: models.StatusInStock})
	require.NoError(t, err)

	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateStatus(context.Background(), id, models.StatusSold, date))

	units, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, models.StatusSold, units[0].Status)
	require.NotNil(t, units[0].ActionDate)
	assert.True(t, units[0].ActionDate.Equal(date))

	err = repo.UpdateStatus(context.Background(), "missing", models.StatusSold, date)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemoryWatchDeliversSnapshots(t *testing.T) {
	repo := NewMemoryRepository()

	var mu sync.Mutex
	var snapshots [][]models.InventoryUnit
	publish := func(units []models.InventoryUnit) {
		mu.Lock()
		snapshots = append(snapshots, units)
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = repo.Watch(ctx, publish)
		close(done)
	}()

	// Initial empty snapshot arrives on subscription.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(snapshots) == 1
	}, time.Second, 5*time.Millisecond)

	_, err := repo.Insert(context.Background(), models.InventoryUnit{Model: "Galaxy A15"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(snapshots) == 2 && len(snapshots[1]) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	// No deliveries after cancellation.
	_, err = repo.Insert(context.Background(), models.InventoryUnit{Model: "Pixel 8"})
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, snapshots, 2)
}
