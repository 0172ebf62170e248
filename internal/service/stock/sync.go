package stock

import "github.com/shankarelec/stocktrack/internal/domain/models"

// SyncChannel carries full inventory snapshots from the persistence watcher
// to the store. It buffers at most one snapshot: when a new snapshot arrives
// before the previous one was consumed, the stale one is dropped. Only the
// most recent state matters, so superseding is safe.
type SyncChannel struct {
	ch chan []models.InventoryUnit
}

// NewSyncChannel creates a latest-wins snapshot channel.
func NewSyncChannel() *SyncChannel {
	return &SyncChannel{ch: make(chan []models.InventoryUnit, 1)}
}

// Publish enqueues a snapshot, displacing a pending unconsumed one.
func (c *SyncChannel) Publish(snapshot []models.InventoryUnit) {
	for {
		select {
		case c.ch <- snapshot:
			return
		default:
		}

		select {
		case <-c.ch:
		default:
		}
	}
}

// Recv exposes the consumer side of the channel.
func (c *SyncChannel) Recv() <-chan []models.InventoryUnit {
	return c.ch
}
