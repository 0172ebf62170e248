package stock

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	repo "github.com/shankarelec/stocktrack/internal/repository/inventory"
)

// Watcher manages the subscription to the repository's change feed. Each
// Start opens a fresh session; Stop cancels it, so a later Start can never
// receive events that belong to a prior session.
type Watcher struct {
	repo   repo.Repository
	sink   *SyncChannel
	logger *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewWatcher wires a watcher publishing into sink.
func NewWatcher(repository repo.Repository, sink *SyncChannel, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{repo: repository, sink: sink, logger: logger}
}

// Start opens a watch session unless one is already running. The session
// reconnects with a short delay when the underlying feed fails.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	go w.run(ctx)
	w.logger.Info("watch session started")
}

// Stop cancels the running watch session, if any.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel == nil {
		return
	}

	w.cancel()
	w.cancel = nil
	w.logger.Info("watch session stopped")
}

func (w *Watcher) run(ctx context.Context) {
	for {
		err := w.repo.Watch(ctx, w.sink.Publish)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			w.logger.Error("change feed failed, reconnecting", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}
