package notifier

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/gft-fund-ledger/internal/domain/notification"
)

// Dispatcher sends notices concurrently through a bounded worker pool
type Dispatcher interface {
	Dispatch(ctx context.Context, notice *notification.Notice) error
	Shutdown()
}

// PooledDispatcher implements Dispatcher on top of an ants pool so a burst
// of consumed events cannot spawn an unbounded number of gateway calls
type PooledDispatcher struct {
	gateway notification.Gateway
	pool    *ants.Pool
	logger  *slog.Logger
	// Use a mutex to protect access to the results map
	mu      sync.Mutex
	results map[string]chan error
}

type PoolConfig struct {
	Size int
}

func NewPooledDispatcher(
	gateway notification.Gateway,
	config PoolConfig,
	logger *slog.Logger,
) (*PooledDispatcher, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &PooledDispatcher{
		gateway: gateway,
		pool:    pool,
		logger:  logger,
		results: make(map[string]chan error),
	}, nil
}

// Dispatch submits the notice to the worker pool and waits for delivery
func (d *PooledDispatcher) Dispatch(ctx context.Context, notice *notification.Notice) error {
	logger := d.logger.With(
		"business_transaction_id", notice.BusinessTransactionID,
		"client_id", notice.ClientID,
	)

	logger.Info("Submitting notice to dispatch pool", "channel", string(notice.Channel))

	// Create a channel to receive the delivery result
	resultChan := make(chan error, 1)

	key := notice.BusinessTransactionID
	d.mu.Lock()
	d.results[key] = resultChan
	d.mu.Unlock()

	// Create a copy of the notice to avoid data races
	noticeCopy := *notice

	err := d.pool.Submit(func() {
		err := d.gateway.Send(ctx, &noticeCopy)

		resultChan <- err

		d.mu.Lock()
		delete(d.results, key)
		close(resultChan)
		d.mu.Unlock()
	})

	if err != nil {
		// If we couldn't submit the task to the pool, remove the result channel
		d.mu.Lock()
		delete(d.results, key)
		close(resultChan)
		d.mu.Unlock()

		logger.Error("Failed to submit notice to dispatch pool", "error", err)
		return err
	}

	// Wait for the result from the worker
	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (d *PooledDispatcher) Shutdown() {
	d.logger.Info("Shutting down dispatch pool", "running_workers", d.pool.Running())
	d.pool.Release()
}

// Running returns the number of running workers in the pool.
func (d *PooledDispatcher) Running() int {
	return d.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (d *PooledDispatcher) Capacity() int {
	return d.pool.Cap()
}
