package operator

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-engine/internal/operator/actions"
	"github.com/carson-networks/budget-engine/internal/storage"
)

var ErrStopped = errors.New("operator delegator is stopped")

const queueSize = 1000

// OperatorDelegator owns one queue per Operator and routes every action to
// the queue chosen by its Key, so actions with the same key run one at a
// time and in submission order.
type OperatorDelegator struct {
	storage    storage.Storage
	log        *logrus.Logger
	queues     []chan ActionItem
	numWorkers int
	wg         sync.WaitGroup
	mu         sync.RWMutex
	stopped    bool
	startOnce  sync.Once
	stopOnce   sync.Once
}

func NewOperatorDelegator(s storage.Storage, numWorkers int, log *logrus.Logger) *OperatorDelegator {
	if numWorkers < 1 {
		numWorkers = 1
	}
	queues := make([]chan ActionItem, numWorkers)
	for i := range queues {
		queues[i] = make(chan ActionItem, queueSize)
	}
	return &OperatorDelegator{
		storage:    s,
		log:        log,
		queues:     queues,
		numWorkers: numWorkers,
	}
}

func (d *OperatorDelegator) Start() {
	d.startOnce.Do(func() {
		for i := 0; i < d.numWorkers; i++ {
			d.wg.Add(1)
			op := NewOperator(i, d.storage, d.queues[i], d.log)
			go func() {
				defer d.wg.Done()
				op.Run()
			}()
		}
	})
}

// Stop drains every queue and waits for in-flight actions.
func (d *OperatorDelegator) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		for _, q := range d.queues {
			close(q)
		}
		d.mu.Unlock()
		d.wg.Wait()
	})
}

func (d *OperatorDelegator) route(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(d.numWorkers))
}

// Process runs action in its own storage transaction and waits for the result.
func (d *OperatorDelegator) Process(ctx context.Context, action actions.IAction) error {
	respCh := make(chan ActionItemResponse, 1)
	item := ActionItem{
		ctx:      ctx,
		action:   action,
		response: respCh,
	}

	d.mu.RLock()
	if d.stopped {
		d.mu.RUnlock()
		return ErrStopped
	}
	select {
	case d.queues[d.route(action.Key())] <- item:
		d.mu.RUnlock()
	case <-ctx.Done():
		d.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case resp := <-respCh:
		return resp.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
