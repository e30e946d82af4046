package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"shopit-admin/internal/domain"
	apperrors "shopit-admin/internal/errors"
	"shopit-admin/internal/store"
)

// OrderSource is the slice of the realtime store the aggregator consumes.
type OrderSource interface {
	Partitions(ctx context.Context) ([]string, error)
	Collection(ctx context.Context, partition string, kind store.Kind) (store.Collection, error)
	WatchPartitions(ctx context.Context) (store.PartitionFeed, error)
	WatchPartition(ctx context.Context, partition string) (store.PartitionWatch, error)
}

// Aggregator merges every user's normal and voice order sub-streams into one
// continuously re-sorted view. One goroutine watches each partition; a
// top-level feed discovers partitions created after startup. Each watcher is
// independent: a broken partition surfaces a StreamError and keeps its last
// good data, siblings are untouched.
//
// Merge is keyed by (orderId, userId) with replace-on-key semantics, so
// replaying the same change event is a no-op and interleaving order across
// sub-streams does not matter.
type Aggregator struct {
	source OrderSource
	logger *zap.Logger

	mu       sync.Mutex
	merged   map[domain.OrderKey]domain.Order
	view     []domain.Order
	watching map[string]bool

	subsMu sync.Mutex
	subs   map[int]chan []domain.Order
	nextID int

	errs   chan error
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewAggregator(source OrderSource, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		source:   source,
		logger:   logger,
		merged:   make(map[domain.OrderKey]domain.Order),
		watching: make(map[string]bool),
		subs:     make(map[int]chan []domain.Order),
		errs:     make(chan error, 16),
	}
}

// Start enumerates existing partitions, spawns one watcher per partition and
// begins discovering new ones. It returns once the initial enumeration is
// done; snapshots arrive asynchronously.
func (a *Aggregator) Start(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)

	partitions, err := a.source.Partitions(a.ctx)
	if err != nil {
		return err
	}
	for _, partition := range partitions {
		a.addPartition(partition)
	}

	feed, err := a.source.WatchPartitions(a.ctx)
	if err != nil {
		return err
	}

	a.wg.Add(1)
	go a.discover(feed)
	return nil
}

// Close tears down every subscription. In-flight store reads complete and
// their results are discarded.
func (a *Aggregator) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	a.subsMu.Lock()
	for id, ch := range a.subs {
		close(ch)
		delete(a.subs, id)
	}
	a.subsMu.Unlock()
}

// Current returns the last published view.
func (a *Aggregator) Current() []domain.Order {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.Order, len(a.view))
	copy(out, a.view)
	return out
}

// Subscribe registers a consumer. The channel holds the freshest snapshot
// only: a slow consumer skips intermediate publishes, never blocks one.
// The returned cancel detaches the consumer.
func (a *Aggregator) Subscribe() (<-chan []domain.Order, func()) {
	ch := make(chan []domain.Order, 1)

	a.subsMu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = ch
	a.subsMu.Unlock()

	cancel := func() {
		a.subsMu.Lock()
		if _, ok := a.subs[id]; ok {
			delete(a.subs, id)
			close(ch)
		}
		a.subsMu.Unlock()
	}
	return ch, cancel
}

// Errors surfaces per-partition stream failures to the view layer.
func (a *Aggregator) Errors() <-chan error {
	return a.errs
}

// ApplyStatus reflects an operator-driven status change immediately, without
// waiting for the next live-stream event.
func (a *Aggregator) ApplyStatus(orderID, userID, status string) {
	a.mu.Lock()
	key := domain.OrderKey{OrderID: orderID, UserID: userID}
	if order, ok := a.merged[key]; ok {
		order.OrderStatus = status
		a.merged[key] = order
		a.rebuildLocked()
	}
	a.mu.Unlock()
}

func (a *Aggregator) addPartition(partition string) {
	a.mu.Lock()
	if a.watching[partition] {
		a.mu.Unlock()
		return
	}
	a.watching[partition] = true
	a.mu.Unlock()

	a.wg.Add(1)
	go a.watchPartition(partition)
}

func (a *Aggregator) discover(feed store.PartitionFeed) {
	defer a.wg.Done()
	defer feed.Close()

	for {
		select {
		case <-a.ctx.Done():
			return
		case partition, ok := <-feed.Added():
			if !ok {
				return
			}
			a.addPartition(partition)
		}
	}
}

func (a *Aggregator) watchPartition(partition string) {
	defer a.wg.Done()

	watch, err := a.source.WatchPartition(a.ctx, partition)
	if err != nil {
		a.reportError(partition, err)
		return
	}
	defer watch.Close()

	a.refresh(partition, store.KindNormalOrders)
	a.refresh(partition, store.KindVoiceOrders)

	for {
		select {
		case <-a.ctx.Done():
			return
		case kind, ok := <-watch.Events():
			if !ok {
				return
			}
			switch kind {
			case store.KindNormalOrders, store.KindVoiceOrders:
				a.refresh(partition, kind)
			}
		}
	}
}

// refresh re-reads the full sub-collection, normalizes it, and merges it in.
// A read failure keeps the last good data for this sub-stream.
func (a *Aggregator) refresh(partition string, kind store.Kind) {
	collection, err := a.source.Collection(a.ctx, partition, kind)
	if err != nil {
		a.reportError(partition, err)
		return
	}

	orders := make([]domain.Order, 0, len(collection))
	for docID, doc := range collection {
		if kind == store.KindVoiceOrders {
			orders = append(orders, domain.NormalizeVoiceOrder(partition, docID, doc))
		} else {
			orders = append(orders, domain.NormalizeNormalOrder(partition, docID, doc))
		}
	}

	a.mu.Lock()
	for _, order := range orders {
		a.merged[order.Key()] = order
	}
	a.rebuildLocked()
	a.mu.Unlock()
}

// rebuildLocked recomputes the sorted view and publishes it atomically.
// Callers hold a.mu, so no consumer ever observes a partial merge.
func (a *Aggregator) rebuildLocked() {
	view := make([]domain.Order, 0, len(a.merged))
	for _, order := range a.merged {
		view = append(view, order)
	}
	domain.SortByTimestampDesc(view)
	a.view = view

	a.publish(view)
}

func (a *Aggregator) publish(view []domain.Order) {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()

	for _, ch := range a.subs {
		// Drop the stale snapshot before offering the fresh one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- view:
		default:
		}
	}
}

func (a *Aggregator) reportError(partition string, err error) {
	streamErr := apperrors.NewStreamError(partition, err)
	a.logger.Warn("partition stream failure", zap.String("partition", partition), zap.Error(err))

	select {
	case a.errs <- streamErr:
	default:
	}
}
