package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopit-admin/internal/domain"
	apperrors "shopit-admin/internal/errors"
	"shopit-admin/internal/store"
)

type fakeWatch struct {
	events chan store.Kind
	once   sync.Once
}

func (w *fakeWatch) Events() <-chan store.Kind { return w.events }

func (w *fakeWatch) Close() error {
	w.once.Do(func() { close(w.events) })
	return nil
}

type fakeFeed struct {
	added chan string
	once  sync.Once
}

func (f *fakeFeed) Added() <-chan string { return f.added }

func (f *fakeFeed) Close() error {
	f.once.Do(func() { close(f.added) })
	return nil
}

type fakeSource struct {
	mu          sync.Mutex
	partitions  []string
	collections map[string]store.Collection
	errs        map[string]error
	watches     map[string]*fakeWatch
	feed        *fakeFeed
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		collections: make(map[string]store.Collection),
		errs:        make(map[string]error),
		watches:     make(map[string]*fakeWatch),
		feed:        &fakeFeed{added: make(chan string, 4)},
	}
}

func collKey(partition string, kind store.Kind) string {
	return partition + "|" + string(kind)
}

func (s *fakeSource) setCollection(partition string, kind store.Kind, c store.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collKey(partition, kind)] = c
}

func (s *fakeSource) setError(partition string, kind store.Kind, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[collKey(partition, kind)] = err
}

func (s *fakeSource) Partitions(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.partitions...), nil
}

func (s *fakeSource) Collection(ctx context.Context, partition string, kind store.Kind) (store.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[collKey(partition, kind)]; err != nil {
		return nil, err
	}
	out := make(store.Collection)
	for docID, doc := range s.collections[collKey(partition, kind)] {
		copied := make(store.Document, len(doc))
		for k, v := range doc {
			copied[k] = v
		}
		out[docID] = copied
	}
	return out, nil
}

func (s *fakeSource) WatchPartitions(ctx context.Context) (store.PartitionFeed, error) {
	return s.feed, nil
}

func (s *fakeSource) WatchPartition(ctx context.Context, partition string) (store.PartitionWatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := &fakeWatch{events: make(chan store.Kind, 8)}
	s.watches[partition] = w
	return w, nil
}

func (s *fakeSource) emit(t *testing.T, partition string, kind store.Kind) {
	t.Helper()
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, ok := s.watches[partition]
		return ok
	}, time.Second, 5*time.Millisecond, "watch for partition %s never registered", partition)

	s.mu.Lock()
	w := s.watches[partition]
	s.mu.Unlock()
	w.events <- kind
}

func startAggregator(t *testing.T, source *fakeSource) *Aggregator {
	t.Helper()
	agg := NewAggregator(source, zap.NewNop())
	require.NoError(t, agg.Start(context.Background()))
	t.Cleanup(agg.Close)
	return agg
}

func waitForOrders(t *testing.T, agg *Aggregator, n int) []domain.Order {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(agg.Current()) == n
	}, time.Second, 5*time.Millisecond)
	return agg.Current()
}

func TestAggregator_MergesAndSortsAcrossStreams(t *testing.T) {
	source := newFakeSource()
	source.partitions = []string{"u1"}
	source.setCollection("u1", store.KindNormalOrders, store.Collection{
		"n1": {"timestamp": "200", "orderStatus": "Placed"},
	})
	source.setCollection("u1", store.KindVoiceOrders, store.Collection{
		"v1": {"timestamp": "100", "productName": "Desk Lamp"},
	})

	agg := startAggregator(t, source)

	orders := waitForOrders(t, agg, 2)
	assert.Equal(t, "n1", orders[0].OrderID)
	assert.Equal(t, "v1", orders[1].OrderID)
	assert.Equal(t, domain.OrderTypeVoiceChat, orders[1].OrderType)
}

func TestAggregator_ReplayedEventIsIdempotent(t *testing.T) {
	source := newFakeSource()
	source.partitions = []string{"u1"}
	source.setCollection("u1", store.KindNormalOrders, store.Collection{
		"n1": {"timestamp": "200"},
	})

	agg := startAggregator(t, source)
	waitForOrders(t, agg, 1)

	// Replay the same change event, then a distinguishable one. Events on a
	// partition are processed in order, so once n2 shows up the replay has
	// been absorbed.
	source.emit(t, "u1", store.KindNormalOrders)
	source.setCollection("u1", store.KindNormalOrders, store.Collection{
		"n1": {"timestamp": "200"},
		"n2": {"timestamp": "300"},
	})
	source.emit(t, "u1", store.KindNormalOrders)

	orders := waitForOrders(t, agg, 2)
	assert.Equal(t, "n2", orders[0].OrderID)
	assert.Equal(t, "n1", orders[1].OrderID)
}

func TestAggregator_SnapshotReplacesOnKey(t *testing.T) {
	source := newFakeSource()
	source.partitions = []string{"u1"}
	source.setCollection("u1", store.KindNormalOrders, store.Collection{
		"n1": {"timestamp": "200", "orderStatus": "Placed"},
	})

	agg := startAggregator(t, source)
	waitForOrders(t, agg, 1)

	source.setCollection("u1", store.KindNormalOrders, store.Collection{
		"n1": {"timestamp": "200", "orderStatus": "In Transit"},
	})
	source.emit(t, "u1", store.KindNormalOrders)

	require.Eventually(t, func() bool {
		current := agg.Current()
		return len(current) == 1 && current[0].OrderStatus == "In Transit"
	}, time.Second, 5*time.Millisecond)
}

func TestAggregator_PartitionFailureIsIsolated(t *testing.T) {
	source := newFakeSource()
	source.partitions = []string{"u1", "u2"}
	source.setCollection("u1", store.KindNormalOrders, store.Collection{
		"n1": {"timestamp": "200"},
	})
	source.setError("u2", store.KindNormalOrders, errors.New("permission denied"))
	source.setError("u2", store.KindVoiceOrders, errors.New("permission denied"))

	agg := startAggregator(t, source)

	// The healthy partition still aggregates.
	orders := waitForOrders(t, agg, 1)
	assert.Equal(t, "n1", orders[0].OrderID)

	select {
	case err := <-agg.Errors():
		se, ok := apperrors.IsStreamError(err)
		require.True(t, ok, "expected StreamError, got %v", err)
		assert.Equal(t, "u2", se.Partition)
	case <-time.After(time.Second):
		t.Fatal("expected a stream error for partition u2")
	}
}

func TestAggregator_DiscoversNewPartition(t *testing.T) {
	source := newFakeSource()
	source.partitions = []string{"u1"}
	source.setCollection("u1", store.KindNormalOrders, store.Collection{
		"n1": {"timestamp": "200"},
	})

	agg := startAggregator(t, source)
	waitForOrders(t, agg, 1)

	source.setCollection("u2", store.KindNormalOrders, store.Collection{
		"n2": {"timestamp": "300"},
	})
	source.feed.added <- "u2"

	orders := waitForOrders(t, agg, 2)
	assert.Equal(t, "n2", orders[0].OrderID)
	assert.Equal(t, "u2", orders[0].UserID)
}

func TestAggregator_ApplyStatusIsImmediate(t *testing.T) {
	source := newFakeSource()
	source.partitions = []string{"u1"}
	source.setCollection("u1", store.KindNormalOrders, store.Collection{
		"n1": {"timestamp": "200", "orderStatus": "Placed"},
	})

	agg := startAggregator(t, source)
	waitForOrders(t, agg, 1)

	agg.ApplyStatus("n1", "u1", domain.OrderStatusCancelled)

	current := agg.Current()
	require.Len(t, current, 1)
	assert.Equal(t, domain.OrderStatusCancelled, current[0].OrderStatus)

	// Unknown keys are a no-op, not an append.
	agg.ApplyStatus("ghost", "u1", domain.OrderStatusDelivered)
	assert.Len(t, agg.Current(), 1)
}

func TestAggregator_SubscribePublishesSnapshots(t *testing.T) {
	source := newFakeSource()
	source.partitions = []string{"u1"}
	source.setCollection("u1", store.KindNormalOrders, store.Collection{
		"n1": {"timestamp": "200"},
	})

	agg := startAggregator(t, source)
	waitForOrders(t, agg, 1)

	snapshots, cancel := agg.Subscribe()

	source.setCollection("u1", store.KindNormalOrders, store.Collection{
		"n1": {"timestamp": "200"},
		"n3": {"timestamp": "400"},
	})
	source.emit(t, "u1", store.KindNormalOrders)

	require.Eventually(t, func() bool {
		select {
		case snapshot := <-snapshots:
			return len(snapshot) == 2 && snapshot[0].OrderID == "n3"
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	cancel()
	_, open := <-snapshots
	assert.False(t, open, "subscription channel should close on cancel")
}
