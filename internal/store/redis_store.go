package store

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	apperrors "shopit-admin/internal/errors"
)

const (
	partitionSetKey    = "orders:partitions"
	partitionAddedChan = "orders:partitions:added"
	eventChannelPrefix = "orders:events:"
	documentKeyPrefix  = "orders:"
)

func indexKey(partition string, kind Kind) string {
	return documentKeyPrefix + partition + ":" + string(kind)
}

func documentKey(partition string, kind Kind, docID string) string {
	return indexKey(partition, kind) + ":" + docID
}

// RedisStore keeps one hash per document, a docID index set per
// sub-collection, and publishes change notifications over pub/sub: one
// channel per partition for document changes, one global channel announcing
// new partitions.
type RedisStore struct {
	client *goredis.Client
}

func NewRedisStore(client *goredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Partitions(ctx context.Context) ([]string, error) {
	partitions, err := s.client.SMembers(ctx, partitionSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}
	return partitions, nil
}

func (s *RedisStore) Collection(ctx context.Context, partition string, kind Kind) (Collection, error) {
	docIDs, err := s.client.SMembers(ctx, indexKey(partition, kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing %s documents for %s: %w", kind, partition, err)
	}

	collection := make(Collection, len(docIDs))
	for _, docID := range docIDs {
		fields, err := s.client.HGetAll(ctx, documentKey(partition, kind, docID)).Result()
		if err != nil {
			return nil, fmt.Errorf("reading document %s: %w", docID, err)
		}
		if len(fields) == 0 {
			continue
		}
		collection[docID] = Document(fields)
	}

	return collection, nil
}

func (s *RedisStore) PutDocument(ctx context.Context, partition string, kind Kind, docID string, doc Document) error {
	key := documentKey(partition, kind, docID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]string(doc))
	pipe.SAdd(ctx, indexKey(partition, kind), docID)
	added := pipe.SAdd(ctx, partitionSetKey, partition)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing document %s: %w", docID, err)
	}

	if added.Val() > 0 {
		if err := s.client.Publish(ctx, partitionAddedChan, partition).Err(); err != nil {
			return fmt.Errorf("announcing partition %s: %w", partition, err)
		}
	}

	return s.notify(ctx, partition, kind)
}

func (s *RedisStore) SetField(ctx context.Context, partition string, kind Kind, docID, field, value string) error {
	key := documentKey(partition, kind, docID)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("checking document %s: %w", docID, err)
	}
	if exists == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("document %s/%s/%s not found", partition, kind, docID))
	}

	if err := s.client.HSet(ctx, key, field, value).Err(); err != nil {
		return fmt.Errorf("updating document %s: %w", docID, err)
	}

	return s.notify(ctx, partition, kind)
}

func (s *RedisStore) WatchPartitions(ctx context.Context) (PartitionFeed, error) {
	pubsub := s.client.Subscribe(ctx, partitionAddedChan)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribing to partition feed: %w", err)
	}

	feed := &redisPartitionFeed{
		pubsub: pubsub,
		added:  make(chan string),
	}
	go feed.run()
	return feed, nil
}

func (s *RedisStore) WatchPartition(ctx context.Context, partition string) (PartitionWatch, error) {
	pubsub := s.client.Subscribe(ctx, eventChannelPrefix+partition)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribing to partition %s: %w", partition, err)
	}

	watch := &redisPartitionWatch{
		pubsub: pubsub,
		events: make(chan Kind),
	}
	go watch.run()
	return watch, nil
}

func (s *RedisStore) notify(ctx context.Context, partition string, kind Kind) error {
	if err := s.client.Publish(ctx, eventChannelPrefix+partition, string(kind)).Err(); err != nil {
		return fmt.Errorf("notifying watchers of %s: %w", partition, err)
	}
	return nil
}

type redisPartitionFeed struct {
	pubsub *goredis.PubSub
	added  chan string
}

func (f *redisPartitionFeed) run() {
	defer close(f.added)
	for msg := range f.pubsub.Channel() {
		f.added <- msg.Payload
	}
}

func (f *redisPartitionFeed) Added() <-chan string { return f.added }

func (f *redisPartitionFeed) Close() error { return f.pubsub.Close() }

type redisPartitionWatch struct {
	pubsub *goredis.PubSub
	events chan Kind
}

func (w *redisPartitionWatch) run() {
	defer close(w.events)
	for msg := range w.pubsub.Channel() {
		w.events <- Kind(msg.Payload)
	}
}

func (w *redisPartitionWatch) Events() <-chan Kind { return w.events }

func (w *redisPartitionWatch) Close() error { return w.pubsub.Close() }
