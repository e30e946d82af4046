// Package store is the port onto the realtime document store the storefront
// writes into. Documents hang off per-user partitions in typed
// sub-collections, and every write produces a change notification that
// watchers of that partition receive.
package store

import "context"

// Kind names a sub-collection within a user partition.
type Kind string

const (
	KindNormalOrders Kind = "normal_orders"
	KindVoiceOrders  Kind = "voice_orders"
	KindPushTargets  Kind = "fcm_tokens"
)

// Document is one stored record, field name to raw value.
type Document map[string]string

// Collection is a snapshot of a whole sub-collection, document id to
// document. Change notifications are collection-level: consumers re-read the
// full snapshot rather than applying deltas.
type Collection map[string]Document

// Store reads and writes partitioned documents and exposes their change
// feeds.
type Store interface {
	// Partitions enumerates the user partitions currently known.
	Partitions(ctx context.Context) ([]string, error)

	// Collection returns the full snapshot of one sub-collection.
	Collection(ctx context.Context, partition string, kind Kind) (Collection, error)

	// PutDocument creates or replaces a document and notifies watchers.
	PutDocument(ctx context.Context, partition string, kind Kind, docID string, doc Document) error

	// SetField updates one field of an existing document and notifies
	// watchers. Returns a NotFoundError when the document does not exist.
	SetField(ctx context.Context, partition string, kind Kind, docID, field, value string) error

	// WatchPartitions announces partitions created after the call.
	WatchPartitions(ctx context.Context) (PartitionFeed, error)

	// WatchPartition delivers change events for one partition. Each
	// partition watch is an independent handle: closing one never affects
	// siblings.
	WatchPartition(ctx context.Context, partition string) (PartitionWatch, error)
}

// PartitionFeed is the top-level subscription enumerating new partitions.
type PartitionFeed interface {
	Added() <-chan string
	Close() error
}

// PartitionWatch is one partition's change feed. Events carry only the kind
// that changed; the consumer re-reads that sub-collection.
type PartitionWatch interface {
	Events() <-chan Kind
	Close() error
}
