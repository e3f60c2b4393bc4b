package memory

import "context"

// CollectionRef addresses one collection in the backend. Metadata is applied
// only when the collection is first created; it records which provider and
// model the collection's vectors belong to.
type CollectionRef struct {
	Name string

	// Dimension of the vectors stored in this collection.
	Dimension int

	// Metadata recorded on the collection at creation time.
	Metadata map[string]string
}

// Entry is the stored form of a record: content, embedding, and flat string
// fields (the custom metadata travels as a JSON blob in Fields).
type Entry struct {
	ID        string
	Content   string
	Embedding []float32
	Fields    map[string]string
}

// Hit is an entry returned from a similarity query.
type Hit struct {
	Entry
	Similarity float32
}

// Backend is the vector collection storage contract. The chromem
// implementation is the only one in this repository; collections must be
// created lazily and idempotently on first write, and persist across
// process restarts when the backend is opened on a directory.
type Backend interface {
	// Upsert writes an entry, replacing any existing entry with the same ID.
	Upsert(ctx context.Context, col CollectionRef, e Entry) error

	// Get returns the entry with the given ID, or ok=false if absent.
	Get(ctx context.Context, col CollectionRef, id string) (Entry, bool, error)

	// Delete removes the entry with the given ID and reports whether it
	// existed. Deleting an absent ID is not an error.
	Delete(ctx context.Context, col CollectionRef, id string) (bool, error)

	// All returns every entry in the collection, in no particular order.
	All(ctx context.Context, col CollectionRef) ([]Entry, error)

	// Query returns up to n entries nearest to the embedding, most similar
	// first. n greater than the collection size returns everything.
	Query(ctx context.Context, col CollectionRef, embedding []float32, n int) ([]Hit, error)

	// Count returns the number of entries in the collection.
	Count(ctx context.Context, col CollectionRef) (int, error)
}
