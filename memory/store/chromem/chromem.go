// Package chromem implements the memory.Backend contract on top of
// chromem-go, a pure Go embedded vector database. Collections are created
// lazily per scope key and, when the store is opened on a directory,
// persist across process restarts.
package chromem

import (
	"context"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/m-mizutani/goerr/v2"

	"github.com/memalpha/memalpha-go/logging"
	"github.com/memalpha/memalpha-go/memory"
)

// Store wraps a chromem-go database. It keeps a collection handle cache so
// repeated operations on the same scope skip the create-if-absent path.
type Store struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection
	mu          sync.RWMutex
}

// New creates an in-memory store. Contents are lost on process exit;
// intended for tests and ephemeral use.
func New() *Store {
	return &Store{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}
}

// NewPersistent creates a store backed by the given directory. Each
// collection is written to its own subdirectory and reloaded on open.
func NewPersistent(path string) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open chromem database",
			goerr.T(memory.TagStorage), goerr.V("path", path))
	}
	return &Store{
		db:          db,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

// getOrCreate returns the chromem collection for a scope key, creating it
// on first use. chromem's GetOrCreateCollection is idempotent, so two
// concurrent first writers converge on the same collection; the cache map
// uses the double-checked pattern to stay cheap on the read path.
func (s *Store) getOrCreate(col memory.CollectionRef) (*chromem.Collection, error) {
	s.mu.RLock()
	c, exists := s.collections[col.Name]
	s.mu.RUnlock()
	if exists {
		return c, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, exists := s.collections[col.Name]; exists {
		return c, nil
	}

	c, err := s.db.GetOrCreateCollection(col.Name, col.Metadata, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open collection",
			goerr.T(memory.TagStorage), goerr.V("collection", col.Name))
	}
	s.collections[col.Name] = c
	return c, nil
}

// Upsert writes an entry, replacing any existing document with the same ID.
func (s *Store) Upsert(ctx context.Context, col memory.CollectionRef, e memory.Entry) error {
	c, err := s.getOrCreate(col)
	if err != nil {
		return err
	}

	// Remove any previous version first; chromem has no update primitive.
	if _, err := c.GetByID(ctx, e.ID); err == nil {
		if err := c.Delete(ctx, nil, nil, e.ID); err != nil {
			return goerr.Wrap(err, "failed to replace document",
				goerr.V("collection", col.Name), goerr.V("id", e.ID))
		}
	}

	doc := chromem.Document{
		ID:        e.ID,
		Content:   e.Content,
		Embedding: e.Embedding,
		Metadata:  e.Fields,
	}
	if err := c.AddDocument(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to add document",
			goerr.V("collection", col.Name), goerr.V("id", e.ID))
	}

	logging.From(ctx).Debug("chromem upsert", "collection", col.Name, "id", e.ID)
	return nil
}

// Get returns the entry with the given ID, or ok=false if absent.
func (s *Store) Get(ctx context.Context, col memory.CollectionRef, id string) (memory.Entry, bool, error) {
	c, err := s.getOrCreate(col)
	if err != nil {
		return memory.Entry{}, false, err
	}

	// GetByID only fails when the document does not exist.
	doc, err := c.GetByID(ctx, id)
	if err != nil {
		return memory.Entry{}, false, nil
	}
	return entryFromDocument(doc), true, nil
}

// Delete removes the entry with the given ID and reports whether it existed.
func (s *Store) Delete(ctx context.Context, col memory.CollectionRef, id string) (bool, error) {
	c, err := s.getOrCreate(col)
	if err != nil {
		return false, err
	}

	if _, err := c.GetByID(ctx, id); err != nil {
		return false, nil
	}
	if err := c.Delete(ctx, nil, nil, id); err != nil {
		return false, goerr.Wrap(err, "failed to delete document",
			goerr.V("collection", col.Name), goerr.V("id", id))
	}
	return true, nil
}

// All returns every entry in the collection. chromem has no enumeration
// API, so this queries with a probe vector and nResults equal to the
// collection size; callers impose their own ordering.
func (s *Store) All(ctx context.Context, col memory.CollectionRef) ([]memory.Entry, error) {
	c, err := s.getOrCreate(col)
	if err != nil {
		return nil, err
	}

	n := c.Count()
	if n == 0 {
		return nil, nil
	}
	if col.Dimension <= 0 {
		return nil, goerr.New("collection dimension is required to enumerate",
			goerr.T(memory.TagStorage), goerr.V("collection", col.Name))
	}

	probe := make([]float32, col.Dimension)
	probe[0] = 1
	results, err := c.QueryEmbedding(ctx, probe, n, nil, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to enumerate collection",
			goerr.V("collection", col.Name))
	}

	entries := make([]memory.Entry, 0, len(results))
	for _, res := range results {
		entries = append(entries, entryFromResult(res))
	}
	return entries, nil
}

// Query returns up to n entries nearest to the embedding, most similar first.
func (s *Store) Query(ctx context.Context, col memory.CollectionRef, embedding []float32, n int) ([]memory.Hit, error) {
	c, err := s.getOrCreate(col)
	if err != nil {
		return nil, err
	}

	count := c.Count()
	if count == 0 {
		return nil, nil
	}
	// chromem rejects nResults larger than the collection size.
	if n > count {
		n = count
	}
	if n < 1 {
		n = 1
	}

	results, err := c.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query collection",
			goerr.V("collection", col.Name))
	}

	hits := make([]memory.Hit, 0, len(results))
	for _, res := range results {
		hits = append(hits, memory.Hit{
			Entry:      entryFromResult(res),
			Similarity: res.Similarity,
		})
	}
	return hits, nil
}

// Count returns the number of entries in the collection.
func (s *Store) Count(ctx context.Context, col memory.CollectionRef) (int, error) {
	c, err := s.getOrCreate(col)
	if err != nil {
		return 0, err
	}
	return c.Count(), nil
}

func entryFromDocument(doc chromem.Document) memory.Entry {
	return memory.Entry{
		ID:        doc.ID,
		Content:   doc.Content,
		Embedding: doc.Embedding,
		Fields:    doc.Metadata,
	}
}

func entryFromResult(res chromem.Result) memory.Entry {
	return memory.Entry{
		ID:        res.ID,
		Content:   res.Content,
		Embedding: res.Embedding,
		Fields:    res.Metadata,
	}
}
