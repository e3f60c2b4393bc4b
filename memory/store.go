package memory

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/memalpha/memalpha-go/logging"
)

// Flat field names persisted alongside each entry. Custom metadata is kept
// as a single JSON blob because typed values do not fit flat string fields.
const (
	fieldProjectID  = "project_id"
	fieldAgentID    = "agent_id"
	fieldCustomMeta = "custom_metadata"
	fieldProvider   = "embedding_provider"
	fieldModel      = "embedding_model"
	fieldDimension  = "embedding_dimension"
	fieldCreatedAt  = "created_at"
	fieldUpdatedAt  = "updated_at"
)

const (
	// DefaultSearchLimit is used when Search is called with limit <= 0.
	DefaultSearchLimit = 10

	// DefaultListLimit is used when List is called with limit <= 0.
	DefaultListLimit = 100
)

// Store provides scope-isolated CRUD and semantic search over memory
// records. One Store is bound to one embedding provider; the provider name
// is part of every collection key, so switching providers addresses a
// disjoint set of collections.
//
// The Store performs no background work and no retries: provider and
// storage failures surface to the caller tagged with TagProvider and
// TagStorage respectively.
type Store struct {
	backend  Backend
	provider Provider
	now      func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a Store over the given backend and embedding provider.
func NewStore(backend Backend, provider Provider, opts ...StoreOption) *Store {
	s := &Store{
		backend:  backend,
		provider: provider,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the embedding provider this store is bound to.
func (s *Store) Provider() Provider {
	return s.provider
}

func (s *Store) collection(scope Scope) CollectionRef {
	return CollectionRef{
		Name:      CollectionKey(scope.ProjectID, scope.AgentID, s.provider.Name()),
		Dimension: s.provider.Dimension(),
		Metadata: map[string]string{
			fieldProjectID: scope.ProjectID,
			fieldAgentID:   scope.AgentID,
			fieldProvider:  s.provider.Name(),
			fieldModel:     s.provider.Model(),
			fieldDimension: strconv.Itoa(s.provider.Dimension()),
		},
	}
}

// Store validates the content, embeds it, and persists a new record with a
// fresh ID. The scope's collection is created lazily on first write.
func (s *Store) Store(ctx context.Context, scope Scope, content string, md Metadata) (*Record, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}
	if md == nil {
		md = Metadata{}
	}
	metaJSON, err := md.JSON()
	if err != nil {
		return nil, err
	}

	embedding, err := s.provider.Embed(ctx, content)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed content", goerr.T(TagProvider))
	}

	now := s.now()
	rec := &Record{
		ID:        uuid.New().String(),
		Content:   content,
		Metadata:  md,
		CreatedAt: now,
		UpdatedAt: now,
	}

	col := s.collection(scope)
	entry := Entry{
		ID:        rec.ID,
		Content:   rec.Content,
		Embedding: embedding,
		Fields: map[string]string{
			fieldProjectID:  scope.ProjectID,
			fieldAgentID:    scope.AgentID,
			fieldCustomMeta: metaJSON,
			fieldProvider:   s.provider.Name(),
			fieldModel:      s.provider.Model(),
			fieldCreatedAt:  rec.CreatedAt.Format(time.RFC3339Nano),
			fieldUpdatedAt:  rec.UpdatedAt.Format(time.RFC3339Nano),
		},
	}
	if err := s.backend.Upsert(ctx, col, entry); err != nil {
		return nil, goerr.Wrap(err, "failed to persist memory", goerr.T(TagStorage))
	}

	logging.From(ctx).Debug("stored memory",
		"collection", col.Name, "memory_id", rec.ID)
	return rec, nil
}

// Get returns the record with the given ID within the scope. An unknown ID
// yields an error tagged TagNotFound; there is no cross-scope fallback.
func (s *Store) Get(ctx context.Context, scope Scope, id string) (*Record, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	entry, ok, err := s.backend.Get(ctx, s.collection(scope), id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read memory", goerr.T(TagStorage))
	}
	if !ok {
		return nil, goerr.New("memory not found",
			goerr.T(TagNotFound), goerr.V("memory_id", id))
	}
	return decodeEntry(entry)
}

// Update applies a partial update. Content changes trigger re-embedding;
// metadata-only changes do not. CreatedAt is preserved, UpdatedAt refreshed.
func (s *Store) Update(ctx context.Context, scope Scope, id string, upd Update) (*Record, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if upd.Content == nil && upd.Metadata == nil {
		return nil, goerr.New("update requires content or metadata", goerr.T(TagValidation))
	}
	if upd.Content != nil {
		if err := validateContent(*upd.Content); err != nil {
			return nil, err
		}
	}

	col := s.collection(scope)
	entry, ok, err := s.backend.Get(ctx, col, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read memory", goerr.T(TagStorage))
	}
	if !ok {
		return nil, goerr.New("memory not found",
			goerr.T(TagNotFound), goerr.V("memory_id", id))
	}
	existing, err := decodeEntry(entry)
	if err != nil {
		return nil, err
	}

	content := existing.Content
	embedding := entry.Embedding
	if upd.Content != nil && *upd.Content != existing.Content {
		content = *upd.Content
		embedding, err = s.provider.Embed(ctx, content)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to embed content", goerr.T(TagProvider))
		}
	}

	md := existing.Metadata
	if upd.Metadata != nil {
		md = upd.Metadata
	}
	metaJSON, err := md.JSON()
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ID:        id,
		Content:   content,
		Metadata:  md,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: s.now(),
	}
	updated := Entry{
		ID:        id,
		Content:   content,
		Embedding: embedding,
		Fields: map[string]string{
			fieldProjectID:  scope.ProjectID,
			fieldAgentID:    scope.AgentID,
			fieldCustomMeta: metaJSON,
			fieldProvider:   entry.Fields[fieldProvider],
			fieldModel:      entry.Fields[fieldModel],
			fieldCreatedAt:  rec.CreatedAt.Format(time.RFC3339Nano),
			fieldUpdatedAt:  rec.UpdatedAt.Format(time.RFC3339Nano),
		},
	}
	if err := s.backend.Upsert(ctx, col, updated); err != nil {
		return nil, goerr.Wrap(err, "failed to persist memory", goerr.T(TagStorage))
	}

	logging.From(ctx).Debug("updated memory",
		"collection", col.Name, "memory_id", id, "reembedded", upd.Content != nil)
	return rec, nil
}

// Delete removes the record and reports whether it existed. Deleting an
// unknown ID succeeds with existed=false.
func (s *Store) Delete(ctx context.Context, scope Scope, id string) (bool, error) {
	if err := scope.Validate(); err != nil {
		return false, err
	}

	existed, err := s.backend.Delete(ctx, s.collection(scope), id)
	if err != nil {
		return false, goerr.Wrap(err, "failed to delete memory", goerr.T(TagStorage))
	}
	return existed, nil
}

// List returns metadata-only summaries in creation order, plus the total
// number of records in the scope. Paging over a concurrently modified
// collection is best-effort.
func (s *Store) List(ctx context.Context, scope Scope, limit, offset int) ([]RecordSummary, int, error) {
	if err := scope.Validate(); err != nil {
		return nil, 0, err
	}
	if offset < 0 {
		return nil, 0, goerr.New("offset cannot be negative", goerr.T(TagValidation))
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	col := s.collection(scope)
	total, err := s.backend.Count(ctx, col)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to count memories", goerr.T(TagStorage))
	}
	if total == 0 {
		return []RecordSummary{}, 0, nil
	}

	entries, err := s.backend.All(ctx, col)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to list memories", goerr.T(TagStorage))
	}

	records := make([]*Record, 0, len(entries))
	for _, e := range entries {
		rec, err := decodeEntry(e)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})

	if offset >= len(records) {
		return []RecordSummary{}, total, nil
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}
	page := make([]RecordSummary, 0, end-offset)
	for _, rec := range records[offset:end] {
		page = append(page, rec.Summary())
	}
	return page, total, nil
}

// Search embeds the query with the scope's provider and returns up to limit
// records ranked by descending similarity, ties broken by most recent
// CreatedAt. Filters are applied before truncating to limit; if fewer
// records match, all matches are returned.
func (s *Store) Search(ctx context.Context, scope Scope, query string, limit int, filter Filter) ([]SearchResult, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := validateContent(query); err != nil {
		return nil, goerr.Wrap(err, "query cannot be empty", goerr.T(TagValidation))
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	col := s.collection(scope)
	total, err := s.backend.Count(ctx, col)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count memories", goerr.T(TagStorage))
	}
	if total == 0 {
		return []SearchResult{}, nil
	}

	embedding, err := s.provider.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query", goerr.T(TagProvider))
	}

	// The backing index only pre-filters on exact string equality, which
	// cannot express the typed operator set, so filtering happens after
	// retrieval. With a filter present every entry is a candidate.
	n := limit
	if len(filter) > 0 || n > total {
		n = total
	}
	hits, err := s.backend.Query(ctx, col, embedding, n)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query memories", goerr.T(TagStorage))
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		rec, err := decodeEntry(hit.Entry)
		if err != nil {
			return nil, err
		}
		if !filter.Matches(rec.Metadata) {
			continue
		}
		results = append(results, SearchResult{
			Record: rec,
			Score:  clampScore(float64(hit.Similarity)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Record.CreatedAt.After(results[j].Record.CreatedAt)
	})
	if len(results) > limit {
		results = results[:limit]
	}

	logging.From(ctx).Debug("searched memories",
		"collection", col.Name, "hits", len(results))
	return results, nil
}

func decodeEntry(e Entry) (*Record, error) {
	md, err := MetadataFromJSON([]byte(e.Fields[fieldCustomMeta]))
	if err != nil {
		return nil, goerr.Wrap(err, "corrupt stored metadata",
			goerr.T(TagStorage), goerr.V("memory_id", e.ID))
	}
	createdAt, err := time.Parse(time.RFC3339Nano, e.Fields[fieldCreatedAt])
	if err != nil {
		return nil, goerr.Wrap(err, "corrupt created_at timestamp",
			goerr.T(TagStorage), goerr.V("memory_id", e.ID))
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, e.Fields[fieldUpdatedAt])
	if err != nil {
		return nil, goerr.Wrap(err, "corrupt updated_at timestamp",
			goerr.T(TagStorage), goerr.V("memory_id", e.ID))
	}
	return &Record{
		ID:        e.ID,
		Content:   e.Content,
		Metadata:  md,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
