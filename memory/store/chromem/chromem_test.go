package chromem_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/memalpha/memalpha-go/memory"
	"github.com/memalpha/memalpha-go/memory/store/chromem"
)

func testCollection(name string) memory.CollectionRef {
	return memory.CollectionRef{
		Name:      name,
		Dimension: 3,
		Metadata:  map[string]string{"embedding_provider": "test"},
	}
}

func testEntry(id string, embedding []float32) memory.Entry {
	return memory.Entry{
		ID:        id,
		Content:   "content of " + id,
		Embedding: embedding,
		Fields:    map[string]string{"custom_metadata": "{}"},
	}
}

func TestUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := chromem.New()
	col := testCollection("upsert-get")

	gt.NoError(t, store.Upsert(ctx, col, testEntry("m1", []float32{1, 0, 0})))

	entry, ok, err := store.Get(ctx, col, "m1")
	gt.NoError(t, err)
	gt.True(t, ok)
	gt.Equal(t, entry.ID, "m1")
	gt.Equal(t, entry.Content, "content of m1")
	gt.Equal(t, entry.Fields["custom_metadata"], "{}")

	_, ok, err = store.Get(ctx, col, "absent")
	gt.NoError(t, err)
	gt.False(t, ok)
}

func TestUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := chromem.New()
	col := testCollection("upsert-replace")

	gt.NoError(t, store.Upsert(ctx, col, testEntry("m1", []float32{1, 0, 0})))

	replaced := testEntry("m1", []float32{0, 1, 0})
	replaced.Content = "replacement"
	gt.NoError(t, store.Upsert(ctx, col, replaced))

	entry, ok, err := store.Get(ctx, col, "m1")
	gt.NoError(t, err)
	gt.True(t, ok)
	gt.Equal(t, entry.Content, "replacement")

	count, err := store.Count(ctx, col)
	gt.NoError(t, err)
	gt.Equal(t, count, 1)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := chromem.New()
	col := testCollection("delete")

	gt.NoError(t, store.Upsert(ctx, col, testEntry("m1", []float32{1, 0, 0})))

	existed, err := store.Delete(ctx, col, "m1")
	gt.NoError(t, err)
	gt.True(t, existed)

	existed, err = store.Delete(ctx, col, "m1")
	gt.NoError(t, err)
	gt.False(t, existed)
}

func TestAll(t *testing.T) {
	ctx := context.Background()
	store := chromem.New()
	col := testCollection("all")

	entries, err := store.All(ctx, col)
	gt.NoError(t, err)
	gt.A(t, entries).Length(0)

	gt.NoError(t, store.Upsert(ctx, col, testEntry("m1", []float32{1, 0, 0})))
	gt.NoError(t, store.Upsert(ctx, col, testEntry("m2", []float32{0, 1, 0})))
	gt.NoError(t, store.Upsert(ctx, col, testEntry("m3", []float32{0, 0, 1})))

	entries, err = store.All(ctx, col)
	gt.NoError(t, err)
	gt.A(t, entries).Length(3)

	ids := map[string]bool{}
	for _, entry := range entries {
		ids[entry.ID] = true
	}
	gt.True(t, ids["m1"] && ids["m2"] && ids["m3"])
}

func TestQueryRanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	store := chromem.New()
	col := testCollection("query")

	gt.NoError(t, store.Upsert(ctx, col, testEntry("x", []float32{1, 0, 0})))
	gt.NoError(t, store.Upsert(ctx, col, testEntry("y", []float32{0, 1, 0})))

	hits, err := store.Query(ctx, col, []float32{1, 0, 0}, 2)
	gt.NoError(t, err)
	gt.A(t, hits).Length(2)
	gt.Equal(t, hits[0].Entry.ID, "x")
	gt.True(t, hits[0].Similarity > hits[1].Similarity)
}

func TestQueryClampsLimit(t *testing.T) {
	ctx := context.Background()
	store := chromem.New()
	col := testCollection("clamp")

	hits, err := store.Query(ctx, col, []float32{1, 0, 0}, 5)
	gt.NoError(t, err)
	gt.A(t, hits).Length(0)

	gt.NoError(t, store.Upsert(ctx, col, testEntry("m1", []float32{1, 0, 0})))

	hits, err = store.Query(ctx, col, []float32{1, 0, 0}, 5)
	gt.NoError(t, err)
	gt.A(t, hits).Length(1)
}

func TestConcurrentFirstWrite(t *testing.T) {
	ctx := context.Background()
	store := chromem.New()
	col := testCollection("concurrent")

	const writers = 16
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("m%d", i)
			errs[i] = store.Upsert(ctx, col, testEntry(id, []float32{1, 0, 0}))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		gt.NoError(t, err)
	}
	count, err := store.Count(ctx, col)
	gt.NoError(t, err)
	gt.Equal(t, count, writers)
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	col := testCollection("persist")

	store, err := chromem.NewPersistent(dir)
	gt.NoError(t, err)
	gt.NoError(t, store.Upsert(ctx, col, testEntry("m1", []float32{1, 0, 0})))

	// A fresh store over the same directory sees the data.
	reopened, err := chromem.NewPersistent(dir)
	gt.NoError(t, err)

	entry, ok, err := reopened.Get(ctx, col, "m1")
	gt.NoError(t, err)
	gt.True(t, ok)
	gt.Equal(t, entry.Content, "content of m1")
}
