package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phonetonote/paperweight/internal/core/domain"
)

func TestNewRecordStore(t *testing.T) {
	store := NewRecordStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.records)
	assert.Zero(t, store.Len())
}

func TestRecordStore_InsertAndGet(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	record := &domain.PaperRecord{
		URL:           "https://example.com/a.pdf",
		Status:        domain.StatusProcessed,
		Blob:          []byte("%PDF"),
		PaperMetadata: domain.PaperMetadata{Title: "A", Authors: []string{"X"}},
	}
	require.NoError(t, store.Insert(ctx, record))

	got, err := store.Get(ctx, record.URL)
	require.NoError(t, err)
	assert.Equal(t, *record, *got)

	got.Blob[0] = 'X'
	got.Authors[0] = "Y"
	again, err := store.Get(ctx, record.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), again.Blob)
	assert.Equal(t, []string{"X"}, again.Authors)
}

func TestRecordStore_Insert_Duplicate(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &domain.PaperRecord{URL: "u", Status: domain.StatusProcessed}))
	err := store.Insert(ctx, &domain.PaperRecord{URL: "u", Status: domain.StatusMalformed})
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)

	got, err := store.Get(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessed, got.Status)
}

func TestRecordStore_Insert_Invalid(t *testing.T) {
	store := NewRecordStore()
	assert.ErrorIs(t, store.Insert(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(context.Background(), &domain.PaperRecord{}), domain.ErrInvalidInput)
}

func TestRecordStore_Get_NotFound(t *testing.T) {
	_, err := NewRecordStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordStore_ExistsScanAllAndCounts(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &domain.PaperRecord{URL: "b", Status: domain.StatusProcessed}))
	require.NoError(t, store.Insert(ctx, &domain.PaperRecord{URL: "a", Status: domain.StatusUnreachable}))
	require.NoError(t, store.Insert(ctx, &domain.PaperRecord{URL: "c", Status: domain.StatusProcessed}))

	exists, err := store.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "z")
	require.NoError(t, err)
	assert.False(t, exists)

	records, err := store.ScanAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "a", records[0].URL)
	assert.Equal(t, "c", records[2].URL)

	counts, err := store.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.StatusProcessed])
	assert.Equal(t, 1, counts[domain.StatusUnreachable])
}

func TestRecordStore_ConcurrentInsertSameURL(t *testing.T) {
	store := NewRecordStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.Insert(ctx, &domain.PaperRecord{URL: "same", Status: domain.StatusProcessed}) == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, store.Len())
}
