package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shengteng9/float-note-api/internal/model"
	"github.com/shengteng9/float-note-api/internal/service"
)

type memCache struct {
	data    map[string]string
	getErr  error
	setErr  error
	gets    int
	sets    int
	deletes int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]string)}
}

func (m *memCache) Get(ctx context.Context, key string) (string, error) {
	m.gets++
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", service.ErrCacheMiss
	}
	return v, nil
}

func (m *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	m.deletes++
	delete(m.data, key)
	return nil
}

func sampleRecord(id uuid.UUID) *model.Record {
	return &model.Record{
		ID:     id,
		UserID: uuid.New(),
		Title:  "星巴克消费",
		Type:   "bill",
	}
}

func TestGetRecordPopulatesOnMiss(t *testing.T) {
	mem := newMemCache()
	rc := NewRecordCache(mem)

	id := uuid.New()
	fetches := 0
	fetch := func(context.Context) (*model.Record, error) {
		fetches++
		return sampleRecord(id), nil
	}

	got, err := rc.GetRecord(context.Background(), id, fetch)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, 1, fetches)
	assert.Equal(t, 1, mem.sets)

	// 第二次读直接命中，不再回源
	got, err = rc.GetRecord(context.Background(), id, fetch)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "星巴克消费", got.Title)
	assert.Equal(t, 1, fetches)
}

func TestGetRecordDecodeFailureIsMiss(t *testing.T) {
	mem := newMemCache()
	rc := NewRecordCache(mem)

	id := uuid.New()
	mem.data[RecordKey(id.String())] = "not-json"

	fetches := 0
	got, err := rc.GetRecord(context.Background(), id, func(context.Context) (*model.Record, error) {
		fetches++
		return sampleRecord(id), nil
	})
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, 1, fetches)
}

func TestGetRecordCacheErrorsAbsorbed(t *testing.T) {
	mem := newMemCache()
	mem.getErr = errors.New("redis down")
	mem.setErr = errors.New("redis down")
	rc := NewRecordCache(mem)

	id := uuid.New()
	got, err := rc.GetRecord(context.Background(), id, func(context.Context) (*model.Record, error) {
		return sampleRecord(id), nil
	})
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestGetRecordFetchErrorPropagates(t *testing.T) {
	rc := NewRecordCache(newMemCache())

	wantErr := errors.New("record gone")
	_, err := rc.GetRecord(context.Background(), uuid.New(), func(context.Context) (*model.Record, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestGetRecordListSharedByEquivalentFilters(t *testing.T) {
	mem := newMemCache()
	rc := NewRecordCache(mem)

	fetches := 0
	fetch := func(context.Context) (*ListPage, error) {
		fetches++
		return &ListPage{Total: 1, Items: []model.Record{*sampleRecord(uuid.New())}}, nil
	}

	filtersA := map[string]any{"type": "bill", "page": 1, "category_id": nil}
	filtersB := map[string]any{"page": 1, "type": "bill"}

	p, err := rc.GetRecordList(context.Background(), filtersA, fetch)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Total)

	// nil 条件被忽略，键顺序无关，两组条件共享一个缓存条目
	p, err = rc.GetRecordList(context.Background(), filtersB, fetch)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Total)
	assert.Equal(t, 1, fetches)
}

func TestInvalidateRecordForcesRefetch(t *testing.T) {
	mem := newMemCache()
	rc := NewRecordCache(mem)

	id := uuid.New()
	fetches := 0
	fetch := func(context.Context) (*model.Record, error) {
		fetches++
		return sampleRecord(id), nil
	}

	_, err := rc.GetRecord(context.Background(), id, fetch)
	require.NoError(t, err)

	rc.InvalidateRecord(context.Background(), id)
	assert.Equal(t, 1, mem.deletes)

	_, err = rc.GetRecord(context.Background(), id, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
}

func TestGetCategoryPopulatesOnMiss(t *testing.T) {
	mem := newMemCache()
	rc := NewRecordCache(mem)

	id := uuid.New()
	fetches := 0
	fetch := func(context.Context) (*model.Category, error) {
		fetches++
		return &model.Category{ID: id, Name: "bill", IsDefault: true}, nil
	}

	got, err := rc.GetCategory(context.Background(), id, fetch)
	require.NoError(t, err)
	assert.Equal(t, "bill", got.Name)

	got, err = rc.GetCategory(context.Background(), id, fetch)
	require.NoError(t, err)
	assert.Equal(t, "bill", got.Name)
	assert.True(t, got.IsDefault)
	assert.Equal(t, 1, fetches)

	rc.InvalidateCategory(context.Background(), id)
	_, err = rc.GetCategory(context.Background(), id, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
}

func TestGetCategoryListCached(t *testing.T) {
	mem := newMemCache()
	rc := NewRecordCache(mem)

	fetches := 0
	fetch := func(context.Context) ([]model.Category, error) {
		fetches++
		return []model.Category{{ID: uuid.New(), Name: "note"}}, nil
	}

	filters := map[string]any{"user_id": "u1", "include_inactive": false}
	for i := 0; i < 2; i++ {
		categories, err := rc.GetCategoryList(context.Background(), filters, fetch)
		require.NoError(t, err)
		require.Len(t, categories, 1)
		assert.Equal(t, "note", categories[0].Name)
	}
	assert.Equal(t, 1, fetches)
}

func TestFilterHashStability(t *testing.T) {
	a := RecordsListKey(map[string]any{"user_id": "u1", "page": 2})
	b := RecordsListKey(map[string]any{"page": 2, "user_id": "u1"})
	c := RecordsListKey(map[string]any{"page": 3, "user_id": "u1"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "a:records:list:")
}

func TestCodecRoundTrip(t *testing.T) {
	r := sampleRecord(uuid.New())
	r.Tags = pq.StringArray{"咖啡", "美食"}

	payload, err := EncodeRecord(r)
	require.NoError(t, err)

	got, err := DecodeRecord(payload)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, r.Title, got.Title)
	assert.Equal(t, r.Tags, got.Tags)
}

func TestDecodeRecordRejectsBadPayloads(t *testing.T) {
	cases := []string{
		"not-json",
		`{"title":"no id"}`,
		`{"id":42}`,
		`{"id":"not-a-uuid"}`,
	}
	for _, payload := range cases {
		_, err := DecodeRecord(payload)
		assert.Error(t, err, payload)
	}
}
