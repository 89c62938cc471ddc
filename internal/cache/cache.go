package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/shengteng9/float-note-api/internal/model"
	"github.com/shengteng9/float-note-api/internal/service"
)

// 缓存过期时间
const (
	RecordTTL  = 10 * time.Minute // 单条记录
	DefaultTTL = 5 * time.Minute  // 其他条目
)

// RecordCache 记录读取的 cache-aside 层。
// 缓存永远不是权威数据：读写错误、载荷解码错误一律按未命中降级，
// 回源结果才是返回给调用方的东西，缓存决不能让请求失败。
type RecordCache struct {
	Cache service.CacheService

	sf singleflight.Group // 同键并发未命中只回源一次
}

func NewRecordCache(cache service.CacheService) *RecordCache {
	return &RecordCache{Cache: cache}
}

// GetRecord 先读缓存，未命中或解码失败时回源并回填
func (rc *RecordCache) GetRecord(ctx context.Context, id uuid.UUID, fetch func(context.Context) (*model.Record, error)) (*model.Record, error) {
	key := RecordKey(id.String())

	if payload, ok := rc.safeGet(ctx, key); ok {
		if r, err := DecodeRecord(payload); err == nil {
			return r, nil
		} else {
			// 解码失败按未命中处理，继续回源
			log.Printf("[Cache] decode failed for %s, treating as miss: %v", key, err)
		}
	}

	v, err, _ := rc.sf.Do(key, func() (any, error) {
		r, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		if payload, err := EncodeRecord(r); err == nil {
			rc.safeSet(ctx, key, payload, RecordTTL)
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*model.Record), nil
}

// GetRecordList 过滤条件等价的列表请求共享一个缓存条目
func (rc *RecordCache) GetRecordList(ctx context.Context, filters map[string]any, fetch func(context.Context) (*ListPage, error)) (*ListPage, error) {
	key := RecordsListKey(filters)

	if payload, ok := rc.safeGet(ctx, key); ok {
		if p, err := DecodeList(payload); err == nil {
			return p, nil
		} else {
			log.Printf("[Cache] decode failed for %s, treating as miss: %v", key, err)
		}
	}

	v, err, _ := rc.sf.Do(key, func() (any, error) {
		p, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		if payload, err := EncodeList(p); err == nil {
			rc.safeSet(ctx, key, payload, DefaultTTL)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*ListPage), nil
}

// GetCategory 单个分类的 cache-aside 读取，读法与记录一致
func (rc *RecordCache) GetCategory(ctx context.Context, id uuid.UUID, fetch func(context.Context) (*model.Category, error)) (*model.Category, error) {
	key := CategoryKey(id.String())

	if payload, ok := rc.safeGet(ctx, key); ok {
		if c, err := DecodeCategory(payload); err == nil {
			return c, nil
		} else {
			log.Printf("[Cache] decode failed for %s, treating as miss: %v", key, err)
		}
	}

	v, err, _ := rc.sf.Do(key, func() (any, error) {
		c, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		if payload, err := EncodeCategory(c); err == nil {
			rc.safeSet(ctx, key, payload, DefaultTTL)
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*model.Category), nil
}

// GetCategoryList 分类列表缓存，只靠 TTL 过期，不做按键失效
func (rc *RecordCache) GetCategoryList(ctx context.Context, filters map[string]any, fetch func(context.Context) ([]model.Category, error)) ([]model.Category, error) {
	key := CategoriesListKey(filters)

	if payload, ok := rc.safeGet(ctx, key); ok {
		if categories, err := DecodeCategories(payload); err == nil {
			return categories, nil
		} else {
			log.Printf("[Cache] decode failed for %s, treating as miss: %v", key, err)
		}
	}

	v, err, _ := rc.sf.Do(key, func() (any, error) {
		categories, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		if payload, err := EncodeCategories(categories); err == nil {
			rc.safeSet(ctx, key, payload, DefaultTTL)
		}
		return categories, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]model.Category), nil
}

// InvalidateCategory 分类写入后删点键
func (rc *RecordCache) InvalidateCategory(ctx context.Context, id uuid.UUID) {
	key := CategoryKey(id.String())
	if err := rc.Cache.Delete(ctx, key); err != nil {
		log.Printf("[Cache] 删除失败 %s: %v", key, err)
	}
}

// InvalidateRecord 记录写入后主动删键，保证下一次读必然回源。
// 尽力而为，删不掉只告警。
func (rc *RecordCache) InvalidateRecord(ctx context.Context, id uuid.UUID) {
	key := RecordKey(id.String())
	if err := rc.Cache.Delete(ctx, key); err != nil {
		log.Printf("[Cache] 删除失败 %s: %v", key, err)
	}
}

func (rc *RecordCache) safeGet(ctx context.Context, key string) (string, bool) {
	payload, err := rc.Cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, service.ErrCacheMiss) {
			log.Printf("[Cache] 获取失败 %s: %v", key, err)
		}
		return "", false
	}
	return payload, true
}

func (rc *RecordCache) safeSet(ctx context.Context, key, payload string, ttl time.Duration) {
	if err := rc.Cache.Set(ctx, key, payload, ttl); err != nil {
		log.Printf("[Cache] 设置失败 %s: %v", key, err)
	}
}
