package cache

import (
	"crypto/md5"
	"fmt"
	"net/url"
	"sort"
)

// RecordKey 单条记录的缓存键
func RecordKey(id string) string {
	return "a:record:" + id
}

// CategoryKey 单个分类的缓存键
func CategoryKey(id string) string {
	return "a:category:" + id
}

// RecordsListKey 记录列表的缓存键，由过滤条件推导
func RecordsListKey(filters map[string]any) string {
	return "a:records:list:" + filterHash(filters)
}

// CategoriesListKey 分类列表的缓存键
func CategoriesListKey(filters map[string]any) string {
	return "a:categories:list:" + filterHash(filters)
}

// filterHash 对非空过滤条件排序、urlencode 后取 md5 前 8 位，
// 等价的过滤条件集合必然落到同一个键上。
func filterHash(filters map[string]any) string {
	keys := make([]string, 0, len(filters))
	for k, v := range filters {
		if v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := url.Values{}
	for _, k := range keys {
		pairs.Set(k, fmt.Sprint(filters[k]))
	}

	sum := md5.Sum([]byte(pairs.Encode()))
	return fmt.Sprintf("%x", sum)[:8]
}
