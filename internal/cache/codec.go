package cache

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/shengteng9/float-note-api/internal/model"
)

// 缓存里只存可移植的 JSON 字符串，富类型（uuid、时间）降级成字符串形式，
// 解码时再恢复。任何解码失败都被上层当作未命中处理。

// EncodeRecord 把记录序列化成缓存载荷
func EncodeRecord(r *model.Record) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeRecord 从缓存载荷还原记录。
// 先恢复通用结构，再把主键恢复成原生 uuid；恢复不了就报错。
func DecodeRecord(payload string) (*model.Record, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("malformed cache payload: %w", err)
	}

	idRaw, ok := raw["id"]
	if !ok {
		return nil, fmt.Errorf("cache payload has no id")
	}
	var idStr string
	if err := json.Unmarshal(idRaw, &idStr); err != nil {
		return nil, fmt.Errorf("cache payload id is not a string: %w", err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("cache payload id is not a uuid: %w", err)
	}

	var r model.Record
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("incompatible cache payload shape: %w", err)
	}
	r.ID = id

	return &r, nil
}

// EncodeList 序列化一页记录列表
func EncodeList(p *ListPage) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeList 还原一页记录列表
func DecodeList(payload string) (*ListPage, error) {
	var p ListPage
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("malformed list payload: %w", err)
	}
	return &p, nil
}

// ListPage 列表缓存载荷：总数加当前页
type ListPage struct {
	Total int64          `json:"total"`
	Items []model.Record `json:"items"`
}

// EncodeCategory 序列化单个分类
func EncodeCategory(c *model.Category) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeCategory 还原单个分类
func DecodeCategory(payload string) (*model.Category, error) {
	var c model.Category
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return nil, fmt.Errorf("malformed category payload: %w", err)
	}
	if c.ID == uuid.Nil {
		return nil, fmt.Errorf("category payload has no id")
	}
	return &c, nil
}

// EncodeCategories 序列化分类列表
func EncodeCategories(categories []model.Category) (string, error) {
	b, err := json.Marshal(categories)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeCategories 还原分类列表
func DecodeCategories(payload string) ([]model.Category, error) {
	var categories []model.Category
	if err := json.Unmarshal([]byte(payload), &categories); err != nil {
		return nil, fmt.Errorf("malformed categories payload: %w", err)
	}
	return categories, nil
}
