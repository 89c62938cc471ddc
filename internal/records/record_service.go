package records

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/shengteng9/float-note-api/internal/cache"
	"github.com/shengteng9/float-note-api/internal/model"
	"github.com/shengteng9/float-note-api/internal/processor"
)

// ListFilters 记录列表的过滤条件，nil / 零值表示不过滤
type ListFilters struct {
	CategoryID  *uuid.UUID
	Type        string
	IsProcessed *bool
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
}

// RecordService 记录服务：创建走管线，读取走 cache-aside
type RecordService struct {
	DB         *gorm.DB
	Pipeline   *processor.Pipeline
	Categories *CategoryService
	Cache      *cache.RecordCache
}

func NewRecordService(db *gorm.DB, pipeline *processor.Pipeline, categories *CategoryService, rc *cache.RecordCache) *RecordService {
	return &RecordService{DB: db, Pipeline: pipeline, Categories: categories, Cache: rc}
}

// Create 跑完整条提取管线后落库。
// 管线致命错误直接向上抛，不会持久化半成品记录。
func (s *RecordService) Create(ctx context.Context, userID uuid.UUID, title string, rawInputs []model.RawInput, categoryID *uuid.UUID) (*model.Record, error) {
	bundle, err := s.Categories.GetSchemaBundle(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	result, err := s.Pipeline.ProcessInputs(ctx, rawInputs, bundle, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &model.Record{
		UserID:      userID,
		Title:       title,
		CategoryID:  result.CategoryID,
		Type:        result.Type,
		RawInputs:   datatypes.NewJSONSlice(rawInputs),
		Content:     datatypes.JSONMap(result.Content),
		Tags:        pq.StringArray(result.Tags),
		IsProcessed: true,
		ProcessedAt: &now,
	}

	if err := s.DB.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}

	s.Cache.InvalidateRecord(ctx, record.ID)
	return record, nil
}

// GetByID cache-aside 读取单条记录
func (s *RecordService) GetByID(ctx context.Context, id uuid.UUID) (*model.Record, error) {
	return s.Cache.GetRecord(ctx, id, func(ctx context.Context) (*model.Record, error) {
		var r model.Record
		if err := s.DB.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &r, nil
	})
}

// List 过滤分页查询，等价过滤条件共享缓存条目
func (s *RecordService) List(ctx context.Context, userID uuid.UUID, f ListFilters) (*cache.ListPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}

	filters := map[string]any{
		"user_id":   userID.String(),
		"page":      f.Page,
		"page_size": f.PageSize,
	}
	if f.CategoryID != nil {
		filters["category_id"] = f.CategoryID.String()
	}
	if f.Type != "" {
		filters["type"] = f.Type
	}
	if f.IsProcessed != nil {
		filters["is_processed"] = *f.IsProcessed
	}
	if f.From != nil {
		filters["from"] = f.From.Unix()
	}
	if f.To != nil {
		filters["to"] = f.To.Unix()
	}

	return s.Cache.GetRecordList(ctx, filters, func(ctx context.Context) (*cache.ListPage, error) {
		q := s.DB.WithContext(ctx).Model(&model.Record{}).Where("user_id = ?", userID)
		if f.CategoryID != nil {
			q = q.Where("category_id = ?", *f.CategoryID)
		}
		if f.Type != "" {
			q = q.Where("type = ?", f.Type)
		}
		if f.IsProcessed != nil {
			q = q.Where("is_processed = ?", *f.IsProcessed)
		}
		if f.From != nil {
			q = q.Where("created_at >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where("created_at <= ?", *f.To)
		}

		var total int64
		if err := q.Count(&total).Error; err != nil {
			return nil, err
		}

		var items []model.Record
		err := q.Order("created_at DESC").
			Limit(f.PageSize).
			Offset((f.Page - 1) * f.PageSize).
			Find(&items).Error
		if err != nil {
			return nil, err
		}

		return &cache.ListPage{Total: total, Items: items}, nil
	})
}

// UpdateTitle 只允许改标题，内容由管线维护
func (s *RecordService) UpdateTitle(ctx context.Context, userID, id uuid.UUID, title string) (*model.Record, error) {
	var r model.Record
	if err := s.DB.WithContext(ctx).First(&r, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Model(&r).Update("title", title).Error; err != nil {
		return nil, err
	}

	s.Cache.InvalidateRecord(ctx, id)
	return &r, nil
}

// Delete 删除记录并清缓存
func (s *RecordService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Delete(&model.Record{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	s.Cache.InvalidateRecord(ctx, id)
	return nil
}

// MarkUnprocessed 重处理的第一步：复位 is_processed 并清缓存
func (s *RecordService) MarkUnprocessed(ctx context.Context, userID, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&model.Record{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_processed": false, "processed_at": nil})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	s.Cache.InvalidateRecord(ctx, id)
	return nil
}

// Reprocess 对已复位的记录重跑管线。
// 管线失败时记录保持未处理状态，绝不把半完成的结果标成已处理。
func (s *RecordService) Reprocess(ctx context.Context, id uuid.UUID) error {
	var r model.Record
	if err := s.DB.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return err
	}

	bundle, err := s.Categories.GetSchemaBundle(ctx, r.UserID, nil)
	if err != nil {
		return err
	}

	result, err := s.Pipeline.ProcessInputs(ctx, r.RawInputs, bundle, r.UserID)
	if err != nil {
		return err
	}

	now := time.Now()
	err = s.DB.WithContext(ctx).Model(&r).Updates(map[string]any{
		"category_id":  result.CategoryID,
		"type":         result.Type,
		"content":      datatypes.JSONMap(result.Content),
		"tags":         pq.StringArray(result.Tags),
		"is_processed": true,
		"processed_at": &now,
	}).Error
	if err != nil {
		return err
	}

	s.Cache.InvalidateRecord(ctx, id)
	return nil
}
