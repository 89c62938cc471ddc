package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shengteng9/float-note-api/internal/cache"
	"github.com/shengteng9/float-note-api/internal/model"
	"github.com/shengteng9/float-note-api/internal/processor"
	"github.com/shengteng9/float-note-api/internal/schema"
)

// ErrNoCategories 用户没有任何可见分类
var ErrNoCategories = errors.New("用户没有分类")

// CategoryService 分类管理与 schema 装配
type CategoryService struct {
	DB    *gorm.DB
	Cache *cache.RecordCache
}

func NewCategoryService(db *gorm.DB, rc *cache.RecordCache) *CategoryService {
	return &CategoryService{DB: db, Cache: rc}
}

// GetSchemaBundle 取用户可见的分类（自己的或系统默认的），
// 逐个合成 schema，打包给管线。categoryID 非空时只取这一个分类。
func (s *CategoryService) GetSchemaBundle(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID) (*processor.CategoryBundle, error) {
	q := s.DB.WithContext(ctx).
		Where("(user_id = ? OR is_default = true) AND is_active = true", userID)
	if categoryID != nil {
		q = q.Where("id = ?", *categoryID)
	}

	var categories []model.Category
	if err := q.Order("created_at").Find(&categories).Error; err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}

	bundle := &processor.CategoryBundle{
		Schemas:  make(map[string]*schema.Schema, len(categories)),
		Names:    make([]string, 0, len(categories)),
		NameToID: make(map[string]uuid.UUID, len(categories)),
	}

	var descriptions []string
	for _, c := range categories {
		sch, err := schema.Build(c.FieldSpecs)
		if err != nil {
			return nil, fmt.Errorf("分类 %s 的字段定义无效: %w", c.Name, err)
		}

		// 用户维度下分类不重名
		bundle.Schemas[c.Name] = sch
		bundle.Names = append(bundle.Names, c.Name)
		bundle.NameToID[c.Name] = c.ID
		descriptions = append(descriptions, fmt.Sprintf("类型名称:%s,类型描述:%s。", c.Name, c.Description))
	}
	bundle.Description = strings.Join(descriptions, "")

	return bundle, nil
}

// Create 新建分类，先用 schema 合成验证字段定义合法
func (s *CategoryService) Create(ctx context.Context, c *model.Category) error {
	if _, err := schema.Build(c.FieldSpecs); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Create(c).Error
}

// List 列出用户可见的分类，等价过滤条件共享缓存条目
func (s *CategoryService) List(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]model.Category, error) {
	filters := map[string]any{
		"user_id":          userID.String(),
		"include_inactive": includeInactive,
	}

	return s.Cache.GetCategoryList(ctx, filters, func(ctx context.Context) ([]model.Category, error) {
		q := s.DB.WithContext(ctx).Where("user_id = ? OR is_default = true", userID)
		if !includeInactive {
			q = q.Where("is_active = true")
		}

		var categories []model.Category
		err := q.Order("created_at").Find(&categories).Error
		return categories, err
	})
}

// Get cache-aside 读取单个分类
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	return s.Cache.GetCategory(ctx, id, func(ctx context.Context) (*model.Category, error) {
		var c model.Category
		if err := s.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &c, nil
	})
}

// Update 更新用户自己的分类，系统默认分类不可改
func (s *CategoryService) Update(ctx context.Context, userID, id uuid.UUID, updates map[string]any) (*model.Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsDefault {
		return nil, errors.New("系统默认分类不可修改")
	}
	if c.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}

	if err := s.DB.WithContext(ctx).Model(c).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.Cache.InvalidateCategory(ctx, id)
	return c, nil
}

// Delete 删除用户自己的分类。
// 引用它的记录不级联，分类引用悬空是已知边界情况。
func (s *CategoryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.IsDefault {
		return errors.New("系统默认分类不可删除")
	}
	if c.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	if err := s.DB.WithContext(ctx).Delete(c).Error; err != nil {
		return err
	}

	s.Cache.InvalidateCategory(ctx, id)
	return nil
}
