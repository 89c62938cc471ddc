package records

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shengteng9/float-note-api/internal/model"
)

// TagService 标签持久化，同时实现管线需要的 processor.TagStore
type TagService struct {
	DB *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{DB: db}
}

// ListByCategory 返回 (用户, 分类) 下的所有标签
func (s *TagService) ListByCategory(ctx context.Context, userID, categoryID uuid.UUID) ([]model.Tag, error) {
	var tags []model.Tag
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Order("created_at").
		Find(&tags).Error
	return tags, err
}

// BulkCreate 一次插入多个标签，唯一约束冲突原样向上抛
func (s *TagService) BulkCreate(ctx context.Context, tags []model.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Create(&tags).Error
}

// List 按可选的分类、名称过滤用户的标签
func (s *TagService) List(ctx context.Context, userID uuid.UUID, categoryID *uuid.UUID, name string) ([]model.Tag, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	if name != "" {
		q = q.Where("name = ?", name)
	}

	var tags []model.Tag
	err := q.Order("created_at").Find(&tags).Error
	return tags, err
}

// Create 用户手动创建标签
func (s *TagService) Create(ctx context.Context, tag *model.Tag) error {
	return s.DB.WithContext(ctx).Create(tag).Error
}

// Update 更新用户自己的标签
func (s *TagService) Update(ctx context.Context, userID, id uuid.UUID, updates map[string]any) (*model.Tag, error) {
	var tag model.Tag
	if err := s.DB.WithContext(ctx).First(&tag, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&tag).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Delete 删除用户自己的标签
func (s *TagService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.DB.WithContext(ctx).
		Delete(&model.Tag{}, "id = ? AND user_id = ?", id, userID).Error
}
