package model

import (
	"time"

	"github.com/google/uuid"
)

// Tag 记录标签，用户手动创建或由提取管线自动创建。
// (user_id, name) 全局唯一，跨分类不允许重名，与原始建模保持一致。
type Tag struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name          string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_tags_user_name,priority:2" json:"name"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tags_user_name,priority:1" json:"user_id"`
	CategoryID    uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Description   string    `gorm:"type:varchar(100);default:''" json:"description"`
	SystemCreated bool      `gorm:"default:false" json:"system_created"` // 是否为系统创建标签
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Tag) TableName() string {
	return "tags"
}
