package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// 原始输入类型
const (
	InputTypeText     = "text"
	InputTypeImage    = "image"
	InputTypeAudio    = "audio"
	InputTypeDocument = "document" // 暂不支持
)

// RawInput 一条原子的多模态输入，内嵌在 Record 中
type RawInput struct {
	Type       string    `json:"type"`
	Content    string    `json:"content,omitempty"`   // text 类型的文本内容
	FilePath   string    `json:"file_path,omitempty"` // image / audio 的文件路径
	FileSize   int64     `json:"file_size,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Record 一条已分类、已提取字段的用户记录
type Record struct {
	ID          uuid.UUID                     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID                     `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string                        `gorm:"type:text" json:"title,omitempty"` // 后台、测试时区分数据用
	CategoryID  *uuid.UUID                    `gorm:"type:uuid;index" json:"category_id"`
	Type        string                        `gorm:"type:text;default:'';index" json:"type"` // 分类名，由分类器决定
	RawInputs   datatypes.JSONSlice[RawInput] `gorm:"type:jsonb" json:"raw_inputs"`
	Content     datatypes.JSONMap             `gorm:"type:jsonb" json:"content"`
	Tags        pq.StringArray                `gorm:"type:text[]" json:"tags"` // content.tags 的冗余列，用于过滤
	IsProcessed bool                          `gorm:"default:false;index" json:"is_processed"`
	ProcessedAt *time.Time                    `json:"processed_at"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
}

func (Record) TableName() string {
	return "records"
}
