package model

import (
	"time"

	"github.com/google/uuid"
)

// UploadedFile 上传文件登记表
type UploadedFile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	FileName  string    `gorm:"type:text" json:"file_name"` // 原文件名
	FilePath  string    `gorm:"type:text" json:"file_path"` // 相对上传根目录的存储路径
	FileType  string    `gorm:"type:text" json:"file_type"` // image / audio / document
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

func (UploadedFile) TableName() string {
	return "uploaded_files"
}
