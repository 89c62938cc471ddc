package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// 动态字段支持的类型
const (
	FieldTypeString    = "string"
	FieldTypeNumber    = "number"
	FieldTypeBoolean   = "boolean"
	FieldTypeDate      = "date"
	FieldTypeArray     = "array"
	FieldTypeObject    = "object"
	FieldTypeReference = "reference"
)

// FieldSpec 分类的动态字段定义，内嵌在 Category 中
type FieldSpec struct {
	Name        string   `json:"name"`                  // 字段名
	FieldType   string   `json:"field_type"`            // 字段类型
	Required    bool     `json:"required"`              // 是否必填
	Default     any      `json:"default,omitempty"`     // 默认值
	RefModel    string   `json:"ref_model,omitempty"`   // 引用的 model
	Description string   `json:"description,omitempty"` // 字段描述
	EnumValues  []string `json:"enum_values,omitempty"` // 枚举值
}

// Category 用户自定义分类
type Category struct {
	ID          uuid.UUID                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string                         `gorm:"type:text;not null;index" json:"name"`
	Description string                         `gorm:"type:varchar(300);default:''" json:"description"`
	UserID      uuid.UUID                      `gorm:"type:uuid;index" json:"user_id"`
	FieldSpecs  datatypes.JSONSlice[FieldSpec] `gorm:"type:jsonb" json:"field_specs"`
	IsDefault   bool                           `gorm:"default:false" json:"is_default"` // 系统自带分类
	IsActive    bool                           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time                      `json:"created_at"`
	UpdatedAt   time.Time                      `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}
