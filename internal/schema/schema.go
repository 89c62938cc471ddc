package schema

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shengteng9/float-note-api/internal/model"
)

// TimeLayout 默认值与提取结果中时间字符串的固定格式
const TimeLayout = "2006-01-02 15:04:05"

// Kind 字段值的语义类型标签
type Kind string

const (
	KindText      Kind = "text"
	KindNumber    Kind = "number"    // 浮点数
	KindBool      Kind = "boolean"
	KindTimestamp Kind = "timestamp"
	KindSequence  Kind = "sequence"  // 有序列表
	KindMapping   Kind = "mapping"
	KindReference Kind = "reference" // 引用其他实体，按字符串 id 处理
	KindTags      Kind = "tags"      // 字符串或字符串列表
)

var kindByFieldType = map[string]Kind{
	model.FieldTypeString:    KindText,
	model.FieldTypeNumber:    KindNumber,
	model.FieldTypeBoolean:   KindBool,
	model.FieldTypeDate:      KindTimestamp,
	model.FieldTypeArray:     KindSequence,
	model.FieldTypeObject:    KindMapping,
	model.FieldTypeReference: KindReference,
}

// Field 编译后的单个字段约束
type Field struct {
	Name        string
	Kind        Kind
	Required    bool
	Default     any // 已按 Kind 转换；nil 表示无默认值
	Description string
}

// Nullable 报告该字段是否允许为空。
// 默认值为 nil 的字段一律可空，即使声明了 required。
func (f Field) Nullable() bool {
	return f.Default == nil
}

// Schema 由一个分类的动态字段合成的校验契约，字段保持声明顺序，
// 末尾固定追加 raw_text 和 tags 两个字段。
type Schema struct {
	fields []Field
	index  map[string]int
}

// UnsupportedFieldTypeError 字段声明了不支持的类型
type UnsupportedFieldTypeError struct {
	FieldType string
}

func (e *UnsupportedFieldTypeError) Error() string {
	return fmt.Sprintf("unsupported field type: %s", e.FieldType)
}

// BuildError 默认值与声明类型不匹配
type BuildError struct {
	FieldName string
	Default   any
	FieldType string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("field %s: default %v does not match type %s", e.FieldName, e.Default, e.FieldType)
}

// Build 把分类的动态字段编译成校验 schema。
// 纯函数，无副作用，可按分类 id 缓存。
func Build(specs []model.FieldSpec) (*Schema, error) {
	s := &Schema{
		fields: make([]Field, 0, len(specs)+2),
		index:  make(map[string]int, len(specs)+2),
	}

	for _, spec := range specs {
		kind, ok := kindByFieldType[spec.FieldType]
		if !ok {
			return nil, &UnsupportedFieldTypeError{FieldType: spec.FieldType}
		}

		def, err := coerceDefault(spec.Default, kind)
		if err != nil {
			return nil, &BuildError{FieldName: spec.Name, Default: spec.Default, FieldType: spec.FieldType}
		}

		s.append(Field{
			Name:        spec.Name,
			Kind:        kind,
			Required:    spec.Required,
			Default:     def,
			Description: spec.Description,
		})
	}

	// 固定字段
	s.append(Field{Name: "raw_text", Kind: KindText, Required: true, Description: "原始文本内容"})
	s.append(Field{Name: "tags", Kind: KindTags, Description: "相关的标签"})

	return s, nil
}

func (s *Schema) append(f Field) {
	s.index[f.Name] = len(s.fields)
	s.fields = append(s.fields, f)
}

// Fields 按声明顺序返回全部字段
func (s *Schema) Fields() []Field {
	return s.fields
}

// Lookup 按名称查找字段
func (s *Schema) Lookup(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// coerceDefault 把默认值转换到目标类型，转换失败返回错误
func coerceDefault(def any, kind Kind) (any, error) {
	if def == nil {
		return nil, nil
	}

	switch kind {
	case KindNumber:
		switch v := def.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			return strconv.ParseFloat(v, 64)
		}
		return nil, fmt.Errorf("cannot coerce %T to number", def)

	case KindTimestamp:
		switch v := def.(type) {
		case time.Time:
			return v, nil
		case string:
			return time.Parse(TimeLayout, v)
		}
		return nil, fmt.Errorf("cannot coerce %T to timestamp", def)

	case KindBool:
		if v, ok := def.(bool); ok {
			return v, nil
		}
		return nil, fmt.Errorf("cannot coerce %T to boolean", def)

	case KindText, KindReference:
		switch v := def.(type) {
		case string:
			return v, nil
		case float64, int, int64, bool:
			return fmt.Sprintf("%v", v), nil
		}
		return nil, fmt.Errorf("cannot coerce %T to string", def)

	case KindSequence:
		if v, ok := def.([]any); ok {
			return v, nil
		}
		return nil, fmt.Errorf("cannot coerce %T to sequence", def)

	case KindMapping:
		if v, ok := def.(map[string]any); ok {
			return v, nil
		}
		return nil, fmt.Errorf("cannot coerce %T to mapping", def)
	}

	return nil, fmt.Errorf("unknown kind %s", kind)
}
