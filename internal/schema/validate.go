package schema

import (
	"fmt"
	"time"
)

// ValidationError 提取结果与 schema 不匹配
type ValidationError struct {
	FieldName string
	Value     any
	Kind      Kind
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s: value %v does not satisfy kind %s", e.FieldName, e.Value, e.Kind)
}

// Validate 用 schema 校验一个解析出的字段表。
// 规则：
//   - 未声明的键被丢弃；
//   - 每个 schema 字段都出现在结果中，缺失时填默认值，无默认值填 nil；
//   - nil 值只允许出现在可空字段上；
//   - 其余值按 Kind 做类型检查，数值、时间做宽松转换。
// 返回规范化后的新字段表，不修改入参。
func (s *Schema) Validate(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(s.fields))

	for _, f := range s.fields {
		v, present := in[f.Name]
		if !present || v == nil {
			if !present && f.Default != nil {
				out[f.Name] = f.Default
				continue
			}
			if f.Nullable() || !f.Required {
				out[f.Name] = nil
				continue
			}
			return nil, &ValidationError{FieldName: f.Name, Value: nil, Kind: f.Kind}
		}

		norm, err := normalizeValue(v, f.Kind)
		if err != nil {
			return nil, &ValidationError{FieldName: f.Name, Value: v, Kind: f.Kind}
		}
		out[f.Name] = norm
	}

	return out, nil
}

func normalizeValue(v any, kind Kind) (any, error) {
	switch kind {
	case KindText, KindReference:
		switch t := v.(type) {
		case string:
			return t, nil
		case float64, bool:
			// 模型偶尔会把数字、布尔直接塞进文本字段
			return fmt.Sprintf("%v", t), nil
		}
		return nil, fmt.Errorf("not a string: %T", v)

	case KindNumber:
		switch t := v.(type) {
		case float64:
			return t, nil
		case int:
			return float64(t), nil
		case string:
			return coerceDefault(t, KindNumber)
		}
		return nil, fmt.Errorf("not a number: %T", v)

	case KindBool:
		if t, ok := v.(bool); ok {
			return t, nil
		}
		return nil, fmt.Errorf("not a boolean: %T", v)

	case KindTimestamp:
		switch t := v.(type) {
		case time.Time:
			return t.Format(TimeLayout), nil
		case string:
			// 时间以字符串形式存储，这里只检查可解析性
			if _, err := time.Parse(TimeLayout, t); err == nil {
				return t, nil
			}
			if _, err := time.Parse("2006-01-02", t); err == nil {
				return t, nil
			}
			return nil, fmt.Errorf("unparseable timestamp: %q", t)
		}
		return nil, fmt.Errorf("not a timestamp: %T", v)

	case KindSequence:
		if t, ok := v.([]any); ok {
			return t, nil
		}
		return nil, fmt.Errorf("not a sequence: %T", v)

	case KindMapping:
		if t, ok := v.(map[string]any); ok {
			return t, nil
		}
		return nil, fmt.Errorf("not a mapping: %T", v)

	case KindTags:
		switch t := v.(type) {
		case string:
			return t, nil
		case []any:
			return t, nil
		case []string:
			return t, nil
		}
		return nil, fmt.Errorf("not tags: %T", v)
	}

	return nil, fmt.Errorf("unknown kind %s", kind)
}
