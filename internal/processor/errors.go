package processor

import "fmt"

// 提取失败的输入种类
const (
	ExtractionKindImage = "IMAGE"
	ExtractionKindAudio = "AUDIO"
)

// ExtractionError 图片或音频经重试后仍然无法转成文本
type ExtractionError struct {
	Kind string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s extraction failed: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ParseError 模型输出无法解析或未通过 schema 校验。
// 管线绝不退回半填充的猜测结果，直接失败。
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("extraction parse failed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingTagsError 模型没有给记录打任何标签。
// 标签是硬性后置条件，后续的标签对账依赖它。
type MissingTagsError struct{}

func (e *MissingTagsError) Error() string {
	return "model returned no tags for the record"
}

// UnsupportedInputError 不支持的原始输入类型（如 document）
type UnsupportedInputError struct {
	InputType string
}

func (e *UnsupportedInputError) Error() string {
	return fmt.Sprintf("unsupported raw input type: %s", e.InputType)
}
