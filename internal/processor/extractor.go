package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shengteng9/float-note-api/internal/model"
	"github.com/shengteng9/float-note-api/internal/schema"
	"github.com/shengteng9/float-note-api/internal/service"
)

// Extractor 单次调用模型，按 schema 提取结构化字段并产出标签
type Extractor struct {
	Chat service.ChatService
}

// ExtractionResult 通过校验的字段表和标签列表
type ExtractionResult struct {
	Content map[string]any
	Tags    []string
}

var kindToJSONType = map[schema.Kind]string{
	schema.KindText:      "string",
	schema.KindNumber:    "number",
	schema.KindBool:      "boolean",
	schema.KindTimestamp: "string",
	schema.KindSequence:  "array",
	schema.KindMapping:   "object",
	schema.KindReference: "string",
	schema.KindTags:      "string",
}

// Extract 提取结构化信息。只调用模型一次；解析或校验失败直接返回
// *ParseError，没有标签返回 *MissingTagsError。
func (e *Extractor) Extract(ctx context.Context, sch *schema.Schema, text string, existing []model.Tag) (*ExtractionResult, error) {
	fields := fieldTable(sch)

	system := fmt.Sprintf(`提取结构化信息并添加标签。
字段定义：%s
%s
输出格式：请输出JSON格式，包含所有字段。不存在的信息用null。
只需返回JSON，不要解释。`, mustJSON(fields), tagsPrompt(existing))

	raw, err := e.Chat.CompleteStructured(ctx, system, "输入："+text, fields)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	content, err := sch.Validate(raw)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	tags := splitTags(content["tags"])
	if len(tags) == 0 {
		return nil, &MissingTagsError{}
	}
	content["tags"] = tags

	return &ExtractionResult{Content: content, Tags: tags}, nil
}

// fieldTable 压缩成字段名 -> {type, description} 的表
func fieldTable(sch *schema.Schema) map[string]map[string]string {
	fields := make(map[string]map[string]string, len(sch.Fields()))
	for _, f := range sch.Fields() {
		fields[f.Name] = map[string]string{
			"type":        kindToJSONType[f.Kind],
			"description": f.Description,
		}
	}
	return fields
}

func tagsPrompt(existing []model.Tag) string {
	if len(existing) == 0 {
		return "生成1个合适的新标签。"
	}

	names := make([]string, len(existing))
	for i, t := range existing {
		names[i] = fmt.Sprintf("%s(%s)", t.Name, t.Description)
	}
	return fmt.Sprintf("可用标签：%s。选1-2个相关标签,如果可用标签都不相关,则生成1个新标签。", strings.Join(names, ","))
}

// splitTags 把模型给的标签值整理成非空的名称列表。
// 字符串按逗号切分；列表逐项取字符串；项先去空白再过滤空值。
func splitTags(v any) []string {
	var parts []string

	switch t := v.(type) {
	case string:
		parts = strings.Split(t, ",")
	case []string:
		parts = t
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	default:
		return nil
	}

	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
