package processor

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/shengteng9/float-note-api/internal/model"
	"github.com/shengteng9/float-note-api/internal/schema"
)

// TypeUnknown 无法处理时的记录类型
const TypeUnknown = "unknown"

// CategoryBundle 一次请求可见的全部分类及其合成 schema
type CategoryBundle struct {
	Schemas     map[string]*schema.Schema // 分类名 -> schema
	Names       []string                  // 分类名，保持查询顺序
	Description string                    // 给分类器的候选描述
	NameToID    map[string]uuid.UUID      // 分类名 -> 分类 id
}

// Result 管线输出
type Result struct {
	Type       string
	CategoryID *uuid.UUID
	Content    map[string]any
	RawText    string
	Tags       []string
}

// Pipeline 记录处理管线：归一化 -> 分类 -> 提取 -> 标签对账。
// 各阶段无跨请求状态，多个请求可各跑一条管线实例并行。
type Pipeline struct {
	Normalizer *Normalizer
	Classifier *Classifier
	Extractor  *Extractor
	Reconciler *TagReconciler
	TagStore   TagStore
}

// ProcessInputs 同步跑完整条管线。
// 输入全空时直接返回 unknown 结果，不触碰任何外部服务。
func (p *Pipeline) ProcessInputs(ctx context.Context, rawInputs []model.RawInput, bundle *CategoryBundle, userID uuid.UUID) (*Result, error) {
	combined, err := p.Normalizer.Normalize(ctx, rawInputs)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(combined) == "" {
		return &Result{
			Type:    TypeUnknown,
			Content: map[string]any{"error": "输入内容为空"},
			RawText: "",
		}, nil
	}

	recordType := p.Classifier.Classify(ctx, combined, bundle)

	categoryID, ok := bundle.NameToID[recordType]
	if !ok {
		return nil, fmt.Errorf("分类 %s 不在用户的分类中", recordType)
	}

	sch, ok := bundle.Schemas[recordType]
	if !ok {
		return nil, fmt.Errorf("分类 %s 没有可用的 schema", recordType)
	}

	existing, err := p.TagStore.ListByCategory(ctx, userID, categoryID)
	if err != nil {
		// 查不到已有标签不阻断提取，按无标签继续
		log.Println("查询已有标签失败:", err)
		existing = nil
	}

	extracted, err := p.Extractor.Extract(ctx, sch, combined, existing)
	if err != nil {
		return nil, err
	}

	tags := p.Reconciler.Reconcile(ctx, extracted.Tags, existing, userID, categoryID)
	extracted.Content["tags"] = tags

	return &Result{
		Type:       recordType,
		CategoryID: &categoryID,
		Content:    extracted.Content,
		RawText:    combined,
		Tags:       tags,
	}, nil
}
