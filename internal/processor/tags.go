package processor

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shengteng9/float-note-api/internal/model"
)

// TagStore 标签持久化能力，由存储层注入
type TagStore interface {
	// ListByCategory 返回 (用户, 分类) 下已有的标签
	ListByCategory(ctx context.Context, userID, categoryID uuid.UUID) ([]model.Tag, error)

	// BulkCreate 一次插入多个标签
	BulkCreate(ctx context.Context, tags []model.Tag) error
}

// TagReconciler 把提取出的标签名与已有标签对账，差集落库。
// 尽力而为：任何失败都不影响记录创建本身。
type TagReconciler struct {
	Store TagStore
}

// Reconcile 返回的标签列表始终与入参一致；副作用是给不存在的
// 标签名建新 Tag（system_created）。并发创建撞唯一约束时只告警。
func (r *TagReconciler) Reconcile(ctx context.Context, names []string, existing []model.Tag, userID, categoryID uuid.UUID) []string {
	known := make(map[string]bool, len(existing))
	for _, t := range existing {
		known[t.Name] = true // 大小写敏感，与唯一索引一致
	}

	var toCreate []model.Tag
	for _, name := range names {
		if known[name] {
			continue
		}
		toCreate = append(toCreate, model.Tag{
			Name:          name,
			UserID:        userID,
			CategoryID:    categoryID,
			Description:   "暂无描述,按语义理解",
			SystemCreated: true,
		})
	}

	if len(toCreate) == 0 {
		return names
	}

	if err := r.Store.BulkCreate(ctx, toCreate); err != nil {
		if isDuplicateErr(err) {
			log.Println("创建系统标签撞唯一约束，按并发创建忽略:", err)
		} else {
			log.Println("创建系统标签失败:", err)
		}
	}

	return names
}

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "23505")
}
