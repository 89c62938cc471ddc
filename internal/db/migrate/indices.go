package migrate

import (
	"log"

	"github.com/shengteng9/float-note-api/internal/db"
)

func InitIndices() {
	sql := `
-- 记录列表查询走 (user_id, created_at DESC)
CREATE INDEX IF NOT EXISTS idx_records_user_created
ON records (user_id, created_at DESC);

-- 标签过滤走 GIN 索引
CREATE INDEX IF NOT EXISTS idx_records_tags
ON records USING gin(tags);
    `

	if err := db.Instance().Exec(sql).Error; err != nil {
		log.Fatal("Index initialization failed:", err)
	}
	log.Println("Indices initialized")
}
