package migrate

import (
	"log"

	"github.com/shengteng9/float-note-api/internal/db"
)

func InitExtensions() {
	sql := `
-- 扩展启用
CREATE EXTENSION IF NOT EXISTS pgcrypto;
    `

	if err := db.Instance().Exec(sql).Error; err != nil {
		log.Fatal("Extensions initialization failed:", err)
	}
	log.Println("Extensions initialized")
}
