package migrate

import (
	"log"

	"github.com/shengteng9/float-note-api/internal/db"
	"github.com/shengteng9/float-note-api/internal/model"
)

// DBMigrateAll 用于迁移所有表结构
func DBMigrateAll() {
	log.Println("Starting table migrations")

	if err := db.Instance().AutoMigrate(
		&model.Category{},
		&model.Record{},
		&model.Tag{},
		&model.UploadedFile{},
	); err != nil {
		log.Fatal("Table migration failed:", err)
	}

	log.Println("Table migrations completed")
}
