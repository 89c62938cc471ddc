package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"github.com/shengteng9/float-note-api/internal/api"
	"github.com/shengteng9/float-note-api/internal/cache"
	"github.com/shengteng9/float-note-api/internal/db"
	"github.com/shengteng9/float-note-api/internal/db/migrate"
	"github.com/shengteng9/float-note-api/internal/processor"
	"github.com/shengteng9/float-note-api/internal/queue"
	"github.com/shengteng9/float-note-api/internal/records"
	"github.com/shengteng9/float-note-api/internal/service"
)

func main() {
	if os.Getenv("GO_ENV") != "production" {
		// 测试环境下 .env
		if err := godotenv.Load(); err != nil {
			log.Fatal("Failed to load .env file")
		}

		if os.Getenv("USE_PPROF") == "1" {
			// 启动 Profiling 工具
			go func() {
				log.Println(http.ListenAndServe("localhost:6060", nil))
			}()
		}
	}

	// PostgreSQL
	db.InitPostgres(
		os.Getenv("POSTGRE_USER"),
		os.Getenv("POSTGRE_PASSWORD"),
		os.Getenv("POSTGRE_DB"),
		os.Getenv("POSTGRE_HOST"),
		os.Getenv("POSTGRE_PORT"),
	)

	// 数据库的迁移
	migrate.InitExtensions()
	migrate.DBMigrateAll()
	migrate.InitIndices()

	// fiber 实例
	app := fiber.New(fiber.Config{
		BodyLimit: 100 * 1024 * 1024, // 100 MB
	})

	// CORS 中间件
	app.Use(cors.New(cors.Config{
		AllowOrigins: os.Getenv("FRONTEND_URL"),
		AllowMethods: "*",
		AllowHeaders: "*",
	}))

	// 文件服务
	uploadRoot := os.Getenv("UPLOAD_ROOT")
	if uploadRoot == "" {
		uploadRoot = "./uploads"
	}
	originalFileService := service.NewLocalFileService(app, "/uploads/original", filepath.Join(uploadRoot, "original"))
	tmpFileService := service.NewLocalFileService(app, "/uploads/tmp", filepath.Join(uploadRoot, "tmp"))

	service.RegisterFileCleaner(tmpFileService, "", 180*time.Second, 180*time.Second)

	// 模型服务（OCR / 语音识别 / 对话补全共用一个 HTTP 服务）
	modelService := service.NewHTTPModelService(os.Getenv("MODEL_SERVICE_URL"))

	// Redis 缓存
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	cacheService := service.NewRedisCacheService(
		os.Getenv("REDIS_ADDR"),
		os.Getenv("REDIS_PASSWORD"),
		redisDB,
	)
	recordCache := cache.NewRecordCache(cacheService)

	// 业务服务
	categoryService := records.NewCategoryService(db.Instance(), recordCache)
	categoryService.SeedDefaultCategories(context.Background())
	tagService := records.NewTagService(db.Instance())

	pipeline := &processor.Pipeline{
		Normalizer: processor.NewNormalizer(originalFileService, modelService, modelService),
		Classifier: &processor.Classifier{Chat: modelService},
		Extractor:  &processor.Extractor{Chat: modelService},
		Reconciler: &processor.TagReconciler{Store: tagService},
		TagStore:   tagService,
	}

	recordService := records.NewRecordService(db.Instance(), pipeline, categoryService, recordCache)
	uploadService := service.NewUploadService(db.Instance(), originalFileService)

	// 路由
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Hello, FloatNote!")
	})

	// 鉴权交给网关，这里只解析用户标识
	userMiddleware := api.UserMiddleware()
	app.Use("/records", userMiddleware)
	app.Use("/categories", userMiddleware)
	app.Use("/tags", userMiddleware)
	app.Use("/upload", userMiddleware)

	api.RegisterRecordRoutes(app, recordService, uploadService)
	api.RegisterCategoryRoutes(app, categoryService)
	api.RegisterTagRoutes(app, tagService)
	api.RegisterUploadRoutes(app, uploadService)

	// 消息队列
	queue.ConsumeReprocessRecord(recordService, 3)

	// 端口监听
	log.Fatal(app.Listen(fmt.Sprintf(":%s", os.Getenv("BACKEND_PORT"))))
}
