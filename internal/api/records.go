package api

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/shengteng9/float-note-api/internal/model"
	"github.com/shengteng9/float-note-api/internal/queue"
	"github.com/shengteng9/float-note-api/internal/records"
	"github.com/shengteng9/float-note-api/internal/service"
)

// RegisterRecordRoutes 注册记录相关路由
func RegisterRecordRoutes(app fiber.Router, recordService *records.RecordService, uploadService *service.UploadService) {
	app.Post("/records", CreateRecordHandler(recordService, uploadService))
	app.Get("/records/list", ListRecordsHandler(recordService))
	app.Get("/records/:id", GetRecordHandler(recordService))
	app.Patch("/records/:id", UpdateRecordHandler(recordService))
	app.Delete("/records/:id", DeleteRecordHandler(recordService))
	app.Post("/records/:id/reprocess", ReprocessRecordHandler(recordService))
}

// CreateRecordHandler 创建记录。
// multipart 表单：title、category_id、raw_inputs（JSON 字符串）、files（可多个）。
// 上传的文件按类型追加为 image / audio 原始输入。
func CreateRecordHandler(recordService *records.RecordService, uploadService *service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		title := c.FormValue("title")

		var categoryID *uuid.UUID
		if v := c.FormValue("category_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category_id"})
			}
			categoryID = &id
		}

		// form-data 里 raw_inputs 是 JSON 字符串
		var dtos []RawInputDTO
		if v := c.FormValue("raw_inputs"); v != "" {
			if err := json.Unmarshal([]byte(v), &dtos); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "raw_inputs is not a JSON array"})
			}
		}

		rawInputs := make([]model.RawInput, 0, len(dtos))
		now := time.Now()
		for _, d := range dtos {
			if err := d.Validate(); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			rawInputs = append(rawInputs, model.RawInput{
				Type:       d.Type,
				Content:    d.Content,
				FilePath:   d.FilePath,
				FileSize:   d.FileSize,
				UploadedAt: now,
			})
		}

		// 上传文件追加为原始输入
		if form, err := c.MultipartForm(); err == nil && form != nil {
			if files := form.File["files"]; len(files) > 0 {
				uploaded, err := uploadService.UploadFiles(files, userID)
				if err != nil {
					return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
				}
				for _, uf := range uploaded {
					rawInputs = append(rawInputs, model.RawInput{
						Type:       uf.FileType,
						FilePath:   uf.FilePath,
						FileSize:   uf.FileSize,
						UploadedAt: now,
					})
				}
			}
		}

		record, err := recordService.Create(c.UserContext(), userID, title, rawInputs, categoryID)
		if err != nil {
			return fail(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "记录创建成功",
			"record":  record,
		})
	}
}

// ListRecordsHandler 过滤分页查询记录
func ListRecordsHandler(recordService *records.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)

		f := records.ListFilters{
			Page:     queryInt(c, "page", 1),
			PageSize: queryInt(c, "pageSize", 20),
			Type:     c.Query("type"),
		}

		if v := c.Query("category_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category_id"})
			}
			f.CategoryID = &id
		}
		if v := c.Query("is_processed"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid is_processed"})
			}
			f.IsProcessed = &b
		}
		if v := c.Query("from"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid from"})
			}
			f.From = &t
		}
		if v := c.Query("to"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid to"})
			}
			f.To = &t
		}

		page, err := recordService.List(c.UserContext(), userID, f)
		if err != nil {
			return fail(c, err)
		}

		return c.JSON(fiber.Map{
			"page":     f.Page,
			"pageSize": f.PageSize,
			"total":    page.Total,
			"records":  page.Items,
		})
	}
}

// GetRecordHandler 单条读取，cache-aside
func GetRecordHandler(recordService *records.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid record id"})
		}

		record, err := recordService.GetByID(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		if record.UserID != UserID(c) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "record not found"})
		}

		return c.JSON(record)
	}
}

// UpdateRecordHandler 只允许修改标题
func UpdateRecordHandler(recordService *records.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid record id"})
		}

		var body struct {
			Title string `json:"title"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		record, err := recordService.UpdateTitle(c.UserContext(), UserID(c), id, body.Title)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(record)
	}
}

// DeleteRecordHandler 删除记录
func DeleteRecordHandler(recordService *records.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid record id"})
		}

		if err := recordService.Delete(c.UserContext(), UserID(c), id); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "记录已删除"})
	}
}

// ReprocessRecordHandler 复位后重新入队跑管线
func ReprocessRecordHandler(recordService *records.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid record id"})
		}

		if err := recordService.MarkUnprocessed(c.UserContext(), UserID(c), id); err != nil {
			return fail(c, err)
		}

		queue.ProduceReprocessRecord(id)
		log.Println("Record queued for reprocessing:", id)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "记录已进入重处理队列"})
	}
}

func queryInt(c *fiber.Ctx, name string, def int) int {
	if val := c.Query(name); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
		log.Printf("invalid %s parameter: %q", name, c.Query(name))
	}
	return def
}
