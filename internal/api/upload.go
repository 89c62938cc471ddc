package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shengteng9/float-note-api/internal/service"
)

// RegisterUploadRoutes 注册上传路由
func RegisterUploadRoutes(app fiber.Router, uploadService *service.UploadService) {
	app.Post("/upload", UploadHandler(uploadService))
}

// UploadHandler 多文件上传，按扩展名识别 image / audio / document
func UploadHandler(uploadService *service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No files uploaded"})
		}

		files := form.File["files"]
		if len(files) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No files uploaded"})
		}

		uploaded, err := uploadService.UploadFiles(files, UserID(c))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		results := make([]fiber.Map, 0, len(uploaded))
		for _, f := range uploaded {
			results = append(results, fiber.Map{
				"id":       f.ID,
				"fileName": f.FileName,
				"filePath": f.FilePath,
				"type":     f.FileType,
				"size":     f.FileSize,
			})
		}

		return c.JSON(fiber.Map{
			"message":   "files uploaded successfully",
			"fileCount": len(results),
			"files":     results,
		})
	}
}
