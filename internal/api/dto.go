package api

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shengteng9/float-note-api/internal/model"
	"github.com/shengteng9/float-note-api/internal/processor"
	"github.com/shengteng9/float-note-api/internal/records"
	"github.com/shengteng9/float-note-api/internal/schema"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// RawInputDTO 创建记录时的单条原始输入
type RawInputDTO struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
}

func (d RawInputDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Type, validation.Required,
			validation.In(model.InputTypeText, model.InputTypeImage, model.InputTypeAudio, model.InputTypeDocument)),
		validation.Field(&d.Content,
			validation.Required.When(d.Type == model.InputTypeText).Error("text 输入缺少 content")),
		validation.Field(&d.FilePath,
			validation.Required.When(d.Type == model.InputTypeImage || d.Type == model.InputTypeAudio).
				Error("image / audio 输入缺少 file_path")),
	)
}

// CategoryDTO 创建、更新分类
type CategoryDTO struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	FieldSpecs  []model.FieldSpec `json:"field_specs"`
	IsActive    *bool             `json:"is_active"`
}

func (d CategoryDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&d.Description, validation.Length(0, 300)),
	)
}

// TagDTO 创建、更新标签
type TagDTO struct {
	Name        string `json:"name"`
	CategoryID  string `json:"category_id"`
	Description string `json:"description"`
}

func (d TagDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.Length(1, 20)),
		validation.Field(&d.CategoryID, validation.Required, validation.Match(uuidPattern)),
		validation.Field(&d.Description, validation.Length(0, 100)),
	)
}

// fail 按错误类型映射状态码，统一 JSON 错误体
func fail(c *fiber.Ctx, err error) error {
	var (
		unsupportedType *schema.UnsupportedFieldTypeError
		buildErr        *schema.BuildError
		extractionErr   *processor.ExtractionError
		parseErr        *processor.ParseError
		missingTags     *processor.MissingTagsError
		unsupportedIn   *processor.UnsupportedInputError
	)

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, records.ErrNoCategories),
		errors.As(err, &unsupportedType),
		errors.As(err, &buildErr),
		errors.As(err, &unsupportedIn):
		status = fiber.StatusBadRequest
	case errors.As(err, &extractionErr):
		// 重试耗尽的外部服务故障，可稍后重试
		status = fiber.StatusServiceUnavailable
	case errors.As(err, &parseErr), errors.As(err, &missingTags):
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
