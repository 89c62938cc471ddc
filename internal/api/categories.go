package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/shengteng9/float-note-api/internal/model"
	"github.com/shengteng9/float-note-api/internal/records"
)

// RegisterCategoryRoutes 注册分类相关路由
func RegisterCategoryRoutes(app fiber.Router, categoryService *records.CategoryService) {
	app.Get("/categories/list", ListCategoriesHandler(categoryService))
	app.Post("/categories", CreateCategoryHandler(categoryService))
	app.Get("/categories/:id", GetCategoryHandler(categoryService))
	app.Patch("/categories/:id", UpdateCategoryHandler(categoryService))
	app.Delete("/categories/:id", DeleteCategoryHandler(categoryService))
}

func ListCategoriesHandler(categoryService *records.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		includeInactive := c.Query("include_inactive") == "true"

		categories, err := categoryService.List(c.UserContext(), UserID(c), includeInactive)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"count":      len(categories),
			"categories": categories,
		})
	}
}

func CreateCategoryHandler(categoryService *records.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var dto CategoryDTO
		if err := c.BodyParser(&dto); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := dto.Validate(); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		category := &model.Category{
			Name:        dto.Name,
			Description: dto.Description,
			UserID:      UserID(c),
			FieldSpecs:  datatypes.NewJSONSlice(dto.FieldSpecs),
			IsActive:    true,
		}
		if err := categoryService.Create(c.UserContext(), category); err != nil {
			return fail(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(category)
	}
}

func GetCategoryHandler(categoryService *records.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category id"})
		}

		category, err := categoryService.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		if !category.IsDefault && category.UserID != UserID(c) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "category not found"})
		}
		return c.JSON(category)
	}
}

func UpdateCategoryHandler(categoryService *records.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category id"})
		}

		var dto CategoryDTO
		if err := c.BodyParser(&dto); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := dto.Validate(); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		updates := map[string]any{
			"name":        dto.Name,
			"description": dto.Description,
		}
		if dto.FieldSpecs != nil {
			updates["field_specs"] = datatypes.NewJSONSlice(dto.FieldSpecs)
		}
		if dto.IsActive != nil {
			updates["is_active"] = *dto.IsActive
		}

		category, err := categoryService.Update(c.UserContext(), UserID(c), id, updates)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(category)
	}
}

func DeleteCategoryHandler(categoryService *records.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category id"})
		}

		if err := categoryService.Delete(c.UserContext(), UserID(c), id); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "分类已删除"})
	}
}
