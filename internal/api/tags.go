package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/shengteng9/float-note-api/internal/model"
	"github.com/shengteng9/float-note-api/internal/records"
)

// RegisterTagRoutes 注册标签相关路由
func RegisterTagRoutes(app fiber.Router, tagService *records.TagService) {
	app.Get("/tags/list", ListTagsHandler(tagService))
	app.Post("/tags", CreateTagHandler(tagService))
	app.Patch("/tags/:id", UpdateTagHandler(tagService))
	app.Delete("/tags/:id", DeleteTagHandler(tagService))
}

func ListTagsHandler(tagService *records.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categoryID *uuid.UUID
		if v := c.Query("category_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category_id"})
			}
			categoryID = &id
		}

		tags, err := tagService.List(c.UserContext(), UserID(c), categoryID, c.Query("name"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"count": len(tags),
			"tags":  tags,
		})
	}
}

func CreateTagHandler(tagService *records.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var dto TagDTO
		if err := c.BodyParser(&dto); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := dto.Validate(); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		categoryID, err := uuid.Parse(dto.CategoryID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category_id"})
		}

		tag := &model.Tag{
			Name:        dto.Name,
			UserID:      UserID(c),
			CategoryID:  categoryID,
			Description: dto.Description,
		}
		if err := tagService.Create(c.UserContext(), tag); err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(tag)
	}
}

func UpdateTagHandler(tagService *records.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid tag id"})
		}

		var body struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		updates := map[string]any{}
		if body.Name != nil {
			updates["name"] = *body.Name
		}
		if body.Description != nil {
			updates["description"] = *body.Description
		}

		tag, err := tagService.Update(c.UserContext(), UserID(c), id, updates)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(tag)
	}
}

func DeleteTagHandler(tagService *records.TagService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid tag id"})
		}

		if err := tagService.Delete(c.UserContext(), UserID(c), id); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "标签已删除"})
	}
}
