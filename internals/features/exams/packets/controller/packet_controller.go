package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"examportal_backend/internals/features/exams/packets/dto"
	"examportal_backend/internals/features/exams/packets/service"
	helper "examportal_backend/internals/helpers"
)

type PacketController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Generator *service.Generator
}

func NewPacketController(db *gorm.DB, lookupPageSize int) *PacketController {
	return &PacketController{
		DB:        db,
		Validator: helper.NewValidator(),
		Generator: service.NewGenerator(db, lookupPageSize),
	}
}

// POST /packets/generate
func (ctl *PacketController) GeneratePackets(c *fiber.Ctx) error {
	var req dto.GeneratePacketsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	resp, err := ctl.Generator.Generate(c.UserContext(), req)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// GET /packets?institution_code=&session_code=&course_code=
func (ctl *PacketController) ListPackets(c *fiber.Ctx) error {
	var q dto.ListPacketsQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid query")
	}
	q.InstitutionCode = strings.TrimSpace(q.InstitutionCode)
	q.SessionCode = strings.TrimSpace(q.SessionCode)
	if err := ctl.Validator.Struct(&q); err != nil {
		return helper.ValidationError(c, err)
	}

	paging := helper.ResolvePaging(c, 50, 500)
	rows, total, err := ctl.Generator.ListPackets(c.UserContext(), q.InstitutionCode, q.SessionCode, q.CourseCode, paging.Offset, paging.Limit)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildPagination(total, paging, len(rows)))
}
