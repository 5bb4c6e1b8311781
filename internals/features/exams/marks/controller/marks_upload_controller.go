package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"

	"examportal_backend/internals/features/exams/marks/dto"
	"examportal_backend/internals/features/exams/marks/service"
	helper "examportal_backend/internals/helpers"
)

type MarksUploadController struct {
	DB         *gorm.DB
	Validator  *validator.Validate
	Reconciler *service.Reconciler
}

func NewMarksUploadController(db *gorm.DB, opt service.Options) *MarksUploadController {
	return &MarksUploadController{
		DB:         db,
		Validator:  helper.NewValidator(),
		Reconciler: service.NewReconciler(db, opt),
	}
}

// POST /marks/bulk-upload
func (ctl *MarksUploadController) BulkUpload(c *fiber.Ctx) error {
	var req dto.BulkUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	// rows dibiarkan untyped sampai sini, lalu langsung dikonversi
	rawRows := gjson.GetBytes(c.Body(), "rows")
	rows, err := dto.ParseUploadRows(rawRows)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	cmd := req.ToCommand(rows, rawRows.Raw, helper.GetSubmitter(c, req.UploadedBy))
	resp, err := ctl.Reconciler.Upload(c.UserContext(), cmd)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

