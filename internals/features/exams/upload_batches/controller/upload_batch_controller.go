package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	marksService "examportal_backend/internals/features/exams/marks/service"
	"examportal_backend/internals/features/exams/upload_batches/dto"
	"examportal_backend/internals/features/exams/upload_batches/service"
	helper "examportal_backend/internals/helpers"
)

type UploadBatchController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Tracker   *service.Tracker
}

func NewUploadBatchController(db *gorm.DB, batchCodeSalt string) *UploadBatchController {
	return &UploadBatchController{
		DB:        db,
		Validator: helper.NewValidator(),
		Tracker:   service.NewTracker(db, batchCodeSalt),
	}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

func optUUID(s string) *uuid.UUID {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	id := uuid.MustParse(strings.TrimSpace(s))
	return &id
}

// GET /upload-batches?institution_id=&session_id=&program_id=&course_id=&status=
func (ctl *UploadBatchController) List(c *fiber.Ctx) error {
	var q dto.ListUploadBatchesQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid query")
	}
	if err := ctl.Validator.Struct(&q); err != nil {
		return helper.ValidationError(c, err)
	}

	paging := helper.ResolvePaging(c, 20, 200)
	rows, total, err := ctl.Tracker.List(c.UserContext(), service.ListFilter{
		InstitutionID: uuid.MustParse(strings.TrimSpace(q.InstitutionID)),
		SessionID:     optUUID(q.SessionID),
		ProgramID:     optUUID(q.ProgramID),
		CourseID:      optUUID(q.CourseID),
		Status:        q.Status,
	}, paging.Offset, paging.Limit)
	if err != nil {
		log.Errorw("❌ list upload batches failed", "err", err)
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToSummaries(rows), helper.BuildPagination(total, paging, len(rows)))
}

// GET /upload-batches/:id
func (ctl *UploadBatchController) GetByID(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := ctl.Tracker.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToDetail(*m))
}

// DELETE /upload-batches/:id/marks
// Hanya nilai Draft sumber "Bulk Upload" dari batch ini yang dihapus.
func (ctl *UploadBatchController) DeleteMarks(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if _, err := ctl.Tracker.Get(c.UserContext(), id); err != nil {
		return helper.FromFiberError(c, err)
	}

	n, err := marksService.DeleteBatchMarks(c.UserContext(), ctl.DB, id)
	if err != nil {
		log.Errorw("❌ delete batch marks failed", "batch_id", id, "err", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete uploaded marks")
	}
	log.Infow("🗑️ batch marks deleted", "batch_id", id, "deleted", n)
	return helper.JsonDeleted(c, "Uploaded draft marks deleted", dto.DeleteBatchMarksResponse{BatchID: id, Deleted: n})
}
