package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	ubCtl "examportal_backend/internals/features/exams/upload_batches/controller"
)

//   - /upload-batches/...
func UploadBatchAdminRoutes(r fiber.Router, db *gorm.DB, batchCodeSalt string) {
	ctl := ubCtl.NewUploadBatchController(db, batchCodeSalt)

	grp := r.Group("/upload-batches")
	grp.Get("/", ctl.List)
	grp.Get("/:id", ctl.GetByID)
	grp.Delete("/:id/marks", ctl.DeleteMarks)
}
