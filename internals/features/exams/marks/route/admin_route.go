package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	marksCtl "examportal_backend/internals/features/exams/marks/controller"
	"examportal_backend/internals/features/exams/marks/service"
)

//   - /marks/...
func MarksAdminRoutes(r fiber.Router, db *gorm.DB, opt service.Options) {
	ctl := marksCtl.NewMarksUploadController(db, opt)

	grp := r.Group("/marks")
	grp.Post("/bulk-upload", ctl.BulkUpload)
}
