package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"examportal_backend/internals/configs"
	marksRoute "examportal_backend/internals/features/exams/marks/route"
	marksService "examportal_backend/internals/features/exams/marks/service"
	packetRoute "examportal_backend/internals/features/exams/packets/route"
	uploadBatchRoute "examportal_backend/internals/features/exams/upload_batches/route"
	"examportal_backend/internals/helpers/dbtime"
	"examportal_backend/internals/middlewares"
)

// ExamAdminRoutes: /api/a/exams/...
func ExamAdminRoutes(admin fiber.Router, db *gorm.DB, cfg configs.AppConfig) {
	exams := admin.Group("/exams")

	heavy := middlewares.HeavyOperationRateLimiter()
	exams.Use("/packets/generate", heavy)
	exams.Use("/marks/bulk-upload", heavy)

	packetRoute.PacketAdminRoutes(exams, db, cfg.LookupPageSize)
	marksRoute.MarksAdminRoutes(exams, db, marksService.Options{
		LookupPageSize: cfg.LookupPageSize,
		BatchCodeSalt:  cfg.BatchCodeSalt,
		Location:       dbtime.LoadLocation(cfg.Timezone),
	})
	uploadBatchRoute.UploadBatchAdminRoutes(exams, db, cfg.BatchCodeSalt)
}
