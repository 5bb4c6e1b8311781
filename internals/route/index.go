package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"examportal_backend/internals/configs"
	submitterMiddleware "examportal_backend/internals/middlewares/auth"
	routeDetails "examportal_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg configs.AppConfig) {
	startTime = time.Now()

	log.Info("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, db)

	// ===================== ADMIN (exam office) =====================
	// JWT di sini hanya untuk atribusi pengunggah, bukan otorisasi.
	log.Info("[INFO] Setting up ADMIN group...")
	admin := app.Group("/api/a",
		submitterMiddleware.SubmitterFromJWT(cfg.JWTSecret),
	)

	log.Info("[INFO] Mounting Exam routes...")
	routeDetails.ExamAdminRoutes(admin, db, cfg)
}
