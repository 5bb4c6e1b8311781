package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"examportal_backend/internals/configs"
	"examportal_backend/internals/middlewares/logger"
)

func SetupMiddlewares(app *fiber.App, cfg configs.AppConfig) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestContext(cfg.RequestTimeout))
	app.Use(logger.LoggerMiddleware(cfg.Timezone))
	app.Use(CorsMiddleware(cfg.CorsOrigins))
	app.Use(GlobalRateLimiter())
}
