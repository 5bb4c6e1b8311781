package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"examportal_backend/internals/configs"
	database "examportal_backend/internals/databases"
	helper "examportal_backend/internals/helpers"
	middlewares "examportal_backend/internals/middlewares"
	routes "examportal_backend/internals/route"
	"examportal_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()
	cfg := configs.Load()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		BodyLimit:               16 * 1024 * 1024, // sheet nilai bisa ribuan baris
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return helper.FromFiberError(c, err)
		},
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	middlewares.SetupMiddlewares(app, cfg)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB(cfg.Database)
	database.TunePool()
	database.WarmUpQueries()
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(database.DB); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}
	if err := seeds.RunAllSeeds(database.DB, cfg.Database.SeedFile); err != nil {
		log.Fatalf("❌ seed: %v", err)
	}

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, cfg)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 30 * time.Second
	app.Server().WriteTimeout = cfg.RequestTimeout + 5*time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		log.Infof("✅ Listening on :%s", cfg.Port)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown + tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	database.Close()
}
