// Command packetgen menjalankan Generate Packets tanpa HTTP (ops / backfill).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2/log"
	"github.com/peterbourgon/ff/v3"

	"examportal_backend/internals/configs"
	database "examportal_backend/internals/databases"
	"examportal_backend/internals/features/exams/packets/dto"
	"examportal_backend/internals/features/exams/packets/service"
)

func main() {
	configs.LoadEnv()
	cfg := configs.Load()

	fs := flag.NewFlagSet("packetgen", flag.ExitOnError)
	var (
		_           = fs.String("config", "", "config file (optional), json format")
		institution = fs.String("institution", "", "institution code (required)")
		session     = fs.String("session", "", "examination session code (required)")
		course      = fs.String("course", "", "course code, empty = every course offered in the session")
		pageSize    = fs.Int("page-size", cfg.LookupPageSize, "lookup page size")
		timeout     = fs.Duration("timeout", 10*time.Minute, "overall timeout")
	)
	if err := ff.Parse(fs, os.Args[1:],
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.JSONParser),
		ff.WithEnvVarPrefix("PACKETGEN"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "packetgen: %v\n", err)
		os.Exit(2)
	}
	if *institution == "" || *session == "" {
		fs.Usage()
		os.Exit(2)
	}

	database.ConnectDB(cfg.Database)
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	gen := service.NewGenerator(database.DB, *pageSize)
	resp, err := gen.Generate(ctx, dto.GeneratePacketsRequest{
		InstitutionCode: *institution,
		SessionCode:     *session,
		CourseCode:      *course,
	})
	if err != nil {
		log.Errorw("❌ packet generation failed", "err", err)
		os.Exit(1)
	}

	out, err := sonic.ConfigStd.MarshalIndent(resp, "", "  ")
	if err != nil {
		log.Errorw("❌ encode result failed", "err", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
