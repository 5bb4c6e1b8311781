package seeds

import (
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	examSeeds "examportal_backend/internals/seeds/exams"
)

// RunAllSeeds: data master ujian dari file JSON (dev/staging). Path kosong = tidak ada seed.
func RunAllSeeds(db *gorm.DB, examDataPath string) error {
	if strings.TrimSpace(examDataPath) == "" {
		return nil
	}

	//* Exams
	st, err := examSeeds.SeedExamDataFromJSON(db, examDataPath)
	if err != nil {
		return err
	}
	log.Infow("🌱 exam seed finished",
		"institutions", st.Institutions,
		"sessions", st.Sessions,
		"programs", st.Programs,
		"courses", st.Courses,
		"offerings", st.Offerings,
		"students", st.Students,
		"skipped", st.Skipped,
	)
	return nil
}
