package database

import (
	"github.com/gofiber/fiber/v2/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	marksModel "examportal_backend/internals/features/exams/marks/model"
	mastersModel "examportal_backend/internals/features/exams/masters/model"
	packetsModel "examportal_backend/internals/features/exams/packets/model"
	registrationsModel "examportal_backend/internals/features/exams/registrations/model"
	batchModel "examportal_backend/internals/features/exams/upload_batches/model"
)

// EngineModels: urutan mengikuti dependensi (master dulu).
func EngineModels() []interface{} {
	return []interface{}{
		&mastersModel.InstitutionModel{},
		&mastersModel.ExaminationSessionModel{},
		&mastersModel.ProgramModel{},
		&mastersModel.CourseModel{},
		&mastersModel.CourseOfferingModel{},
		&registrationsModel.ExamRegistrationModel{},
		&registrationsModel.ExamAttendanceModel{},
		&registrationsModel.StudentDummyNumberModel{},
		&packetsModel.AnswerSheetPacketModel{},
		&batchModel.MarkUploadBatchModel{},
		&marksModel.MarksEntryModel{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(EngineModels()...); err != nil {
		return errors.Wrap(err, "auto migrate engine tables")
	}
	log.Info("✅ Engine tables migrated")
	return nil
}
