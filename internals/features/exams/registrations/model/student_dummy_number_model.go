package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudentDummyNumberModel: satu lembar jawaban anonim untuk satu registrasi course.
// Dibuat oleh proses anonimisasi; engine hanya mengubah kolom packet_id.
type StudentDummyNumberModel struct {
	StudentDummyNumberID             uuid.UUID  `gorm:"type:uuid;primaryKey;column:student_dummy_number_id" json:"student_dummy_number_id"`
	StudentDummyNumberInstitutionID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_student_dummy_numbers_scope;column:student_dummy_number_institution_id" json:"student_dummy_number_institution_id"`
	StudentDummyNumberSessionID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_student_dummy_numbers_scope;column:student_dummy_number_session_id" json:"student_dummy_number_session_id"`
	StudentDummyNumberCourseID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_student_dummy_numbers_scope;column:student_dummy_number_course_id" json:"student_dummy_number_course_id"`
	StudentDummyNumber               string     `gorm:"type:varchar(50);not null;uniqueIndex:uq_student_dummy_numbers_scope;column:student_dummy_number" json:"student_dummy_number"`
	StudentDummyNumberRegistrationID uuid.UUID  `gorm:"type:uuid;not null;index;column:student_dummy_number_registration_id" json:"student_dummy_number_registration_id"`
	StudentDummyNumberPacketID       *uuid.UUID `gorm:"type:uuid;index;column:student_dummy_number_packet_id" json:"student_dummy_number_packet_id,omitempty"`

	StudentDummyNumberCreatedAt time.Time `gorm:"column:student_dummy_number_created_at;autoCreateTime" json:"student_dummy_number_created_at"`
	StudentDummyNumberUpdatedAt time.Time `gorm:"column:student_dummy_number_updated_at;autoUpdateTime" json:"student_dummy_number_updated_at"`
}

func (StudentDummyNumberModel) TableName() string { return "student_dummy_numbers" }

func (m *StudentDummyNumberModel) BeforeCreate(tx *gorm.DB) error {
	if m.StudentDummyNumberID == uuid.Nil {
		m.StudentDummyNumberID = uuid.New()
	}
	return nil
}
