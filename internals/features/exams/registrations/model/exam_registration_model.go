package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExamRegistrationModel: registrasi mahasiswa untuk satu course offering dalam satu session.
type ExamRegistrationModel struct {
	ExamRegistrationID               uuid.UUID `gorm:"type:uuid;primaryKey;column:exam_registration_id" json:"exam_registration_id"`
	ExamRegistrationInstitutionID    uuid.UUID `gorm:"type:uuid;not null;index;column:exam_registration_institution_id" json:"exam_registration_institution_id"`
	ExamRegistrationSessionID        uuid.UUID `gorm:"type:uuid;not null;index;column:exam_registration_session_id" json:"exam_registration_session_id"`
	ExamRegistrationCourseOfferingID uuid.UUID `gorm:"type:uuid;not null;index;column:exam_registration_course_offering_id" json:"exam_registration_course_offering_id"`
	ExamRegistrationStudentID        uuid.UUID `gorm:"type:uuid;not null;column:exam_registration_student_id" json:"exam_registration_student_id"`
	ExamRegistrationStudentName      string    `gorm:"type:text;not null;column:exam_registration_student_name" json:"exam_registration_student_name"`
	ExamRegistrationRegisterNumber   string    `gorm:"type:varchar(50);not null;column:exam_registration_register_number" json:"exam_registration_register_number"`
	ExamRegistrationCourseCode       string    `gorm:"type:varchar(50);not null;column:exam_registration_course_code" json:"exam_registration_course_code"`

	ExamRegistrationCreatedAt time.Time `gorm:"column:exam_registration_created_at;autoCreateTime" json:"exam_registration_created_at"`
	ExamRegistrationUpdatedAt time.Time `gorm:"column:exam_registration_updated_at;autoUpdateTime" json:"exam_registration_updated_at"`
}

func (ExamRegistrationModel) TableName() string { return "exam_registrations" }

func (m *ExamRegistrationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ExamRegistrationID == uuid.Nil {
		m.ExamRegistrationID = uuid.New()
	}
	return nil
}
