package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
)

// ExamAttendanceModel: maksimal satu status per (registration, course).
type ExamAttendanceModel struct {
	ExamAttendanceID             uuid.UUID        `gorm:"type:uuid;primaryKey;column:exam_attendance_id" json:"exam_attendance_id"`
	ExamAttendanceInstitutionID  uuid.UUID        `gorm:"type:uuid;not null;index;column:exam_attendance_institution_id" json:"exam_attendance_institution_id"`
	ExamAttendanceRegistrationID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uq_exam_attendances_registration_course;column:exam_attendance_registration_id" json:"exam_attendance_registration_id"`
	ExamAttendanceCourseID       uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uq_exam_attendances_registration_course;column:exam_attendance_course_id" json:"exam_attendance_course_id"`
	ExamAttendanceStatus         AttendanceStatus `gorm:"type:varchar(20);not null;column:exam_attendance_status" json:"exam_attendance_status"`
	ExamAttendanceRemarks        *string          `gorm:"type:text;column:exam_attendance_remarks" json:"exam_attendance_remarks,omitempty"`

	ExamAttendanceCreatedAt time.Time `gorm:"column:exam_attendance_created_at;autoCreateTime" json:"exam_attendance_created_at"`
	ExamAttendanceUpdatedAt time.Time `gorm:"column:exam_attendance_updated_at;autoUpdateTime" json:"exam_attendance_updated_at"`
}

func (ExamAttendanceModel) TableName() string { return "exam_attendances" }

func (m *ExamAttendanceModel) BeforeCreate(tx *gorm.DB) error {
	if m.ExamAttendanceID == uuid.Nil {
		m.ExamAttendanceID = uuid.New()
	}
	return nil
}
