package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CourseLevelUndergraduate = "UG"
	CourseLevelPostgraduate  = "PG"
)

type ProgramModel struct {
	ProgramID            uuid.UUID `gorm:"type:uuid;primaryKey;column:program_id" json:"program_id"`
	ProgramInstitutionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_programs_code;column:program_institution_id" json:"program_institution_id"`
	ProgramCode          string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_programs_code;column:program_code" json:"program_code"`
	ProgramName          string    `gorm:"type:text;not null;column:program_name" json:"program_name"`

	ProgramCreatedAt time.Time `gorm:"column:program_created_at;autoCreateTime" json:"program_created_at"`
	ProgramUpdatedAt time.Time `gorm:"column:program_updated_at;autoUpdateTime" json:"program_updated_at"`
}

func (ProgramModel) TableName() string { return "programs" }

func (m *ProgramModel) BeforeCreate(tx *gorm.DB) error {
	if m.ProgramID == uuid.Nil {
		m.ProgramID = uuid.New()
	}
	return nil
}

type CourseModel struct {
	CourseID            uuid.UUID `gorm:"type:uuid;primaryKey;column:course_id" json:"course_id"`
	CourseInstitutionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_courses_code;column:course_institution_id" json:"course_institution_id"`
	CourseCode          string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_courses_code;column:course_code" json:"course_code"`
	CourseName          string    `gorm:"type:text;not null;column:course_name" json:"course_name"`
	// UG | PG (free text historically: "Postgraduate", "post graduate", ...)
	CourseLevel string `gorm:"type:varchar(30);not null;default:'UG';column:course_level" json:"course_level"`

	CourseCreatedAt time.Time `gorm:"column:course_created_at;autoCreateTime" json:"course_created_at"`
	CourseUpdatedAt time.Time `gorm:"column:course_updated_at;autoUpdateTime" json:"course_updated_at"`
}

func (CourseModel) TableName() string { return "courses" }

func (m *CourseModel) BeforeCreate(tx *gorm.DB) error {
	if m.CourseID == uuid.Nil {
		m.CourseID = uuid.New()
	}
	return nil
}

// IsPostgraduateLevel normalizes the free-text level column.
func IsPostgraduateLevel(level string) bool {
	l := strings.ToUpper(strings.TrimSpace(level))
	l = strings.NewReplacer("-", "", " ", "", "_", "").Replace(l)
	switch l {
	case "PG", "POSTGRADUATE", "POSTGRAD":
		return true
	default:
		return false
	}
}

func (m CourseModel) IsPostgraduate() bool { return IsPostgraduateLevel(m.CourseLevel) }

// CourseOfferingModel: course yang dibuka pada (session, program).
type CourseOfferingModel struct {
	CourseOfferingID            uuid.UUID `gorm:"type:uuid;primaryKey;column:course_offering_id" json:"course_offering_id"`
	CourseOfferingInstitutionID uuid.UUID `gorm:"type:uuid;not null;index;column:course_offering_institution_id" json:"course_offering_institution_id"`
	CourseOfferingSessionID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_course_offerings_scope;column:course_offering_session_id" json:"course_offering_session_id"`
	CourseOfferingProgramID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_course_offerings_scope;column:course_offering_program_id" json:"course_offering_program_id"`
	CourseOfferingCourseID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_course_offerings_scope;column:course_offering_course_id" json:"course_offering_course_id"`

	CourseOfferingCreatedAt time.Time `gorm:"column:course_offering_created_at;autoCreateTime" json:"course_offering_created_at"`
	CourseOfferingUpdatedAt time.Time `gorm:"column:course_offering_updated_at;autoUpdateTime" json:"course_offering_updated_at"`
}

func (CourseOfferingModel) TableName() string { return "course_offerings" }

func (m *CourseOfferingModel) BeforeCreate(tx *gorm.DB) error {
	if m.CourseOfferingID == uuid.Nil {
		m.CourseOfferingID = uuid.New()
	}
	return nil
}
