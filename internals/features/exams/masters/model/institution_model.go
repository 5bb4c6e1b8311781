package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InstitutionModel merepresentasikan tabel institutions (read-only untuk engine).
type InstitutionModel struct {
	InstitutionID   uuid.UUID `gorm:"type:uuid;primaryKey;column:institution_id" json:"institution_id"`
	InstitutionCode string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_institutions_code;column:institution_code" json:"institution_code"`
	InstitutionName string    `gorm:"type:text;not null;column:institution_name" json:"institution_name"`

	InstitutionCreatedAt time.Time `gorm:"column:institution_created_at;autoCreateTime" json:"institution_created_at"`
	InstitutionUpdatedAt time.Time `gorm:"column:institution_updated_at;autoUpdateTime" json:"institution_updated_at"`
}

func (InstitutionModel) TableName() string { return "institutions" }

func (m *InstitutionModel) BeforeCreate(tx *gorm.DB) error {
	if m.InstitutionID == uuid.Nil {
		m.InstitutionID = uuid.New()
	}
	return nil
}

// ExaminationSessionModel: satu sesi ujian (mis. "NOV-2025") milik institution.
type ExaminationSessionModel struct {
	ExaminationSessionID            uuid.UUID `gorm:"type:uuid;primaryKey;column:examination_session_id" json:"examination_session_id"`
	ExaminationSessionInstitutionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_examination_sessions_code;column:examination_session_institution_id" json:"examination_session_institution_id"`
	ExaminationSessionCode          string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_examination_sessions_code;column:examination_session_code" json:"examination_session_code"`
	ExaminationSessionName          string    `gorm:"type:text;not null;column:examination_session_name" json:"examination_session_name"`

	ExaminationSessionCreatedAt time.Time `gorm:"column:examination_session_created_at;autoCreateTime" json:"examination_session_created_at"`
	ExaminationSessionUpdatedAt time.Time `gorm:"column:examination_session_updated_at;autoUpdateTime" json:"examination_session_updated_at"`
}

func (ExaminationSessionModel) TableName() string { return "examination_sessions" }

func (m *ExaminationSessionModel) BeforeCreate(tx *gorm.DB) error {
	if m.ExaminationSessionID == uuid.Nil {
		m.ExaminationSessionID = uuid.New()
	}
	return nil
}
