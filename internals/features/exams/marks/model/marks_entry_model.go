package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntryStatus string

const (
	EntryStatusDraft     EntryStatus = "Draft"
	EntryStatusVerified  EntryStatus = "Verified"
	EntryStatusPublished EntryStatus = "Published"
)

type EntrySource string

const (
	EntrySourceBulkUpload  EntrySource = "Bulk Upload"
	EntrySourceManualEntry EntrySource = "Manual Entry"
)

// MarksEntryModel: nilai untuk satu lembar jawaban anonim.
// Hanya satu record aktif per (dummy number, course); engine hanya INSERT.
type MarksEntryModel struct {
	MarksEntryID             uuid.UUID `gorm:"type:uuid;primaryKey;column:marks_entry_id" json:"marks_entry_id"`
	MarksEntryInstitutionID  uuid.UUID `gorm:"type:uuid;not null;index;column:marks_entry_institution_id" json:"marks_entry_institution_id"`
	MarksEntrySessionID      uuid.UUID `gorm:"type:uuid;not null;index;column:marks_entry_session_id" json:"marks_entry_session_id"`
	MarksEntryProgramID      uuid.UUID `gorm:"type:uuid;not null;column:marks_entry_program_id" json:"marks_entry_program_id"`
	MarksEntryCourseID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_marks_entries_active,where:marks_entry_is_active = true;column:marks_entry_course_id" json:"marks_entry_course_id"`
	MarksEntryDummyNumberID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_marks_entries_active,where:marks_entry_is_active = true;column:marks_entry_dummy_number_id" json:"marks_entry_dummy_number_id"`
	MarksEntryRegistrationID uuid.UUID `gorm:"type:uuid;not null;column:marks_entry_registration_id" json:"marks_entry_registration_id"`

	MarksEntryMarksObtained float64 `gorm:"type:numeric(6,2);not null;column:marks_entry_marks_obtained" json:"marks_entry_marks_obtained"`
	MarksEntryMarksOutOf    float64 `gorm:"type:numeric(6,2);not null;column:marks_entry_marks_out_of" json:"marks_entry_marks_out_of"`
	MarksEntryMarksInWords  string  `gorm:"type:text;not null;column:marks_entry_marks_in_words" json:"marks_entry_marks_in_words"`
	MarksEntryRemarks       *string `gorm:"type:text;column:marks_entry_remarks" json:"marks_entry_remarks,omitempty"`

	MarksEntryEvaluationDate time.Time   `gorm:"column:marks_entry_evaluation_date" json:"marks_entry_evaluation_date"`
	MarksEntryStatus         EntryStatus `gorm:"type:varchar(20);not null;column:marks_entry_status" json:"marks_entry_status"`
	MarksEntrySource         EntrySource `gorm:"type:varchar(20);not null;column:marks_entry_source" json:"marks_entry_source"`
	MarksEntryUploadBatchID  *uuid.UUID  `gorm:"type:uuid;index;column:marks_entry_upload_batch_id" json:"marks_entry_upload_batch_id,omitempty"`
	MarksEntryIsActive       bool        `gorm:"not null;column:marks_entry_is_active" json:"marks_entry_is_active"`
	MarksEntryEnteredBy      *string     `gorm:"type:varchar(100);column:marks_entry_entered_by" json:"marks_entry_entered_by,omitempty"`

	MarksEntryCreatedAt time.Time `gorm:"column:marks_entry_created_at;autoCreateTime" json:"marks_entry_created_at"`
	MarksEntryUpdatedAt time.Time `gorm:"column:marks_entry_updated_at;autoUpdateTime" json:"marks_entry_updated_at"`
}

func (MarksEntryModel) TableName() string { return "marks_entries" }

func (m *MarksEntryModel) BeforeCreate(tx *gorm.DB) error {
	if m.MarksEntryID == uuid.Nil {
		m.MarksEntryID = uuid.New()
	}
	return nil
}
