package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "Pending"
	BatchStatusProcessing BatchStatus = "Processing"
	BatchStatusCompleted  BatchStatus = "Completed"
	BatchStatusPartial    BatchStatus = "Partial"
	BatchStatusFailed     BatchStatus = "Failed"
)

// IsFinal: status terminal, record tidak boleh diubah lagi.
func (s BatchStatus) IsFinal() bool {
	switch s {
	case BatchStatusCompleted, BatchStatusPartial, BatchStatusFailed:
		return true
	}
	return false
}

type MarkUploadBatchModel struct {
	MarkUploadBatchID            uuid.UUID `gorm:"type:uuid;primaryKey;column:mark_upload_batch_id" json:"mark_upload_batch_id"`
	MarkUploadBatchCode          string    `gorm:"type:varchar(40);not null;index;column:mark_upload_batch_code" json:"mark_upload_batch_code"`
	MarkUploadBatchInstitutionID uuid.UUID `gorm:"type:uuid;not null;index:idx_mark_upload_batches_scope;uniqueIndex:uq_mark_upload_batches_hash,where:mark_upload_batch_status <> 'Failed';column:mark_upload_batch_institution_id" json:"mark_upload_batch_institution_id"`
	MarkUploadBatchSessionID     uuid.UUID `gorm:"type:uuid;not null;index:idx_mark_upload_batches_scope;uniqueIndex:uq_mark_upload_batches_hash,where:mark_upload_batch_status <> 'Failed';column:mark_upload_batch_session_id" json:"mark_upload_batch_session_id"`
	MarkUploadBatchProgramID     uuid.UUID `gorm:"type:uuid;not null;index:idx_mark_upload_batches_scope;uniqueIndex:uq_mark_upload_batches_hash,where:mark_upload_batch_status <> 'Failed';column:mark_upload_batch_program_id" json:"mark_upload_batch_program_id"`
	MarkUploadBatchCourseID      uuid.UUID `gorm:"type:uuid;not null;index:idx_mark_upload_batches_scope;uniqueIndex:uq_mark_upload_batches_hash,where:mark_upload_batch_status <> 'Failed';column:mark_upload_batch_course_id" json:"mark_upload_batch_course_id"`

	// file
	MarkUploadBatchFileName string `gorm:"type:text;column:mark_upload_batch_file_name" json:"mark_upload_batch_file_name"`
	MarkUploadBatchFileSize int64  `gorm:"column:mark_upload_batch_file_size" json:"mark_upload_batch_file_size"`
	MarkUploadBatchFileType string `gorm:"type:varchar(100);column:mark_upload_batch_file_type" json:"mark_upload_batch_file_type"`
	MarkUploadBatchFileHash string `gorm:"type:varchar(64);not null;uniqueIndex:uq_mark_upload_batches_hash,where:mark_upload_batch_status <> 'Failed';column:mark_upload_batch_file_hash" json:"mark_upload_batch_file_hash"`

	// counters
	MarkUploadBatchTotal      int `gorm:"not null;default:0;column:mark_upload_batch_total" json:"mark_upload_batch_total"`
	MarkUploadBatchSuccessful int `gorm:"not null;default:0;column:mark_upload_batch_successful" json:"mark_upload_batch_successful"`
	MarkUploadBatchFailed     int `gorm:"not null;default:0;column:mark_upload_batch_failed" json:"mark_upload_batch_failed"`
	MarkUploadBatchSkipped    int `gorm:"not null;default:0;column:mark_upload_batch_skipped" json:"mark_upload_batch_skipped"`

	MarkUploadBatchStatus BatchStatus `gorm:"type:varchar(20);not null;column:mark_upload_batch_status" json:"mark_upload_batch_status"`

	// audit payloads
	MarkUploadBatchErrorDetails      datatypes.JSON `gorm:"column:mark_upload_batch_error_details" json:"mark_upload_batch_error_details,omitempty"`
	MarkUploadBatchValidationErrors  datatypes.JSON `gorm:"column:mark_upload_batch_validation_errors" json:"mark_upload_batch_validation_errors,omitempty"`
	MarkUploadBatchSkippedDetails    datatypes.JSON `gorm:"column:mark_upload_batch_skipped_details" json:"mark_upload_batch_skipped_details,omitempty"`
	MarkUploadBatchErrorSummary      datatypes.JSON `gorm:"column:mark_upload_batch_error_summary" json:"mark_upload_batch_error_summary,omitempty"`
	MarkUploadBatchProcessingSummary string         `gorm:"type:text;column:mark_upload_batch_processing_summary" json:"mark_upload_batch_processing_summary"`

	MarkUploadBatchUploadedBy *string    `gorm:"type:varchar(100);column:mark_upload_batch_uploaded_by" json:"mark_upload_batch_uploaded_by,omitempty"`
	MarkUploadBatchStartedAt  *time.Time `gorm:"column:mark_upload_batch_started_at" json:"mark_upload_batch_started_at,omitempty"`
	MarkUploadBatchFinishedAt *time.Time `gorm:"column:mark_upload_batch_finished_at" json:"mark_upload_batch_finished_at,omitempty"`

	MarkUploadBatchCreatedAt time.Time `gorm:"column:mark_upload_batch_created_at;autoCreateTime" json:"mark_upload_batch_created_at"`
	MarkUploadBatchUpdatedAt time.Time `gorm:"column:mark_upload_batch_updated_at;autoUpdateTime" json:"mark_upload_batch_updated_at"`
}

func (MarkUploadBatchModel) TableName() string { return "mark_upload_batches" }

func (m *MarkUploadBatchModel) BeforeCreate(tx *gorm.DB) error {
	if m.MarkUploadBatchID == uuid.Nil {
		m.MarkUploadBatchID = uuid.New()
	}
	return nil
}
