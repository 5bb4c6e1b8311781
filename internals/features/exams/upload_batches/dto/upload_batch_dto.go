package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"examportal_backend/internals/features/exams/upload_batches/model"
)

type ErrorSummaryItem struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type ListUploadBatchesQuery struct {
	InstitutionID string `query:"institution_id" json:"institution_id" validate:"required,uuid"`
	SessionID     string `query:"session_id" json:"session_id" validate:"omitempty,uuid"`
	ProgramID     string `query:"program_id" json:"program_id" validate:"omitempty,uuid"`
	CourseID      string `query:"course_id" json:"course_id" validate:"omitempty,uuid"`
	Status        string `query:"status" json:"status" validate:"omitempty,oneof=Pending Processing Completed Partial Failed"`
}

// UploadBatchSummary: bentuk ringkas untuk list.
type UploadBatchSummary struct {
	ID         uuid.UUID         `json:"id"`
	Code       string            `json:"batch_code"`
	CourseID   uuid.UUID         `json:"course_id"`
	FileName   string            `json:"file_name"`
	Status     model.BatchStatus `json:"status"`
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	Skipped    int               `json:"skipped"`
	UploadedBy *string           `json:"uploaded_by,omitempty"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// UploadBatchDetail: seluruh jejak audit satu batch.
type UploadBatchDetail struct {
	UploadBatchSummary
	InstitutionID     uuid.UUID      `json:"institution_id"`
	SessionID         uuid.UUID      `json:"session_id"`
	ProgramID         uuid.UUID      `json:"program_id"`
	FileSize          int64          `json:"file_size"`
	FileType          string         `json:"file_type"`
	FileHash          string         `json:"file_hash"`
	ErrorDetails      datatypes.JSON `json:"error_details,omitempty"`
	ValidationErrors  datatypes.JSON `json:"validation_errors,omitempty"`
	SkippedDetails    datatypes.JSON `json:"skipped_details,omitempty"`
	ErrorSummary      datatypes.JSON `json:"error_summary,omitempty"`
	ProcessingSummary string         `json:"processing_summary"`
}

func ToSummary(m model.MarkUploadBatchModel) UploadBatchSummary {
	return UploadBatchSummary{
		ID:         m.MarkUploadBatchID,
		Code:       m.MarkUploadBatchCode,
		CourseID:   m.MarkUploadBatchCourseID,
		FileName:   m.MarkUploadBatchFileName,
		Status:     m.MarkUploadBatchStatus,
		Total:      m.MarkUploadBatchTotal,
		Successful: m.MarkUploadBatchSuccessful,
		Failed:     m.MarkUploadBatchFailed,
		Skipped:    m.MarkUploadBatchSkipped,
		UploadedBy: m.MarkUploadBatchUploadedBy,
		StartedAt:  m.MarkUploadBatchStartedAt,
		FinishedAt: m.MarkUploadBatchFinishedAt,
		CreatedAt:  m.MarkUploadBatchCreatedAt,
	}
}

func ToSummaries(rows []model.MarkUploadBatchModel) []UploadBatchSummary {
	out := make([]UploadBatchSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToSummary(r))
	}
	return out
}

func ToDetail(m model.MarkUploadBatchModel) UploadBatchDetail {
	return UploadBatchDetail{
		UploadBatchSummary: ToSummary(m),
		InstitutionID:      m.MarkUploadBatchInstitutionID,
		SessionID:          m.MarkUploadBatchSessionID,
		ProgramID:          m.MarkUploadBatchProgramID,
		FileSize:           m.MarkUploadBatchFileSize,
		FileType:           m.MarkUploadBatchFileType,
		FileHash:           m.MarkUploadBatchFileHash,
		ErrorDetails:       m.MarkUploadBatchErrorDetails,
		ValidationErrors:   m.MarkUploadBatchValidationErrors,
		SkippedDetails:     m.MarkUploadBatchSkippedDetails,
		ErrorSummary:       m.MarkUploadBatchErrorSummary,
		ProcessingSummary:  m.MarkUploadBatchProcessingSummary,
	}
}

type DeleteBatchMarksResponse struct {
	BatchID uuid.UUID `json:"batch_id"`
	Deleted int64     `json:"deleted"`
}
