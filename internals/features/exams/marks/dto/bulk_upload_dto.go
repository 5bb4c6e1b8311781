package dto

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	ubDto "examportal_backend/internals/features/exams/upload_batches/dto"
	ubModel "examportal_backend/internals/features/exams/upload_batches/model"
)

// HeaderRowOffset: baris 1 di spreadsheet adalah header, data mulai baris 2.
const HeaderRowOffset = 2

/* =========================================================
   REQUEST
========================================================= */

// BulkUploadRequest: field scalar; "rows" dibaca terpisah lewat gjson.
type BulkUploadRequest struct {
	InstitutionID string `json:"institution_id" validate:"required,uuid"`
	SessionID     string `json:"session_id" validate:"required,uuid"`
	ProgramID     string `json:"program_id" validate:"required,uuid"`
	CourseID      string `json:"course_id" validate:"required,uuid"`

	UploadedBy string `json:"uploaded_by" validate:"omitempty,max=100"`
	FileName   string `json:"file_name" validate:"omitempty,max=255"`
	FileSize   int64  `json:"file_size" validate:"gte=0"`
	FileType   string `json:"file_type" validate:"omitempty,max=100"`
}

// BulkUpload: perintah yang sudah bertipe untuk service.
type BulkUpload struct {
	InstitutionID uuid.UUID
	SessionID     uuid.UUID
	ProgramID     uuid.UUID
	CourseID      uuid.UUID

	Rows     []MarkUploadRow
	RowsJSON string

	UploadedBy *string
	FileName   string
	FileSize   int64
	FileType   string
}

// ToCommand dipanggil setelah validator lolos (uuid sudah pasti valid).
func (r BulkUploadRequest) ToCommand(rows []MarkUploadRow, rowsJSON string, uploadedBy *string) *BulkUpload {
	return &BulkUpload{
		InstitutionID: uuid.MustParse(r.InstitutionID),
		SessionID:     uuid.MustParse(r.SessionID),
		ProgramID:     uuid.MustParse(r.ProgramID),
		CourseID:      uuid.MustParse(r.CourseID),
		Rows:          rows,
		RowsJSON:      rowsJSON,
		UploadedBy:    uploadedBy,
		FileName:      strings.TrimSpace(r.FileName),
		FileSize:      r.FileSize,
		FileType:      strings.TrimSpace(r.FileType),
	}
}

/* =========================================================
   ROWS (untyped → typed)
========================================================= */

// MarkUploadRow: satu baris sheet. Nilai angka disimpan mentah supaya
// "bukan angka" bisa dibedakan dari "kosong".
type MarkUploadRow struct {
	RowNumber     int    `json:"row"`
	DummyNumber   string `json:"dummy_number"`
	CourseCode    string `json:"course_code"`
	MarksObtained string `json:"marks_obtained"`
	MarksOutOf    string `json:"marks_out_of"`
	Remarks       string `json:"remarks,omitempty"`
}

var (
	dummyNumberKeys   = []string{"dummy_number", "Dummy Number", "dummyNumber"}
	courseCodeKeys    = []string{"course_code", "Course Code", "courseCode"}
	marksObtainedKeys = []string{"marks_obtained", "Marks Obtained", "total_marks_obtained"}
	marksOutOfKeys    = []string{"marks_out_of", "Marks Out Of", "total_marks"}
	remarksKeys       = []string{"remarks", "Remarks"}
)

// ParseUploadRows mengubah array JSON mentah jadi []MarkUploadRow.
// Array kosong / bukan array / elemen bukan object → 400.
func ParseUploadRows(rows gjson.Result) ([]MarkUploadRow, error) {
	if !rows.Exists() || !rows.IsArray() {
		return nil, fiber.NewError(fiber.StatusBadRequest, "rows must be a non-empty array")
	}
	items := rows.Array()
	if len(items) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "No rows to upload")
	}

	out := make([]MarkUploadRow, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Row %d is not an object", i+HeaderRowOffset))
		}
		fields := map[string]gjson.Result{}
		item.ForEach(func(k, v gjson.Result) bool {
			fields[k.String()] = v
			return true
		})
		out = append(out, MarkUploadRow{
			RowNumber:     i + HeaderRowOffset,
			DummyNumber:   pick(fields, dummyNumberKeys),
			CourseCode:    pick(fields, courseCodeKeys),
			MarksObtained: pick(fields, marksObtainedKeys),
			MarksOutOf:    pick(fields, marksOutOfKeys),
			Remarks:       pick(fields, remarksKeys),
		})
	}
	return out, nil
}

// pick: nilai non-kosong pertama sesuai urutan alias.
func pick(fields map[string]gjson.Result, keys []string) string {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || v.Type == gjson.Null {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

/* =========================================================
   RESPONSE
========================================================= */

type RowValidationError struct {
	Row         int      `json:"row"`
	DummyNumber string   `json:"dummy_number"`
	CourseCode  string   `json:"course_code"`
	Errors      []string `json:"errors"`
}

type SkippedRow struct {
	Row           int      `json:"row"`
	DummyNumber   string   `json:"dummy_number"`
	CourseCode    string   `json:"course_code"`
	Reason        string   `json:"reason"`
	ExistingMarks *float64 `json:"existing_marks,omitempty"`
}

type BulkUploadResponse struct {
	Success          bool                     `json:"success"`
	Message          string                   `json:"message"`
	BatchID          *uuid.UUID               `json:"batch_id"`
	BatchCode        string                   `json:"batch_code,omitempty"`
	Status           ubModel.BatchStatus      `json:"status"`
	Total            int                      `json:"total"`
	Successful       int                      `json:"successful"`
	Failed           int                      `json:"failed"`
	Skipped          int                      `json:"skipped"`
	Errors           []string                 `json:"errors"`
	ValidationErrors []RowValidationError     `json:"validation_errors"`
	SkippedRows      []SkippedRow             `json:"skipped_rows"`
	ErrorSummary     []ubDto.ErrorSummaryItem `json:"error_summary"`
}
