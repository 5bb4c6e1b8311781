package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"examportal_backend/internals/features/exams/packets/model"
)

/* =========================================================
   REQUEST
========================================================= */

type GeneratePacketsRequest struct {
	InstitutionCode string `json:"institution_code" validate:"required,max=50"`
	SessionCode     string `json:"session_code" validate:"required,max=50"`
	CourseCode      string `json:"course_code" validate:"omitempty,max=50"`
}

func (r *GeneratePacketsRequest) Normalize() {
	r.InstitutionCode = strings.TrimSpace(r.InstitutionCode)
	r.SessionCode = strings.TrimSpace(r.SessionCode)
	r.CourseCode = strings.TrimSpace(r.CourseCode)
}

type ListPacketsQuery struct {
	InstitutionCode string `query:"institution_code" json:"institution_code" validate:"required"`
	SessionCode     string `query:"session_code" json:"session_code" validate:"required"`
	CourseCode      string `query:"course_code" json:"course_code"`
}

/* =========================================================
   RESPONSE
========================================================= */

// CourseDebug: angka diagnostik per course.
type CourseDebug struct {
	TotalIdentities   int    `json:"total_identities"`
	Eligible          int    `json:"eligible"`
	Absent            int    `json:"absent"`
	HeldInManual      int    `json:"held_in_manual_packets"`
	Capacity          int    `json:"capacity"`
	ClearedPackets    int64  `json:"cleared_packets"`
	SkippedChunks     int    `json:"skipped_chunks"`
	SkippedIdentities int    `json:"skipped_identities"`
	Level             string `json:"course_level"`
}

type CourseResult struct {
	CourseID         uuid.UUID    `json:"course_id"`
	CourseCode       string       `json:"course_code"`
	PacketsCreated   int          `json:"packets_created"`
	StudentsAssigned int          `json:"students_assigned"`
	Error            string       `json:"error,omitempty"`
	Warnings         []string     `json:"warnings,omitempty"`
	Debug            *CourseDebug `json:"debug,omitempty"`
}

type GeneratePacketsResponse struct {
	Success               bool           `json:"success"`
	TotalPacketsCreated   int            `json:"total_packets_created"`
	TotalStudentsAssigned int            `json:"total_students_assigned"`
	CoursesProcessed      int            `json:"courses_processed"`
	CourseResults         []CourseResult `json:"course_results"`
}

type PacketResponse struct {
	ID          uuid.UUID          `json:"id"`
	CourseID    uuid.UUID          `json:"course_id"`
	Number      string             `json:"packet_number"`
	Sequence    int                `json:"sequence"`
	TotalSheets int                `json:"total_sheets"`
	Status      model.PacketStatus `json:"status"`
	Evaluated   int                `json:"evaluated"`
	Pending     int                `json:"pending"`
	Origin      model.PacketOrigin `json:"origin"`
	CreatedAt   time.Time          `json:"created_at"`
}

func FromModel(m model.AnswerSheetPacketModel) PacketResponse {
	return PacketResponse{
		ID:          m.AnswerSheetPacketID,
		CourseID:    m.AnswerSheetPacketCourseID,
		Number:      m.AnswerSheetPacketNumber,
		Sequence:    m.AnswerSheetPacketSequence,
		TotalSheets: m.AnswerSheetPacketTotalSheets,
		Status:      m.AnswerSheetPacketStatus,
		Evaluated:   m.AnswerSheetPacketEvaluated,
		Pending:     m.AnswerSheetPacketPending,
		Origin:      m.AnswerSheetPacketOrigin,
		CreatedAt:   m.AnswerSheetPacketCreatedAt,
	}
}

func FromModels(rows []model.AnswerSheetPacketModel) []PacketResponse {
	out := make([]PacketResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
