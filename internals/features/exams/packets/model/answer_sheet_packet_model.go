package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================================================
   ENUMS
========================================================= */

type PacketStatus string

const (
	PacketStatusCreated    PacketStatus = "Created"
	PacketStatusAssigned   PacketStatus = "Assigned"
	PacketStatusInProgress PacketStatus = "In Progress"
	PacketStatusCompleted  PacketStatus = "Completed"
)

type PacketOrigin string

const (
	// dibuat ulang oleh generator, boleh dihapus saat regenerasi
	PacketOriginGenerated PacketOrigin = "Generated"
	// dibuat operator, tidak pernah disentuh generator
	PacketOriginManual PacketOrigin = "Manual"
)

/* =========================================================
   MODEL
========================================================= */

type AnswerSheetPacketModel struct {
	AnswerSheetPacketID            uuid.UUID    `gorm:"type:uuid;primaryKey;column:answer_sheet_packet_id" json:"answer_sheet_packet_id"`
	AnswerSheetPacketInstitutionID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uq_answer_sheet_packets_number;column:answer_sheet_packet_institution_id" json:"answer_sheet_packet_institution_id"`
	AnswerSheetPacketSessionID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uq_answer_sheet_packets_number;column:answer_sheet_packet_session_id" json:"answer_sheet_packet_session_id"`
	AnswerSheetPacketCourseID      uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uq_answer_sheet_packets_number;column:answer_sheet_packet_course_id" json:"answer_sheet_packet_course_id"`
	AnswerSheetPacketNumber        string       `gorm:"type:varchar(20);not null;uniqueIndex:uq_answer_sheet_packets_number;column:answer_sheet_packet_number" json:"answer_sheet_packet_number"`
	AnswerSheetPacketSequence      int          `gorm:"not null;column:answer_sheet_packet_sequence" json:"answer_sheet_packet_sequence"`
	AnswerSheetPacketTotalSheets   int          `gorm:"not null;column:answer_sheet_packet_total_sheets" json:"answer_sheet_packet_total_sheets"`
	AnswerSheetPacketStatus        PacketStatus `gorm:"type:varchar(20);not null;column:answer_sheet_packet_status" json:"answer_sheet_packet_status"`
	AnswerSheetPacketEvaluated     int          `gorm:"not null;default:0;column:answer_sheet_packet_evaluated" json:"answer_sheet_packet_evaluated"`
	AnswerSheetPacketPending       int          `gorm:"not null;default:0;column:answer_sheet_packet_pending" json:"answer_sheet_packet_pending"`
	AnswerSheetPacketOrigin        PacketOrigin `gorm:"type:varchar(20);not null;column:answer_sheet_packet_origin" json:"answer_sheet_packet_origin"`

	AnswerSheetPacketCreatedAt time.Time `gorm:"column:answer_sheet_packet_created_at;autoCreateTime" json:"answer_sheet_packet_created_at"`
	AnswerSheetPacketUpdatedAt time.Time `gorm:"column:answer_sheet_packet_updated_at;autoUpdateTime" json:"answer_sheet_packet_updated_at"`
}

func (AnswerSheetPacketModel) TableName() string { return "answer_sheet_packets" }

func (m *AnswerSheetPacketModel) BeforeCreate(tx *gorm.DB) error {
	if m.AnswerSheetPacketID == uuid.Nil {
		m.AnswerSheetPacketID = uuid.New()
	}
	return nil
}
