package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	helper "examportal_backend/internals/helpers"
	mastersModel "examportal_backend/internals/features/exams/masters/model"
	mastersService "examportal_backend/internals/features/exams/masters/service"
	"examportal_backend/internals/features/exams/packets/dto"
	"examportal_backend/internals/features/exams/packets/model"
	regModel "examportal_backend/internals/features/exams/registrations/model"
	regService "examportal_backend/internals/features/exams/registrations/service"
)

const (
	CapacityUndergraduate = 25
	CapacityPostgraduate  = 20
)

// PacketCapacity: 20 lembar untuk PG, 25 untuk lainnya.
func PacketCapacity(courseLevel string) int {
	if mastersModel.IsPostgraduateLevel(courseLevel) {
		return CapacityPostgraduate
	}
	return CapacityUndergraduate
}

func PacketNumber(seq, total int) string { return fmt.Sprintf("%d/%d", seq, total) }

// SortByDummyNumber: urut byte-wise, tie-break id.
func SortByDummyNumber(ids []*regService.IdentityContext) {
	sort.SliceStable(ids, func(i, j int) bool {
		if ids[i].DummyNumber != ids[j].DummyNumber {
			return ids[i].DummyNumber < ids[j].DummyNumber
		}
		return ids[i].DummyNumberID.String() < ids[j].DummyNumberID.String()
	})
}

// ChunkIdentities memotong berurutan; semua chunk penuh kecuali yang terakhir.
func ChunkIdentities(ids []*regService.IdentityContext, capacity int) [][]*regService.IdentityContext {
	if capacity <= 0 || len(ids) == 0 {
		return nil
	}
	out := make([][]*regService.IdentityContext, 0, (len(ids)+capacity-1)/capacity)
	for start := 0; start < len(ids); start += capacity {
		end := start + capacity
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}

/* =========================================================
   GENERATOR
========================================================= */

type Generator struct {
	DB     *gorm.DB
	Scopes *mastersService.ScopeResolver
	Lookup *regService.LookupIndexBuilder
}

func NewGenerator(db *gorm.DB, lookupPageSize int) *Generator {
	return &Generator{
		DB:     db,
		Scopes: mastersService.NewScopeResolver(db),
		Lookup: regService.NewLookupIndexBuilder(db, lookupPageSize),
	}
}

// Generate menjalankan pembuatan paket per course secara berurutan.
// Error scope (institution/session/course) dikembalikan sebagai *fiber.Error;
// error per course ditempel di CourseResult masing-masing.
func (g *Generator) Generate(ctx context.Context, req dto.GeneratePacketsRequest) (*dto.GeneratePacketsResponse, error) {
	req.Normalize()

	inst, err := g.Scopes.InstitutionByCode(ctx, req.InstitutionCode)
	if err != nil {
		return nil, err
	}
	sess, err := g.Scopes.SessionByCode(ctx, inst.InstitutionID, req.SessionCode)
	if err != nil {
		return nil, err
	}
	courses, err := g.Scopes.CoursesForGeneration(ctx, inst.InstitutionID, sess.ExaminationSessionID, req.CourseCode)
	if err != nil {
		return nil, err
	}

	resp := &dto.GeneratePacketsResponse{
		Success:       true,
		CourseResults: make([]dto.CourseResult, 0, len(courses)),
	}
	for _, c := range courses {
		res := g.generateForCourse(ctx, inst.InstitutionID, sess.ExaminationSessionID, c)
		resp.TotalPacketsCreated += res.PacketsCreated
		resp.TotalStudentsAssigned += res.StudentsAssigned
		resp.CourseResults = append(resp.CourseResults, res)
	}
	resp.CoursesProcessed = len(courses)

	log.Infow("📦 packet generation finished",
		"institution", inst.InstitutionCode,
		"session", sess.ExaminationSessionCode,
		"courses", resp.CoursesProcessed,
		"packets", resp.TotalPacketsCreated,
		"assigned", resp.TotalStudentsAssigned,
	)
	return resp, nil
}

func (g *Generator) generateForCourse(ctx context.Context, institutionID, sessionID uuid.UUID, course mastersModel.CourseModel) dto.CourseResult {
	capacity := PacketCapacity(course.CourseLevel)
	res := dto.CourseResult{
		CourseID:   course.CourseID,
		CourseCode: course.CourseCode,
		Debug:      &dto.CourseDebug{Capacity: capacity, Level: course.CourseLevel},
	}

	// 1) bersihkan paket hasil generate sebelumnya (manual tetap)
	cleared, err := g.ClearGeneratedPackets(ctx, institutionID, sessionID, course.CourseID)
	if err != nil {
		log.Errorw("❌ clear generated packets failed", "course", course.CourseCode, "err", err)
		res.Error = fmt.Sprintf("Failed to clear previous packets for course %s", course.CourseCode)
		return res
	}
	res.Debug.ClearedPackets = cleared

	// 2) index identitas untuk course ini
	ix, err := g.Lookup.Build(ctx, regService.LookupScope{
		InstitutionID: institutionID,
		SessionID:     &sessionID,
		CourseID:      &course.CourseID,
	})
	if err != nil {
		log.Errorw("❌ build lookup index failed", "course", course.CourseCode, "err", err)
		res.Error = fmt.Sprintf("Failed to load registrations for course %s", course.CourseCode)
		return res
	}
	res.Debug.TotalIdentities = ix.Len()
	if ix.Len() == 0 {
		res.Error = fmt.Sprintf("No registrations found for course %s", course.CourseCode)
		return res
	}

	// 3) gerbang kehadiran + identitas yang sudah dipegang paket manual
	eligible := make([]*regService.IdentityContext, 0, ix.Len())
	for _, ic := range ix.Identities() {
		if !ic.Attendance.Eligible {
			res.Debug.Absent++
			continue
		}
		if ic.PacketID != nil {
			res.Debug.HeldInManual++
			continue
		}
		eligible = append(eligible, ic)
	}
	res.Debug.Eligible = len(eligible)
	if len(eligible) == 0 {
		res.Error = fmt.Sprintf("No eligible students (present) found for course %s", course.CourseCode)
		return res
	}

	// 4) urut + potong + buat paket
	SortByDummyNumber(eligible)
	chunks := ChunkIdentities(eligible, capacity)
	total := len(chunks)
	for i, chunk := range chunks {
		packet := model.AnswerSheetPacketModel{
			AnswerSheetPacketInstitutionID: institutionID,
			AnswerSheetPacketSessionID:     sessionID,
			AnswerSheetPacketCourseID:      course.CourseID,
			AnswerSheetPacketNumber:        PacketNumber(i+1, total),
			AnswerSheetPacketSequence:      i + 1,
			AnswerSheetPacketTotalSheets:   len(chunk),
			AnswerSheetPacketStatus:        model.PacketStatusCreated,
			AnswerSheetPacketPending:       len(chunk),
			AnswerSheetPacketOrigin:        model.PacketOriginGenerated,
		}
		assigned, err := g.createPacket(ctx, &packet, chunk)
		if err != nil {
			if helper.IsUniqueViolation(errors.Cause(err)) {
				res.Debug.SkippedChunks++
				res.Debug.SkippedIdentities += len(chunk)
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"Packet %s already exists for course %s; %d answer sheets left unassigned",
					packet.AnswerSheetPacketNumber, course.CourseCode, len(chunk)))
				log.Warnw("⚠️ packet number conflict, chunk skipped",
					"course", course.CourseCode, "packet", packet.AnswerSheetPacketNumber)
				continue
			}
			log.Errorw("❌ create packet failed", "course", course.CourseCode, "packet", packet.AnswerSheetPacketNumber, "err", err)
			res.Error = fmt.Sprintf("Failed to create packet %s for course %s", packet.AnswerSheetPacketNumber, course.CourseCode)
			return res
		}
		res.PacketsCreated++
		res.StudentsAssigned += assigned
	}
	return res
}

// ClearGeneratedPackets melepas link identitas lalu menghapus paket Generated, dalam satu transaksi.
func (g *Generator) ClearGeneratedPackets(ctx context.Context, institutionID, sessionID, courseID uuid.UUID) (int64, error) {
	var deleted int64
	err := g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		generated := tx.Model(&model.AnswerSheetPacketModel{}).
			Select("answer_sheet_packet_id").
			Where(`answer_sheet_packet_institution_id = ?
				AND answer_sheet_packet_session_id = ?
				AND answer_sheet_packet_course_id = ?
				AND answer_sheet_packet_origin = ?`,
				institutionID, sessionID, courseID, model.PacketOriginGenerated)

		if err := tx.Model(&regModel.StudentDummyNumberModel{}).
			Where("student_dummy_number_packet_id IN (?)", generated).
			Update("student_dummy_number_packet_id", nil).Error; err != nil {
			return errors.Wrap(err, "unlink identities")
		}

		del := tx.Where(`answer_sheet_packet_institution_id = ?
				AND answer_sheet_packet_session_id = ?
				AND answer_sheet_packet_course_id = ?
				AND answer_sheet_packet_origin = ?`,
			institutionID, sessionID, courseID, model.PacketOriginGenerated).
			Delete(&model.AnswerSheetPacketModel{})
		if del.Error != nil {
			return errors.Wrap(del.Error, "delete generated packets")
		}
		deleted = del.RowsAffected
		return nil
	})
	return deleted, err
}

// createPacket: insert paket + assign identitas chunk secara atomik.
func (g *Generator) createPacket(ctx context.Context, packet *model.AnswerSheetPacketModel, chunk []*regService.IdentityContext) (int, error) {
	ids := make([]uuid.UUID, 0, len(chunk))
	for _, ic := range chunk {
		ids = append(ids, ic.DummyNumberID)
	}

	assigned := 0
	err := g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(packet).Error; err != nil {
			return errors.Wrapf(err, "insert packet %s", packet.AnswerSheetPacketNumber)
		}
		up := tx.Model(&regModel.StudentDummyNumberModel{}).
			Where("student_dummy_number_id IN ? AND student_dummy_number_packet_id IS NULL", ids).
			Update("student_dummy_number_packet_id", packet.AnswerSheetPacketID)
		if up.Error != nil {
			return errors.Wrapf(up.Error, "assign packet %s", packet.AnswerSheetPacketNumber)
		}
		assigned = int(up.RowsAffected)
		return nil
	})
	return assigned, err
}

/* =========================================================
   LIST
========================================================= */

func (g *Generator) ListPackets(ctx context.Context, institutionCode, sessionCode, courseCode string, offset, limit int) ([]model.AnswerSheetPacketModel, int64, error) {
	inst, err := g.Scopes.InstitutionByCode(ctx, institutionCode)
	if err != nil {
		return nil, 0, err
	}
	sess, err := g.Scopes.SessionByCode(ctx, inst.InstitutionID, sessionCode)
	if err != nil {
		return nil, 0, err
	}

	q := g.DB.WithContext(ctx).Model(&model.AnswerSheetPacketModel{}).
		Where("answer_sheet_packet_institution_id = ? AND answer_sheet_packet_session_id = ?",
			inst.InstitutionID, sess.ExaminationSessionID)
	if strings.TrimSpace(courseCode) != "" {
		c, err := g.Scopes.CourseByCode(ctx, inst.InstitutionID, courseCode)
		if err != nil {
			return nil, 0, err
		}
		q = q.Where("answer_sheet_packet_course_id = ?", c.CourseID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count packets")
	}
	var rows []model.AnswerSheetPacketModel
	if err := q.Order("answer_sheet_packet_course_id ASC").
		Order("answer_sheet_packet_sequence ASC").
		Offset(offset).Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list packets")
	}
	return rows, total, nil
}
