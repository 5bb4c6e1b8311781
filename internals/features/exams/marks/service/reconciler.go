package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"examportal_backend/internals/features/exams/marks/dto"
	"examportal_backend/internals/features/exams/marks/model"
	mastersService "examportal_backend/internals/features/exams/masters/service"
	regService "examportal_backend/internals/features/exams/registrations/service"
	ubModel "examportal_backend/internals/features/exams/upload_batches/model"
	ubService "examportal_backend/internals/features/exams/upload_batches/service"
	helper "examportal_backend/internals/helpers"
	"examportal_backend/internals/helpers/dbtime"
)

// RollupStatus: Failed bila semua baris gagal; Partial bila ada gagal/skip
// dan minimal satu sukses; selain itu Completed.
func RollupStatus(total, successful, failed, skipped int) ubModel.BatchStatus {
	switch {
	case total > 0 && failed == total:
		return ubModel.BatchStatusFailed
	case (failed > 0 || skipped > 0) && successful >= 1:
		return ubModel.BatchStatusPartial
	default:
		return ubModel.BatchStatusCompleted
	}
}

type Options struct {
	LookupPageSize int
	BatchCodeSalt  string
	Location       *time.Location
}

type Reconciler struct {
	DB       *gorm.DB
	Scopes   *mastersService.ScopeResolver
	Lookup   *regService.LookupIndexBuilder
	Tracker  *ubService.Tracker
	Location *time.Location
	Clock    dbtime.Clock
}

func NewReconciler(db *gorm.DB, opt Options) *Reconciler {
	loc := opt.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Reconciler{
		DB:       db,
		Scopes:   mastersService.NewScopeResolver(db),
		Lookup:   regService.NewLookupIndexBuilder(db, opt.LookupPageSize),
		Tracker:  ubService.NewTracker(db, opt.BatchCodeSalt),
		Location: loc,
	}
}

// run: state satu request upload.
type run struct {
	scope     *mastersService.UploadScope
	ix        *regService.LookupIndex
	existing  map[uuid.UUID]float64 // dummy number id → nilai aktif
	batchID   *uuid.UUID
	evalDate  time.Time
	resp      *dto.BulkUploadResponse
	enteredBy *string
}

// Upload memproses baris satu per satu. Error scope → *fiber.Error;
// error per baris dikumpulkan di response.
func (r *Reconciler) Upload(ctx context.Context, cmd *dto.BulkUpload) (*dto.BulkUploadResponse, error) {
	if cmd == nil || len(cmd.Rows) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "No rows to upload")
	}

	scope, err := r.Scopes.ResolveUploadScope(ctx, cmd.InstitutionID, cmd.SessionID, cmd.ProgramID, cmd.CourseID)
	if err != nil {
		return nil, err
	}

	batchScope := ubService.Scope{
		InstitutionID: cmd.InstitutionID,
		SessionID:     cmd.SessionID,
		ProgramID:     cmd.ProgramID,
		CourseID:      cmd.CourseID,
	}
	hash := ubService.FileFingerprint(cmd.RowsJSON)
	if err := r.Tracker.EnsureNotDuplicate(ctx, batchScope, hash); err != nil {
		if _, ok := err.(*fiber.Error); ok {
			return nil, err
		}
		log.Errorw("❌ duplicate upload check failed", "err", err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to check previous uploads")
	}

	// sudah lolos cek duplikat: batch tidak dibatalkan di tengah jalan,
	// baris yang sudah tersimpan tetap dan batch selalu difinalisasi.
	ctx = context.WithoutCancel(ctx)

	total := len(cmd.Rows)
	resp := &dto.BulkUploadResponse{
		Success:          true,
		Total:            total,
		Errors:           []string{},
		ValidationErrors: []dto.RowValidationError{},
		SkippedRows:      []dto.SkippedRow{},
	}

	// batch gagal dibuat → tetap proses tanpa jejak audit
	batch, err := r.Tracker.Begin(ctx, ubService.BeginInput{
		Scope:      batchScope,
		FileName:   cmd.FileName,
		FileSize:   cmd.FileSize,
		FileType:   cmd.FileType,
		FileHash:   hash,
		Total:      total,
		UploadedBy: cmd.UploadedBy,
	})
	if errors.Is(err, ubService.ErrDuplicateUpload) {
		return nil, err
	}
	if err != nil {
		log.Warnw("⚠️ upload batch not created, processing without audit trail",
			"course", scope.Course.CourseCode, "err", err)
		batch = nil
	}
	var batchID *uuid.UUID
	if batch != nil {
		id := batch.MarkUploadBatchID
		batchID = &id
		resp.BatchID = batchID
		resp.BatchCode = batch.MarkUploadBatchCode
	}

	ix, err := r.Lookup.Build(ctx, regService.LookupScope{InstitutionID: cmd.InstitutionID})
	if err != nil {
		log.Errorw("❌ build lookup index failed", "err", err)
		r.failBatch(ctx, batchID, total, "Failed to load registrations")
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load registrations")
	}
	existing, err := r.activeMarks(ctx, cmd.InstitutionID, cmd.CourseID)
	if err != nil {
		log.Errorw("❌ load existing marks failed", "err", err)
		r.failBatch(ctx, batchID, total, "Failed to load existing marks")
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load existing marks")
	}

	st := &run{
		scope:     scope,
		ix:        ix,
		existing:  existing,
		batchID:   batchID,
		evalDate:  dbtime.DayOf(r.Clock.Now(), r.Location),
		resp:      resp,
		enteredBy: cmd.UploadedBy,
	}
	for _, row := range cmd.Rows {
		r.reconcileRow(ctx, st, row)
	}

	resp.Failed = len(resp.ValidationErrors) + len(resp.Errors)
	resp.Skipped = len(resp.SkippedRows)
	resp.Status = RollupStatus(total, resp.Successful, resp.Failed, resp.Skipped)

	messages := append([]string{}, resp.Errors...)
	for _, ve := range resp.ValidationErrors {
		messages = append(messages, ve.Errors...)
	}
	resp.ErrorSummary = ubService.BuildErrorSummary(messages)
	resp.Message = processingSummary(resp)

	if batchID != nil {
		if err := r.Tracker.Finalize(ctx, *batchID, ubService.FinalizeInput{
			Status:            resp.Status,
			Total:             total,
			Successful:        resp.Successful,
			Failed:            resp.Failed,
			Skipped:           resp.Skipped,
			Errors:            resp.Errors,
			ValidationErrors:  resp.ValidationErrors,
			SkippedDetails:    resp.SkippedRows,
			ErrorSummary:      resp.ErrorSummary,
			ProcessingSummary: resp.Message,
		}); err != nil {
			log.Warnw("⚠️ finalize upload batch failed", "batch_id", *batchID, "err", err)
		}
	}

	log.Infow("📝 bulk mark upload finished",
		"course", scope.Course.CourseCode,
		"status", resp.Status,
		"total", total,
		"successful", resp.Successful,
		"failed", resp.Failed,
		"skipped", resp.Skipped,
	)
	return resp, nil
}

func (r *Reconciler) failBatch(ctx context.Context, batchID *uuid.UUID, total int, reason string) {
	if batchID == nil {
		return
	}
	if err := r.Tracker.MarkFailed(ctx, *batchID, total, reason); err != nil {
		log.Warnw("⚠️ mark upload batch failed", "batch_id", *batchID, "err", err)
	}
}

func (r *Reconciler) activeMarks(ctx context.Context, institutionID, courseID uuid.UUID) (map[uuid.UUID]float64, error) {
	var rows []model.MarksEntryModel
	if err := r.DB.WithContext(ctx).
		Select("marks_entry_dummy_number_id", "marks_entry_marks_obtained").
		Where("marks_entry_institution_id = ? AND marks_entry_course_id = ? AND marks_entry_is_active = ?",
			institutionID, courseID, true).
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "fetch active marks")
	}
	out := make(map[uuid.UUID]float64, len(rows))
	for _, m := range rows {
		out[m.MarksEntryDummyNumberID] = m.MarksEntryMarksObtained
	}
	return out, nil
}

/* =========================================================
   PER ROW
========================================================= */

func (r *Reconciler) reconcileRow(ctx context.Context, st *run, row dto.MarkUploadRow) {
	reject := func(msgs ...string) {
		st.resp.ValidationErrors = append(st.resp.ValidationErrors, dto.RowValidationError{
			Row:         row.RowNumber,
			DummyNumber: row.DummyNumber,
			CourseCode:  row.CourseCode,
			Errors:      msgs,
		})
	}

	// 1) field wajib
	var required []string
	if row.DummyNumber == "" {
		required = append(required, "Dummy number is required")
	}
	if row.CourseCode == "" {
		required = append(required, "Course code is required")
	}
	if row.MarksObtained == "" {
		required = append(required, "Marks obtained is required")
	}
	if row.MarksOutOf == "" {
		required = append(required, "Marks out of is required")
	}
	if len(required) > 0 {
		reject(required...)
		return
	}

	// 2) course harus sama dengan course yang dipilih; kode yang tidak dikenal → not found
	scopedCode := st.scope.Course.CourseCode
	if !strings.EqualFold(strings.TrimSpace(row.CourseCode), strings.TrimSpace(scopedCode)) {
		if !st.ix.HasCourseCode(row.CourseCode) {
			reject(fmt.Sprintf("Course code %q not found", row.CourseCode))
			return
		}
		reject(fmt.Sprintf("Course code %q does not match the selected course %q", row.CourseCode, scopedCode))
		return
	}

	// 3) klasifikasi lookup
	ic, msg := r.resolveIdentity(st, row)
	if msg != "" {
		reject(msg)
		return
	}

	// 4) kehadiran
	if !ic.Attendance.Eligible {
		reject(fmt.Sprintf("Student is marked %s for course %s; absent students cannot receive marks",
			ic.Attendance.Status, row.CourseCode))
		return
	}

	// 5) angka (semua pelanggaran dikumpulkan)
	obtained, outOf, errs := validateMarks(row.MarksObtained, row.MarksOutOf)
	if len(errs) > 0 {
		reject(errs...)
		return
	}

	// 6) nilai aktif sudah ada → skip, tidak pernah ditimpa
	if prev, ok := st.existing[ic.DummyNumberID]; ok {
		st.resp.SkippedRows = append(st.resp.SkippedRows, skippedExisting(row, prev))
		return
	}

	// 7) insert
	entry := model.MarksEntryModel{
		MarksEntryInstitutionID:  st.scope.Institution.InstitutionID,
		MarksEntrySessionID:      st.scope.Session.ExaminationSessionID,
		MarksEntryProgramID:      st.scope.Program.ProgramID,
		MarksEntryCourseID:       ic.CourseID,
		MarksEntryDummyNumberID:  ic.DummyNumberID,
		MarksEntryRegistrationID: ic.RegistrationID,
		MarksEntryMarksObtained:  obtained,
		MarksEntryMarksOutOf:     outOf,
		MarksEntryMarksInWords:   MarksInWords(obtained),
		MarksEntryRemarks:        strPtrOrNil(row.Remarks),
		MarksEntryEvaluationDate: st.evalDate,
		MarksEntryStatus:         model.EntryStatusDraft,
		MarksEntrySource:         model.EntrySourceBulkUpload,
		MarksEntryUploadBatchID:  st.batchID,
		MarksEntryIsActive:       true,
		MarksEntryEnteredBy:      st.enteredBy,
	}
	if err := r.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			st.resp.SkippedRows = append(st.resp.SkippedRows, dto.SkippedRow{
				Row:         row.RowNumber,
				DummyNumber: row.DummyNumber,
				CourseCode:  row.CourseCode,
				Reason:      fmt.Sprintf("Marks already exist for dummy number %s", row.DummyNumber),
			})
			return
		}
		log.Errorw("❌ insert marks failed", "row", row.RowNumber, "dummy_number", row.DummyNumber, "err", err)
		st.resp.Errors = append(st.resp.Errors, fmt.Sprintf("Failed to save marks for dummy number %s", row.DummyNumber))
		return
	}
	st.existing[ic.DummyNumberID] = obtained
	st.resp.Successful++
}

// resolveIdentity mempersempit kandidat ke session & program yang dipilih.
// msg non-kosong = alasan penolakan yang spesifik.
func (r *Reconciler) resolveIdentity(st *run, row dto.MarkUploadRow) (*regService.IdentityContext, string) {
	cands := st.ix.Lookup(row.DummyNumber, row.CourseCode)
	if len(cands) == 0 {
		switch {
		case !st.ix.HasDummyNumber(row.DummyNumber):
			return nil, fmt.Sprintf("Dummy number %q not found", row.DummyNumber)
		case !st.ix.HasCourseCode(row.CourseCode):
			return nil, fmt.Sprintf("Course code %q not found", row.CourseCode)
		default:
			return nil, fmt.Sprintf("Dummy number %q is not registered for course %q", row.DummyNumber, row.CourseCode)
		}
	}

	inSession := make([]*regService.IdentityContext, 0, len(cands))
	for _, c := range cands {
		if c.SessionID == st.scope.Session.ExaminationSessionID {
			inSession = append(inSession, c)
		}
	}
	if len(inSession) == 0 {
		return nil, fmt.Sprintf("Dummy number %q belongs to a different examination session than %q",
			row.DummyNumber, st.scope.Session.ExaminationSessionCode)
	}

	for _, c := range inSession {
		if c.ProgramID != nil && *c.ProgramID == st.scope.Program.ProgramID {
			return c, ""
		}
	}
	return nil, fmt.Sprintf("Dummy number %q is registered under a different program than %q",
		row.DummyNumber, st.scope.Program.ProgramCode)
}

// validateMarks memeriksa nilai mentah; pembulatan 2 desimal hanya untuk disimpan.
func validateMarks(obtainedRaw, outOfRaw string) (float64, float64, []string) {
	var errs []string

	obtained, obtainedErr := parseMark(obtainedRaw)
	switch {
	case obtainedErr != nil:
		errs = append(errs, fmt.Sprintf("Marks obtained %q is not a valid number", obtainedRaw))
	case obtained < 0:
		errs = append(errs, "Marks obtained cannot be negative")
	case roundMark(obtained) == 0:
		errs = append(errs, "Marks obtained cannot be 0; leave the row out or record the student as absent")
	}

	outOf, outOfErr := parseMark(outOfRaw)
	switch {
	case outOfErr != nil:
		errs = append(errs, fmt.Sprintf("Marks out of %q is not a valid number", outOfRaw))
	case roundMark(outOf) <= 0:
		errs = append(errs, "Marks out of must be greater than 0")
	}

	if obtainedErr == nil && outOfErr == nil && roundMark(outOf) > 0 && obtained > outOf {
		errs = append(errs, fmt.Sprintf("Marks obtained (%s) cannot exceed marks out of (%s)",
			formatMark(obtained), formatMark(outOf)))
	}
	return roundMark(obtained), roundMark(outOf), errs
}

// parseMark: NaN/Inf ditolak, tanpa pembulatan.
func parseMark(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}

func roundMark(v float64) float64 { return math.Round(v*100) / 100 }

func formatMark(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func skippedExisting(row dto.MarkUploadRow, prev float64) dto.SkippedRow {
	p := prev
	return dto.SkippedRow{
		Row:           row.RowNumber,
		DummyNumber:   row.DummyNumber,
		CourseCode:    row.CourseCode,
		Reason:        fmt.Sprintf("Marks already exist for dummy number %s (existing: %s)", row.DummyNumber, formatMark(prev)),
		ExistingMarks: &p,
	}
}

func strPtrOrNil(s string) *string {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil
	}
	return &t
}

func processingSummary(resp *dto.BulkUploadResponse) string {
	return fmt.Sprintf("Processed %d rows: %d successful, %d failed, %d skipped",
		resp.Total, resp.Successful, resp.Failed, resp.Skipped)
}

/* =========================================================
   BULK DELETE (per batch)
========================================================= */

// DeleteBatchMarks menghapus nilai Draft hasil bulk upload milik satu batch.
// Nilai manual dan nilai yang sudah diverifikasi/publish tidak disentuh.
func DeleteBatchMarks(ctx context.Context, db *gorm.DB, batchID uuid.UUID) (int64, error) {
	res := db.WithContext(ctx).
		Where("marks_entry_upload_batch_id = ? AND marks_entry_source = ? AND marks_entry_status = ?",
			batchID, model.EntrySourceBulkUpload, model.EntryStatusDraft).
		Delete(&model.MarksEntryModel{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "delete batch marks")
	}
	return res.RowsAffected, nil
}
