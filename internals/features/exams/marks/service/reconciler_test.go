package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"

	"examportal_backend/internals/features/exams/marks/dto"
	"examportal_backend/internals/features/exams/marks/model"
	"examportal_backend/internals/features/exams/marks/service"
	mastersModel "examportal_backend/internals/features/exams/masters/model"
	"examportal_backend/internals/features/exams/testfixture"
	ubModel "examportal_backend/internals/features/exams/upload_batches/model"
	ubService "examportal_backend/internals/features/exams/upload_batches/service"
)

var fixedNow = time.Date(2025, 11, 20, 23, 30, 0, 0, time.UTC)

func newReconciler(f *testfixture.Fixture) *service.Reconciler {
	r := service.NewReconciler(f.DB, service.Options{LookupPageSize: 5, BatchCodeSalt: "test salt"})
	clock := func() time.Time { return fixedNow }
	r.Clock = clock
	r.Tracker.Clock = clock
	return r
}

type row map[string]any

func command(t *testing.T, f *testfixture.Fixture, course mastersModel.CourseModel, rows ...row) *dto.BulkUpload {
	t.Helper()
	raw, err := json.Marshal(rows)
	if err != nil {
		t.Fatalf("marshal rows: %v", err)
	}
	parsed, err := dto.ParseUploadRows(gjson.ParseBytes(raw))
	if err != nil {
		t.Fatalf("ParseUploadRows() error = %v", err)
	}
	by := "examiner-1"
	return &dto.BulkUpload{
		InstitutionID: f.Institution.InstitutionID,
		SessionID:     f.Session.ExaminationSessionID,
		ProgramID:     f.Program.ProgramID,
		CourseID:      course.CourseID,
		Rows:          parsed,
		RowsJSON:      string(raw),
		UploadedBy:    &by,
		FileName:      "marks.xlsx",
		FileType:      "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
}

func mark(dummy, course string, obtained any) row {
	return row{"dummy_number": dummy, "course_code": course, "marks_obtained": obtained, "marks_out_of": 100}
}

func upload(t *testing.T, r *service.Reconciler, cmd *dto.BulkUpload) *dto.BulkUploadResponse {
	t.Helper()
	resp, err := r.Upload(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	return resp
}

func activeMarks(t *testing.T, f *testfixture.Fixture) []model.MarksEntryModel {
	t.Helper()
	var rows []model.MarksEntryModel
	if err := f.DB.Where("marks_entry_is_active = ?", true).Find(&rows).Error; err != nil {
		t.Fatalf("load marks: %v", err)
	}
	return rows
}

func TestRollupStatus(t *testing.T) {
	tests := []struct {
		total, ok, failed, skipped int
		want                       ubModel.BatchStatus
	}{
		{5, 5, 0, 0, ubModel.BatchStatusCompleted},
		{5, 4, 1, 0, ubModel.BatchStatusPartial},
		{5, 4, 0, 1, ubModel.BatchStatusPartial},
		{5, 0, 5, 0, ubModel.BatchStatusFailed},
		{5, 0, 0, 5, ubModel.BatchStatusCompleted},
		{5, 0, 3, 2, ubModel.BatchStatusCompleted},
		{0, 0, 0, 0, ubModel.BatchStatusCompleted},
	}
	for _, tt := range tests {
		if got := service.RollupStatus(tt.total, tt.ok, tt.failed, tt.skipped); got != tt.want {
			t.Fatalf("RollupStatus(%d,%d,%d,%d) = %s, want %s", tt.total, tt.ok, tt.failed, tt.skipped, got, tt.want)
		}
	}
}

func TestUploadRejectsZeroMarks(t *testing.T) {
	f := testfixture.New(t)
	course := f.AddCourse(t, "CS101", "UG")
	f.AddStudents(t, course, "DN", 1, 5, "Present")

	resp := upload(t, newReconciler(f), command(t, f, course,
		mark("DN0001", "CS101", 0),
		mark("DN0002", "CS101", 45.5),
		mark("DN0003", "CS101", "72"),
		mark("DN0004", "CS101", 88),
		mark("DN0005", "CS101", 61.25),
	))

	if resp.Total != 5 || resp.Successful != 4 || resp.Failed != 1 || resp.Skipped != 0 {
		t.Fatalf("counts = %+v", resp)
	}
	if resp.Status != ubModel.BatchStatusPartial {
		t.Fatalf("status = %s, want Partial", resp.Status)
	}
	if len(resp.ValidationErrors) != 1 {
		t.Fatalf("validation errors = %+v", resp.ValidationErrors)
	}
	ve := resp.ValidationErrors[0]
	if ve.Row != 2 || ve.DummyNumber != "DN0001" || !strings.Contains(ve.Errors[0], "cannot be 0") {
		t.Fatalf("validation error = %+v", ve)
	}
	if resp.Message != "Processed 5 rows: 4 successful, 1 failed, 0 skipped" {
		t.Fatalf("message = %q", resp.Message)
	}

	marks := activeMarks(t, f)
	if len(marks) != 4 {
		t.Fatalf("stored marks = %d, want 4", len(marks))
	}
	for _, m := range marks {
		if m.MarksEntryStatus != model.EntryStatusDraft || m.MarksEntrySource != model.EntrySourceBulkUpload {
			t.Fatalf("entry status/source = %s/%s", m.MarksEntryStatus, m.MarksEntrySource)
		}
		if m.MarksEntryUploadBatchID == nil || *m.MarksEntryUploadBatchID != *resp.BatchID {
			t.Fatalf("entry not linked to batch")
		}
		if m.MarksEntryEnteredBy == nil || *m.MarksEntryEnteredBy != "examiner-1" {
			t.Fatalf("entered_by = %v", m.MarksEntryEnteredBy)
		}
		if !m.MarksEntryEvaluationDate.Equal(time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("evaluation date = %v", m.MarksEntryEvaluationDate)
		}
		if m.MarksEntryMarksObtained == 45.5 && m.MarksEntryMarksInWords != "Forty Five Point Five" {
			t.Fatalf("marks in words = %q", m.MarksEntryMarksInWords)
		}
	}
}

func TestUploadCourseMismatchNamesCourse(t *testing.T) {
	f := testfixture.New(t)
	cs := f.AddCourse(t, "CS101", "UG")
	ma := f.AddCourse(t, "MA201", "UG")
	f.AddStudent(t, cs, "DN0001", "Present")
	f.AddStudent(t, ma, "DN0900", "Present")

	resp := upload(t, newReconciler(f), command(t, f, cs,
		mark("DN0900", "CS101", 50),
		mark("DN0001", "MA201", 50),
		mark("DN0001", "CS101", 50),
	))

	if resp.Successful != 1 || resp.Failed != 2 {
		t.Fatalf("counts = %+v", resp)
	}
	wrongCourse := resp.ValidationErrors[0].Errors[0]
	if wrongCourse != `Dummy number "DN0900" is not registered for course "CS101"` {
		t.Fatalf("row 2 error = %q", wrongCourse)
	}
	wrongScope := resp.ValidationErrors[1].Errors[0]
	if wrongScope != `Course code "MA201" does not match the selected course "CS101"` {
		t.Fatalf("row 3 error = %q", wrongScope)
	}
	for _, ve := range resp.ValidationErrors {
		if strings.Contains(ve.Errors[0], "not found") {
			t.Fatalf("course mismatch reported as not found: %q", ve.Errors[0])
		}
	}
}

func TestUploadUnknownCourseCodeIsNotFound(t *testing.T) {
	f := testfixture.New(t)
	cs := f.AddCourse(t, "CS101", "UG")
	ma := f.AddCourse(t, "MA201", "UG")
	f.AddStudent(t, cs, "DN0001", "Present")
	f.AddStudent(t, ma, "DN0002", "Present")

	resp := upload(t, newReconciler(f), command(t, f, cs,
		mark("DN0001", "ZZ999", 50),
		mark("DN0002", "MA201", 50),
	))

	want := []string{
		`Course code "ZZ999" not found`,
		`Course code "MA201" does not match the selected course "CS101"`,
	}
	if len(resp.ValidationErrors) != len(want) {
		t.Fatalf("validation errors = %+v", resp.ValidationErrors)
	}
	for i, w := range want {
		if got := resp.ValidationErrors[i].Errors[0]; got != w {
			t.Fatalf("row %d error = %q, want %q", resp.ValidationErrors[i].Row, got, w)
		}
	}
}

func TestUploadLookupFailures(t *testing.T) {
	f := testfixture.New(t)
	cs := f.AddCourse(t, "CS101", "UG")
	other := f.AddSession(t, "MAY-2026")
	prog := f.AddProgram(t, "BSC-MATH")
	f.AddStudentIn(t, other, f.Program, cs, "DN0500", "Present")
	f.AddStudentIn(t, f.Session, prog, cs, "DN0600", "Present")

	resp := upload(t, newReconciler(f), command(t, f, cs,
		mark("NOPE", "CS101", 50),
		mark("DN0500", "CS101", 50),
		mark("DN0600", "CS101", 50),
		row{"dummy_number": "", "course_code": "CS101"},
	))

	want := []string{
		`Dummy number "NOPE" not found`,
		`Dummy number "DN0500" belongs to a different examination session than "NOV-2025"`,
		`Dummy number "DN0600" is registered under a different program than "BSC-CS"`,
		"Dummy number is required",
	}
	if len(resp.ValidationErrors) != len(want) {
		t.Fatalf("validation errors = %+v", resp.ValidationErrors)
	}
	for i, w := range want {
		if resp.ValidationErrors[i].Errors[0] != w {
			t.Fatalf("row %d error = %q, want %q", resp.ValidationErrors[i].Row, resp.ValidationErrors[i].Errors[0], w)
		}
	}
	if resp.Status != ubModel.BatchStatusFailed {
		t.Fatalf("status = %s, want Failed", resp.Status)
	}
}

func TestUploadRejectsAbsentAndBadNumbers(t *testing.T) {
	f := testfixture.New(t)
	cs := f.AddCourse(t, "CS101", "UG")
	f.AddStudent(t, cs, "DN0001", "Absent")
	f.AddStudent(t, cs, "DN0002", "Present")

	resp := upload(t, newReconciler(f), command(t, f, cs,
		mark("DN0001", "CS101", 50),
		row{"dummy_number": "DN0002", "course_code": "CS101", "marks_obtained": 120, "marks_out_of": 100},
		row{"dummy_number": "DN0002", "course_code": "CS101", "marks_obtained": "abc", "marks_out_of": 0},
	))

	if got := resp.ValidationErrors[0].Errors[0]; got != "Student is marked Absent for course CS101; absent students cannot receive marks" {
		t.Fatalf("absent error = %q", got)
	}
	if got := resp.ValidationErrors[1].Errors[0]; got != "Marks obtained (120) cannot exceed marks out of (100)" {
		t.Fatalf("exceed error = %q", got)
	}
	if got := resp.ValidationErrors[2].Errors; len(got) != 2 {
		t.Fatalf("number errors = %v", got)
	}
	if len(activeMarks(t, f)) != 0 {
		t.Fatalf("no marks expected")
	}
}

func TestUploadNeverOverwritesExistingMarks(t *testing.T) {
	f := testfixture.New(t)
	cs := f.AddCourse(t, "CS101", "UG")
	f.AddStudents(t, cs, "DN", 1, 2, "Present")
	r := newReconciler(f)

	first := upload(t, r, command(t, f, cs, mark("DN0001", "CS101", 40)))
	if first.Successful != 1 || first.Status != ubModel.BatchStatusCompleted {
		t.Fatalf("first upload = %+v", first)
	}

	// file berbeda, nilai lama tetap
	second := upload(t, r, command(t, f, cs,
		mark("DN0001", "CS101", 90),
		mark("DN0002", "CS101", 70),
		mark("DN0002", "CS101", 75),
	))
	if second.Successful != 1 || second.Skipped != 2 || second.Status != ubModel.BatchStatusPartial {
		t.Fatalf("second upload = %+v", second)
	}
	sk := second.SkippedRows[0]
	if sk.Reason != "Marks already exist for dummy number DN0001 (existing: 40)" || sk.ExistingMarks == nil || *sk.ExistingMarks != 40 {
		t.Fatalf("skip = %+v", sk)
	}
	if second.SkippedRows[1].Row != 4 {
		t.Fatalf("in-file duplicate row = %d", second.SkippedRows[1].Row)
	}

	byDummy := map[uuid.UUID]float64{}
	for _, m := range activeMarks(t, f) {
		byDummy[m.MarksEntryDummyNumberID] = m.MarksEntryMarksObtained
	}
	if len(byDummy) != 2 {
		t.Fatalf("active marks = %v", byDummy)
	}
	for _, v := range byDummy {
		if v != 40 && v != 70 {
			t.Fatalf("unexpected stored mark %v", v)
		}
	}
}

func TestUploadDuplicateFileRejected(t *testing.T) {
	f := testfixture.New(t)
	cs := f.AddCourse(t, "CS101", "UG")
	f.AddStudent(t, cs, "DN0001", "Present")
	r := newReconciler(f)

	upload(t, r, command(t, f, cs, mark("DN0001", "CS101", 40)))
	_, err := r.Upload(context.Background(), command(t, f, cs, mark("DN0001", "CS101", 40)))
	fe, ok := err.(*fiber.Error)
	if !ok || fe.Code != fiber.StatusConflict {
		t.Fatalf("err = %v, want 409", err)
	}
}

func TestUploadPersistsBatchAudit(t *testing.T) {
	f := testfixture.New(t)
	cs := f.AddCourse(t, "CS101", "UG")
	f.AddStudents(t, cs, "DN", 1, 2, "Present")

	resp := upload(t, newReconciler(f), command(t, f, cs,
		mark("DN0001", "CS101", 40),
		mark("DN9999", "CS101", 40),
	))
	if resp.BatchID == nil || !strings.HasPrefix(resp.BatchCode, "MUB-20251120-") {
		t.Fatalf("batch = %v %q", resp.BatchID, resp.BatchCode)
	}

	var b ubModel.MarkUploadBatchModel
	if err := f.DB.Where("mark_upload_batch_id = ?", *resp.BatchID).Take(&b).Error; err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if b.MarkUploadBatchStatus != ubModel.BatchStatusPartial || b.MarkUploadBatchSuccessful != 1 || b.MarkUploadBatchFailed != 1 {
		t.Fatalf("batch = %s %d/%d", b.MarkUploadBatchStatus, b.MarkUploadBatchSuccessful, b.MarkUploadBatchFailed)
	}
	if b.MarkUploadBatchStartedAt == nil || b.MarkUploadBatchFinishedAt == nil {
		t.Fatalf("batch timestamps not set")
	}
	if !strings.Contains(string(b.MarkUploadBatchValidationErrors), `Dummy number \"DN9999\" not found`) {
		t.Fatalf("validation errors = %s", b.MarkUploadBatchValidationErrors)
	}
	if b.MarkUploadBatchUploadedBy == nil || *b.MarkUploadBatchUploadedBy != "examiner-1" {
		t.Fatalf("uploaded_by = %v", b.MarkUploadBatchUploadedBy)
	}
}

func TestUploadScopeErrors(t *testing.T) {
	f := testfixture.New(t)
	cs := f.AddCourse(t, "CS101", "UG")
	f.AddStudent(t, cs, "DN0001", "Present")
	r := newReconciler(f)

	cmd := command(t, f, cs, mark("DN0001", "CS101", 40))
	cmd.ProgramID = uuid.New()
	_, err := r.Upload(context.Background(), cmd)
	if fe, ok := err.(*fiber.Error); !ok || fe.Code != fiber.StatusNotFound {
		t.Fatalf("err = %v, want 404", err)
	}

	cmd = command(t, f, cs, mark("DN0001", "CS101", 40))
	cmd.Rows = nil
	_, err = r.Upload(context.Background(), cmd)
	if fe, ok := err.(*fiber.Error); !ok || fe.Code != fiber.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestDeleteBatchMarksKeepsReviewedAndManual(t *testing.T) {
	f := testfixture.New(t)
	cs := f.AddCourse(t, "CS101", "UG")
	students := f.AddStudents(t, cs, "DN", 1, 3, "Present")

	resp := upload(t, newReconciler(f), command(t, f, cs,
		mark("DN0001", "CS101", 40),
		mark("DN0002", "CS101", 50),
	))
	if err := f.DB.Model(&model.MarksEntryModel{}).
		Where("marks_entry_dummy_number_id = ?", students[1].StudentDummyNumberID).
		Update("marks_entry_status", model.EntryStatusVerified).Error; err != nil {
		t.Fatalf("verify entry: %v", err)
	}
	manual := model.MarksEntryModel{
		MarksEntryInstitutionID:  f.Institution.InstitutionID,
		MarksEntrySessionID:      f.Session.ExaminationSessionID,
		MarksEntryProgramID:      f.Program.ProgramID,
		MarksEntryCourseID:       cs.CourseID,
		MarksEntryDummyNumberID:  students[2].StudentDummyNumberID,
		MarksEntryRegistrationID: students[2].StudentDummyNumberRegistrationID,
		MarksEntryMarksObtained:  30,
		MarksEntryMarksOutOf:     100,
		MarksEntryMarksInWords:   service.MarksInWords(30),
		MarksEntryEvaluationDate: fixedNow,
		MarksEntryStatus:         model.EntryStatusDraft,
		MarksEntrySource:         model.EntrySourceManualEntry,
		MarksEntryUploadBatchID:  resp.BatchID,
		MarksEntryIsActive:       true,
	}
	if err := f.DB.Create(&manual).Error; err != nil {
		t.Fatalf("seed manual entry: %v", err)
	}

	deleted, err := service.DeleteBatchMarks(context.Background(), f.DB, *resp.BatchID)
	if err != nil {
		t.Fatalf("DeleteBatchMarks() error = %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
	if n := len(activeMarks(t, f)); n != 2 {
		t.Fatalf("remaining marks = %d, want 2", n)
	}
}

func TestUploadFinishesBatchWhenRequestIsCancelled(t *testing.T) {
	f := testfixture.New(t)
	cs := f.AddCourse(t, "CS101", "UG")
	f.AddStudents(t, cs, "DN", 1, 3, "Present")
	r := newReconciler(f)

	// klien putus setelah baris pertama tersimpan
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := f.DB.Callback().Create().After("gorm:create").Register("test:cancel_after_mark", func(tx *gorm.DB) {
		if tx.Statement.Table == "marks_entries" {
			cancel()
		}
	}); err != nil {
		t.Fatalf("register callback: %v", err)
	}

	cmd := command(t, f, cs,
		mark("DN0001", "CS101", 40),
		mark("DN0002", "CS101", 50),
		mark("DN0003", "CS101", 60),
	)
	resp, err := r.Upload(ctx, cmd)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if resp.Successful != 3 || resp.Failed != 0 || resp.Status != ubModel.BatchStatusCompleted {
		t.Fatalf("counts = %+v", resp)
	}
	if n := len(activeMarks(t, f)); n != 3 {
		t.Fatalf("stored marks = %d, want 3", n)
	}

	var b ubModel.MarkUploadBatchModel
	if err := f.DB.Where("mark_upload_batch_id = ?", *resp.BatchID).Take(&b).Error; err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if b.MarkUploadBatchStatus != ubModel.BatchStatusCompleted || b.MarkUploadBatchSuccessful != 3 || b.MarkUploadBatchFinishedAt == nil {
		t.Fatalf("stored batch = %s successful=%d", b.MarkUploadBatchStatus, b.MarkUploadBatchSuccessful)
	}
}

func TestUploadContinuesWithoutBatchWhenAuditFails(t *testing.T) {
	f := testfixture.New(t)
	cs := f.AddCourse(t, "CS101", "UG")
	f.AddStudent(t, cs, "DN0001", "Present")
	r := newReconciler(f)

	if err := f.DB.Callback().Create().Before("gorm:create").Register("test:fail_batch_insert", func(tx *gorm.DB) {
		if tx.Statement.Table == "mark_upload_batches" {
			_ = tx.AddError(errors.New("audit store unavailable"))
		}
	}); err != nil {
		t.Fatalf("register callback: %v", err)
	}

	resp := upload(t, r, command(t, f, cs, mark("DN0001", "CS101", 40)))
	if resp.BatchID != nil || resp.BatchCode != "" {
		t.Fatalf("batch = %v %q, want none", resp.BatchID, resp.BatchCode)
	}
	if resp.Successful != 1 || resp.Status != ubModel.BatchStatusCompleted {
		t.Fatalf("counts = %+v", resp)
	}

	marks := activeMarks(t, f)
	if len(marks) != 1 || marks[0].MarksEntryUploadBatchID != nil {
		t.Fatalf("marks = %+v", marks)
	}
	var n int64
	f.DB.Model(&ubModel.MarkUploadBatchModel{}).Count(&n)
	if n != 0 {
		t.Fatalf("batches = %d, want 0", n)
	}
}

func TestUploadConflictWhenIdenticalUploadIsInFlight(t *testing.T) {
	f := testfixture.New(t)
	cs := f.AddCourse(t, "CS101", "UG")
	f.AddStudent(t, cs, "DN0001", "Present")
	r := newReconciler(f)
	cmd := command(t, f, cs, mark("DN0001", "CS101", 40))

	// upload identik lain mulai tepat setelah cek duplikat, batch-nya masih Processing
	inFlight := false
	if err := f.DB.Callback().Query().After("gorm:query").Register("test:race_batch", func(tx *gorm.DB) {
		if tx.Statement.Table != "mark_upload_batches" || inFlight {
			return
		}
		inFlight = true
		_, err := r.Tracker.Begin(context.Background(), ubService.BeginInput{
			Scope: ubService.Scope{
				InstitutionID: cmd.InstitutionID,
				SessionID:     cmd.SessionID,
				ProgramID:     cmd.ProgramID,
				CourseID:      cmd.CourseID,
			},
			FileHash: ubService.FileFingerprint(cmd.RowsJSON),
			Total:    1,
		})
		if err != nil {
			t.Errorf("concurrent Begin() error = %v", err)
		}
	}); err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err := r.Upload(context.Background(), cmd)
	if fe, ok := err.(*fiber.Error); !ok || fe.Code != fiber.StatusConflict {
		t.Fatalf("err = %v, want 409", err)
	}
	if n := len(activeMarks(t, f)); n != 0 {
		t.Fatalf("stored marks = %d, want 0", n)
	}
}
