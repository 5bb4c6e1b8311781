package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	mastersModel "examportal_backend/internals/features/exams/masters/model"
	"examportal_backend/internals/features/exams/registrations/model"
)

const DefaultLookupPageSize = 1000

// LookupScope: SessionID / CourseID nil = semua.
type LookupScope struct {
	InstitutionID uuid.UUID
	SessionID     *uuid.UUID
	CourseID      *uuid.UUID
}

// IdentityContext: satu dummy number lengkap dengan registrasi, course, dan status hadir.
type IdentityContext struct {
	DummyNumberID  uuid.UUID  `gorm:"column:dummy_number_id"`
	DummyNumber    string     `gorm:"column:dummy_number"`
	SessionID      uuid.UUID  `gorm:"column:session_id"`
	CourseID       uuid.UUID  `gorm:"column:course_id"`
	CourseCode     string     `gorm:"column:course_code"`
	CourseLevel    string     `gorm:"column:course_level"`
	ProgramID      *uuid.UUID `gorm:"column:program_id"`
	PacketID       *uuid.UUID `gorm:"column:packet_id"`
	RegistrationID uuid.UUID  `gorm:"column:registration_id"`
	StudentID      uuid.UUID  `gorm:"column:student_id"`
	StudentName    string     `gorm:"column:student_name"`
	RegisterNumber string     `gorm:"column:register_number"`

	Attendance AttendanceDecision `gorm:"-"`
}

func (ic *IdentityContext) IsPostgraduate() bool {
	return mastersModel.IsPostgraduateLevel(ic.CourseLevel)
}

// LookupKey: lower(trim(dummy)) + "|" + lower(trim(course)).
func LookupKey(dummyNumber, courseCode string) string {
	return normalize(dummyNumber) + "|" + normalize(courseCode)
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// LookupIndex: nilai per-request, tidak pernah di-share antar request.
type LookupIndex struct {
	identityByKey map[string][]*IdentityContext
	dummyNumbers  map[string]struct{}
	courseCodes   map[string]struct{}
	identities    []*IdentityContext
	gate          *AttendanceGate
}

func newLookupIndex() *LookupIndex {
	return &LookupIndex{
		identityByKey: map[string][]*IdentityContext{},
		dummyNumbers:  map[string]struct{}{},
		courseCodes:   map[string]struct{}{},
		gate:          NewAttendanceGate(nil),
	}
}

func (ix *LookupIndex) add(ic *IdentityContext) {
	k := LookupKey(ic.DummyNumber, ic.CourseCode)
	ix.identityByKey[k] = append(ix.identityByKey[k], ic)
	ix.dummyNumbers[normalize(ic.DummyNumber)] = struct{}{}
	ix.identities = append(ix.identities, ic)
}

// Lookup mengembalikan semua kandidat untuk (dummy, course), lintas session.
func (ix *LookupIndex) Lookup(dummyNumber, courseCode string) []*IdentityContext {
	return ix.identityByKey[LookupKey(dummyNumber, courseCode)]
}

func (ix *LookupIndex) HasDummyNumber(dummyNumber string) bool {
	_, ok := ix.dummyNumbers[normalize(dummyNumber)]
	return ok
}

func (ix *LookupIndex) HasCourseCode(courseCode string) bool {
	_, ok := ix.courseCodes[normalize(courseCode)]
	return ok
}

// Identities: urutan sesuai paging (dummy number ASC, id ASC).
func (ix *LookupIndex) Identities() []*IdentityContext { return ix.identities }

func (ix *LookupIndex) Len() int { return len(ix.identities) }

func (ix *LookupIndex) Gate() *AttendanceGate { return ix.gate }

/* =========================================================
   BUILDER
========================================================= */

type LookupIndexBuilder struct {
	DB       *gorm.DB
	PageSize int
}

func NewLookupIndexBuilder(db *gorm.DB, pageSize int) *LookupIndexBuilder {
	return &LookupIndexBuilder{DB: db, PageSize: pageSize}
}

func (b *LookupIndexBuilder) pageSize() int {
	if b.PageSize <= 0 {
		return DefaultLookupPageSize
	}
	return b.PageSize
}

func (b *LookupIndexBuilder) Build(ctx context.Context, scope LookupScope) (*LookupIndex, error) {
	ix := newLookupIndex()
	size := b.pageSize()

	// Berhenti hanya saat halaman kosong; offset maju sebanyak baris yang benar-benar kembali.
	offset := 0
	for {
		var page []*IdentityContext
		if err := b.identityQuery(ctx, scope).Offset(offset).Limit(size).Scan(&page).Error; err != nil {
			return nil, errors.Wrapf(err, "fetch identities offset=%d", offset)
		}
		if len(page) == 0 {
			break
		}
		for _, ic := range page {
			ix.add(ic)
		}
		offset += len(page)
	}

	if err := b.loadCourseCodes(ctx, scope, ix); err != nil {
		return nil, err
	}
	if err := b.prefetchAttendance(ctx, ix, size); err != nil {
		return nil, err
	}
	for _, ic := range ix.identities {
		ic.Attendance = ix.gate.Check(ic.RegistrationID, ic.CourseID)
	}
	return ix, nil
}

func (b *LookupIndexBuilder) identityQuery(ctx context.Context, scope LookupScope) *gorm.DB {
	q := b.DB.WithContext(ctx).
		Table("student_dummy_numbers AS sdn").
		Select(`
			sdn.student_dummy_number_id              AS dummy_number_id,
			sdn.student_dummy_number                 AS dummy_number,
			sdn.student_dummy_number_session_id      AS session_id,
			sdn.student_dummy_number_course_id       AS course_id,
			sdn.student_dummy_number_packet_id       AS packet_id,
			sdn.student_dummy_number_registration_id AS registration_id,
			c.course_code                            AS course_code,
			c.course_level                           AS course_level,
			co.course_offering_program_id            AS program_id,
			er.exam_registration_student_id          AS student_id,
			er.exam_registration_student_name        AS student_name,
			er.exam_registration_register_number     AS register_number`).
		Joins("JOIN courses AS c ON c.course_id = sdn.student_dummy_number_course_id").
		Joins("JOIN exam_registrations AS er ON er.exam_registration_id = sdn.student_dummy_number_registration_id").
		Joins("LEFT JOIN course_offerings AS co ON co.course_offering_id = er.exam_registration_course_offering_id").
		Where("sdn.student_dummy_number_institution_id = ?", scope.InstitutionID)

	if scope.SessionID != nil {
		q = q.Where("sdn.student_dummy_number_session_id = ?", *scope.SessionID)
	}
	if scope.CourseID != nil {
		q = q.Where("sdn.student_dummy_number_course_id = ?", *scope.CourseID)
	}
	return q.Order("sdn.student_dummy_number ASC").Order("sdn.student_dummy_number_id ASC")
}

func (b *LookupIndexBuilder) loadCourseCodes(ctx context.Context, scope LookupScope, ix *LookupIndex) error {
	var codes []string
	if err := b.DB.WithContext(ctx).
		Model(&mastersModel.CourseModel{}).
		Where("course_institution_id = ?", scope.InstitutionID).
		Pluck("course_code", &codes).Error; err != nil {
		return errors.Wrap(err, "fetch course codes")
	}
	for _, c := range codes {
		ix.courseCodes[normalize(c)] = struct{}{}
	}
	return nil
}

// prefetchAttendance: satu query IN per chunk registration id, bukan per identity.
func (b *LookupIndexBuilder) prefetchAttendance(ctx context.Context, ix *LookupIndex, chunk int) error {
	seen := make(map[uuid.UUID]struct{}, len(ix.identities))
	regIDs := make([]uuid.UUID, 0, len(ix.identities))
	for _, ic := range ix.identities {
		if _, ok := seen[ic.RegistrationID]; ok {
			continue
		}
		seen[ic.RegistrationID] = struct{}{}
		regIDs = append(regIDs, ic.RegistrationID)
	}

	for start := 0; start < len(regIDs); start += chunk {
		end := start + chunk
		if end > len(regIDs) {
			end = len(regIDs)
		}
		var rows []model.ExamAttendanceModel
		if err := b.DB.WithContext(ctx).
			Where("exam_attendance_registration_id IN ?", regIDs[start:end]).
			Find(&rows).Error; err != nil {
			return errors.Wrap(err, "prefetch attendance")
		}
		for _, r := range rows {
			ix.gate.Record(r.ExamAttendanceRegistrationID, r.ExamAttendanceCourseID, string(r.ExamAttendanceStatus))
		}
	}
	return nil
}
