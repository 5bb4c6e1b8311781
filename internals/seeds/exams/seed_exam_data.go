package exams

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	mastersModel "examportal_backend/internals/features/exams/masters/model"
	regModel "examportal_backend/internals/features/exams/registrations/model"
)

type ExamDataSeed struct {
	Institutions []InstitutionSeed `json:"institutions"`
}

type InstitutionSeed struct {
	Code      string         `json:"code"`
	Name      string         `json:"name"`
	Sessions  []NamedSeed    `json:"sessions"`
	Programs  []NamedSeed    `json:"programs"`
	Courses   []CourseSeed   `json:"courses"`
	Offerings []OfferingSeed `json:"offerings"`
	Students  []StudentSeed  `json:"students"`
}

type NamedSeed struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type CourseSeed struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Level string `json:"level"`
}

type OfferingSeed struct {
	Session string `json:"session"`
	Program string `json:"program"`
	Course  string `json:"course"`
}

// StudentSeed: satu registrasi + dummy number; attendance kosong = tanpa record.
type StudentSeed struct {
	OfferingSeed
	StudentID      string `json:"student_id"`
	StudentName    string `json:"student_name"`
	RegisterNumber string `json:"register_number"`
	DummyNumber    string `json:"dummy_number"`
	Attendance     string `json:"attendance"`
}

type Stats struct {
	Institutions int
	Sessions     int
	Programs     int
	Courses      int
	Offerings    int
	Students     int
	Skipped      int
}

func SeedExamDataFromJSON(db *gorm.DB, filePath string) (Stats, error) {
	log.Infof("📥 Membaca file seed: %s", filePath)

	file, err := os.ReadFile(filePath)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(err, "read seed file")
	}
	var data ExamDataSeed
	if err := sonic.Unmarshal(file, &data); err != nil {
		return Stats{}, pkgerrors.Wrap(err, "decode seed file")
	}
	return SeedExamData(db, data)
}

// SeedExamData idempoten: record yang sudah ada (berdasarkan kode / dummy number) dilewati.
func SeedExamData(db *gorm.DB, data ExamDataSeed) (Stats, error) {
	var st Stats
	for _, in := range data.Institutions {
		err := db.Transaction(func(tx *gorm.DB) error {
			return seedInstitution(tx, in, &st)
		})
		if err != nil {
			return st, pkgerrors.Wrapf(err, "seed institution %s", in.Code)
		}
	}
	return st, nil
}

type institutionRefs struct {
	inst      mastersModel.InstitutionModel
	sessions  map[string]mastersModel.ExaminationSessionModel
	programs  map[string]mastersModel.ProgramModel
	courses   map[string]mastersModel.CourseModel
	offerings map[string]uuid.UUID
}

func seedInstitution(tx *gorm.DB, in InstitutionSeed, st *Stats) error {
	refs := institutionRefs{
		sessions:  map[string]mastersModel.ExaminationSessionModel{},
		programs:  map[string]mastersModel.ProgramModel{},
		courses:   map[string]mastersModel.CourseModel{},
		offerings: map[string]uuid.UUID{},
	}

	created, err := ensure(tx, &refs.inst,
		mastersModel.InstitutionModel{InstitutionCode: in.Code, InstitutionName: in.Name},
		"institution_code = ?", in.Code)
	if err != nil {
		return err
	}
	count(&st.Institutions, created)
	instID := refs.inst.InstitutionID

	for _, s := range in.Sessions {
		var m mastersModel.ExaminationSessionModel
		created, err := ensure(tx, &m, mastersModel.ExaminationSessionModel{
			ExaminationSessionInstitutionID: instID,
			ExaminationSessionCode:          s.Code,
			ExaminationSessionName:          s.Name,
		}, "examination_session_institution_id = ? AND examination_session_code = ?", instID, s.Code)
		if err != nil {
			return err
		}
		count(&st.Sessions, created)
		refs.sessions[key(s.Code)] = m
	}

	for _, p := range in.Programs {
		var m mastersModel.ProgramModel
		created, err := ensure(tx, &m, mastersModel.ProgramModel{
			ProgramInstitutionID: instID,
			ProgramCode:          p.Code,
			ProgramName:          p.Name,
		}, "program_institution_id = ? AND program_code = ?", instID, p.Code)
		if err != nil {
			return err
		}
		count(&st.Programs, created)
		refs.programs[key(p.Code)] = m
	}

	for _, c := range in.Courses {
		level := strings.TrimSpace(c.Level)
		if level == "" {
			level = mastersModel.CourseLevelUndergraduate
		}
		var m mastersModel.CourseModel
		created, err := ensure(tx, &m, mastersModel.CourseModel{
			CourseInstitutionID: instID,
			CourseCode:          c.Code,
			CourseName:          c.Name,
			CourseLevel:         level,
		}, "course_institution_id = ? AND course_code = ?", instID, c.Code)
		if err != nil {
			return err
		}
		count(&st.Courses, created)
		refs.courses[key(c.Code)] = m
	}

	for _, o := range in.Offerings {
		if _, err := refs.offering(tx, o, st); err != nil {
			return err
		}
	}

	for _, s := range in.Students {
		if err := seedStudent(tx, &refs, s, st); err != nil {
			return err
		}
	}
	return nil
}

// offering: course_offering untuk (session, program, course), dibuat bila belum ada.
func (r *institutionRefs) offering(tx *gorm.DB, o OfferingSeed, st *Stats) (uuid.UUID, error) {
	sess, ok := r.sessions[key(o.Session)]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown session %q", o.Session)
	}
	prog, ok := r.programs[key(o.Program)]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown program %q", o.Program)
	}
	course, ok := r.courses[key(o.Course)]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown course %q", o.Course)
	}
	k := key(o.Session) + "|" + key(o.Program) + "|" + key(o.Course)
	if id, ok := r.offerings[k]; ok {
		return id, nil
	}

	var m mastersModel.CourseOfferingModel
	created, err := ensure(tx, &m, mastersModel.CourseOfferingModel{
		CourseOfferingInstitutionID: r.inst.InstitutionID,
		CourseOfferingSessionID:     sess.ExaminationSessionID,
		CourseOfferingProgramID:     prog.ProgramID,
		CourseOfferingCourseID:      course.CourseID,
	}, "course_offering_session_id = ? AND course_offering_program_id = ? AND course_offering_course_id = ?",
		sess.ExaminationSessionID, prog.ProgramID, course.CourseID)
	if err != nil {
		return uuid.Nil, err
	}
	count(&st.Offerings, created)
	r.offerings[k] = m.CourseOfferingID
	return m.CourseOfferingID, nil
}

func seedStudent(tx *gorm.DB, r *institutionRefs, s StudentSeed, st *Stats) error {
	if strings.TrimSpace(s.DummyNumber) == "" {
		return fmt.Errorf("student %q: dummy number is required", s.RegisterNumber)
	}
	offeringID, err := r.offering(tx, s.OfferingSeed, st)
	if err != nil {
		return pkgerrors.Wrapf(err, "student %s", s.DummyNumber)
	}
	sess := r.sessions[key(s.Session)]
	course := r.courses[key(s.Course)]

	var n int64
	if err := tx.Model(&regModel.StudentDummyNumberModel{}).
		Where(`student_dummy_number_institution_id = ?
			AND student_dummy_number_session_id = ?
			AND student_dummy_number_course_id = ?
			AND student_dummy_number = ?`,
			r.inst.InstitutionID, sess.ExaminationSessionID, course.CourseID, s.DummyNumber).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		log.Infof("ℹ️ Dummy number '%s' (%s) sudah ada, dilewati.", s.DummyNumber, course.CourseCode)
		st.Skipped++
		return nil
	}

	studentID := uuid.New()
	if strings.TrimSpace(s.StudentID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(s.StudentID))
		if err != nil {
			return fmt.Errorf("student %s: invalid student_id %q", s.DummyNumber, s.StudentID)
		}
		studentID = id
	}

	reg := regModel.ExamRegistrationModel{
		ExamRegistrationInstitutionID:    r.inst.InstitutionID,
		ExamRegistrationSessionID:        sess.ExaminationSessionID,
		ExamRegistrationCourseOfferingID: offeringID,
		ExamRegistrationStudentID:        studentID,
		ExamRegistrationStudentName:      s.StudentName,
		ExamRegistrationRegisterNumber:   s.RegisterNumber,
		ExamRegistrationCourseCode:       course.CourseCode,
	}
	if err := tx.Create(&reg).Error; err != nil {
		return pkgerrors.Wrapf(err, "create registration %s", s.RegisterNumber)
	}

	if att := strings.TrimSpace(s.Attendance); att != "" {
		if err := tx.Create(&regModel.ExamAttendanceModel{
			ExamAttendanceInstitutionID:  r.inst.InstitutionID,
			ExamAttendanceRegistrationID: reg.ExamRegistrationID,
			ExamAttendanceCourseID:       course.CourseID,
			ExamAttendanceStatus:         regModel.AttendanceStatus(att),
		}).Error; err != nil {
			return pkgerrors.Wrapf(err, "create attendance %s", s.DummyNumber)
		}
	}

	if err := tx.Create(&regModel.StudentDummyNumberModel{
		StudentDummyNumberInstitutionID:  r.inst.InstitutionID,
		StudentDummyNumberSessionID:      sess.ExaminationSessionID,
		StudentDummyNumberCourseID:       course.CourseID,
		StudentDummyNumber:               s.DummyNumber,
		StudentDummyNumberRegistrationID: reg.ExamRegistrationID,
	}).Error; err != nil {
		return pkgerrors.Wrapf(err, "create dummy number %s", s.DummyNumber)
	}
	st.Students++
	return nil
}

// ensure: ambil record yang cocok, atau buat dari build bila belum ada.
func ensure[T any](tx *gorm.DB, out *T, build T, query string, args ...any) (bool, error) {
	err := tx.Where(query, args...).Take(out).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	*out = build
	if err := tx.Create(out).Error; err != nil {
		return false, err
	}
	return true, nil
}

func count(n *int, created bool) {
	if created {
		*n++
	}
}

func key(code string) string { return strings.ToLower(strings.TrimSpace(code)) }
