// Package testfixture menyiapkan database SQLite sementara berisi data master
// ujian untuk test service dan controller.
package testfixture

import (
	"fmt"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	database "examportal_backend/internals/databases"
	mastersModel "examportal_backend/internals/features/exams/masters/model"
	regModel "examportal_backend/internals/features/exams/registrations/model"
)

func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "exams.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// satu koneksi: hindari "database is locked" saat transaksi
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

// Fixture: satu institution, satu session, satu program.
type Fixture struct {
	DB          *gorm.DB
	Institution mastersModel.InstitutionModel
	Session     mastersModel.ExaminationSessionModel
	Program     mastersModel.ProgramModel

	offerings map[string]uuid.UUID
}

func New(t *testing.T) *Fixture {
	t.Helper()
	db := OpenTestDB(t)
	f := &Fixture{DB: db, offerings: map[string]uuid.UUID{}}

	f.Institution = mastersModel.InstitutionModel{InstitutionCode: "UNIV01", InstitutionName: "Test University"}
	mustCreate(t, db, &f.Institution)
	f.Session = f.AddSession(t, "NOV-2025")
	f.Program = f.AddProgram(t, "BSC-CS")
	return f
}

func (f *Fixture) AddSession(t *testing.T, code string) mastersModel.ExaminationSessionModel {
	t.Helper()
	s := mastersModel.ExaminationSessionModel{
		ExaminationSessionInstitutionID: f.Institution.InstitutionID,
		ExaminationSessionCode:          code,
		ExaminationSessionName:          "Session " + code,
	}
	mustCreate(t, f.DB, &s)
	return s
}

func (f *Fixture) AddProgram(t *testing.T, code string) mastersModel.ProgramModel {
	t.Helper()
	p := mastersModel.ProgramModel{
		ProgramInstitutionID: f.Institution.InstitutionID,
		ProgramCode:          code,
		ProgramName:          "Program " + code,
	}
	mustCreate(t, f.DB, &p)
	return p
}

// AddCourse membuat course dan membukanya di session + program default.
func (f *Fixture) AddCourse(t *testing.T, code, level string) mastersModel.CourseModel {
	t.Helper()
	c := mastersModel.CourseModel{
		CourseInstitutionID: f.Institution.InstitutionID,
		CourseCode:          code,
		CourseName:          "Course " + code,
		CourseLevel:         level,
	}
	mustCreate(t, f.DB, &c)
	f.Offer(t, f.Session, f.Program, c)
	return c
}

func (f *Fixture) Offer(t *testing.T, s mastersModel.ExaminationSessionModel, p mastersModel.ProgramModel, c mastersModel.CourseModel) uuid.UUID {
	t.Helper()
	key := offeringKey(s.ExaminationSessionID, p.ProgramID, c.CourseID)
	if id, ok := f.offerings[key]; ok {
		return id
	}
	o := mastersModel.CourseOfferingModel{
		CourseOfferingInstitutionID: f.Institution.InstitutionID,
		CourseOfferingSessionID:     s.ExaminationSessionID,
		CourseOfferingProgramID:     p.ProgramID,
		CourseOfferingCourseID:      c.CourseID,
	}
	mustCreate(t, f.DB, &o)
	f.offerings[key] = o.CourseOfferingID
	return o.CourseOfferingID
}

// AddStudent: registrasi + dummy number di session/program default.
// attendance "" = tanpa record kehadiran.
func (f *Fixture) AddStudent(t *testing.T, c mastersModel.CourseModel, dummy, attendance string) regModel.StudentDummyNumberModel {
	t.Helper()
	return f.AddStudentIn(t, f.Session, f.Program, c, dummy, attendance)
}

func (f *Fixture) AddStudentIn(
	t *testing.T,
	s mastersModel.ExaminationSessionModel,
	p mastersModel.ProgramModel,
	c mastersModel.CourseModel,
	dummy, attendance string,
) regModel.StudentDummyNumberModel {
	t.Helper()
	offeringID := f.Offer(t, s, p, c)

	reg := regModel.ExamRegistrationModel{
		ExamRegistrationInstitutionID:    f.Institution.InstitutionID,
		ExamRegistrationSessionID:        s.ExaminationSessionID,
		ExamRegistrationCourseOfferingID: offeringID,
		ExamRegistrationStudentID:        uuid.New(),
		ExamRegistrationStudentName:      "Student " + dummy,
		ExamRegistrationRegisterNumber:   "REG-" + dummy,
		ExamRegistrationCourseCode:       c.CourseCode,
	}
	mustCreate(t, f.DB, &reg)

	if attendance != "" {
		att := regModel.ExamAttendanceModel{
			ExamAttendanceInstitutionID:  f.Institution.InstitutionID,
			ExamAttendanceRegistrationID: reg.ExamRegistrationID,
			ExamAttendanceCourseID:       c.CourseID,
			ExamAttendanceStatus:         regModel.AttendanceStatus(attendance),
		}
		mustCreate(t, f.DB, &att)
	}

	sdn := regModel.StudentDummyNumberModel{
		StudentDummyNumberInstitutionID:  f.Institution.InstitutionID,
		StudentDummyNumberSessionID:      s.ExaminationSessionID,
		StudentDummyNumberCourseID:       c.CourseID,
		StudentDummyNumber:               dummy,
		StudentDummyNumberRegistrationID: reg.ExamRegistrationID,
	}
	mustCreate(t, f.DB, &sdn)
	return sdn
}

// AddStudents: n dummy number berurutan "<prefix>0001".. dengan status sama.
func (f *Fixture) AddStudents(t *testing.T, c mastersModel.CourseModel, prefix string, from, n int, attendance string) []regModel.StudentDummyNumberModel {
	t.Helper()
	out := make([]regModel.StudentDummyNumberModel, 0, n)
	for i := from; i < from+n; i++ {
		out = append(out, f.AddStudent(t, c, fmt.Sprintf("%s%04d", prefix, i), attendance))
	}
	return out
}

func offeringKey(sessionID, programID, courseID uuid.UUID) string {
	return sessionID.String() + "|" + programID.String() + "|" + courseID.String()
}

func mustCreate(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}
