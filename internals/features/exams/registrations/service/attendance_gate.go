package service

import (
	"strings"

	"github.com/google/uuid"

	"examportal_backend/internals/features/exams/registrations/model"
)

// StatusNoRecord dilaporkan bila tidak ada baris attendance sama sekali.
const StatusNoRecord = "Present (no record)"

// IsEligible: hanya status "Absent" eksplisit yang memblokir.
// Kosong, "Present", atau status lain dianggap hadir.
func IsEligible(status string) bool {
	return !strings.EqualFold(strings.TrimSpace(status), string(model.AttendanceStatusAbsent))
}

type AttendanceDecision struct {
	Eligible bool   `json:"eligible"`
	Status   string `json:"status"`
	Recorded bool   `json:"recorded"`
}

// AttendanceGate menjawab kelayakan per (registration, course) dari data yang sudah di-prefetch.
type AttendanceGate struct {
	statuses map[attendanceKey]string
}

type attendanceKey struct {
	RegistrationID uuid.UUID
	CourseID       uuid.UUID
}

func NewAttendanceGate(records []model.ExamAttendanceModel) *AttendanceGate {
	g := &AttendanceGate{statuses: make(map[attendanceKey]string, len(records))}
	for _, r := range records {
		g.Record(r.ExamAttendanceRegistrationID, r.ExamAttendanceCourseID, string(r.ExamAttendanceStatus))
	}
	return g
}

func (g *AttendanceGate) Record(registrationID, courseID uuid.UUID, status string) {
	if g.statuses == nil {
		g.statuses = map[attendanceKey]string{}
	}
	g.statuses[attendanceKey{registrationID, courseID}] = strings.TrimSpace(status)
}

func (g *AttendanceGate) Check(registrationID, courseID uuid.UUID) AttendanceDecision {
	if g != nil {
		if st, ok := g.statuses[attendanceKey{registrationID, courseID}]; ok {
			return AttendanceDecision{Eligible: IsEligible(st), Status: st, Recorded: true}
		}
	}
	return AttendanceDecision{Eligible: true, Status: StatusNoRecord}
}

func (g *AttendanceGate) Len() int {
	if g == nil {
		return 0
	}
	return len(g.statuses)
}
