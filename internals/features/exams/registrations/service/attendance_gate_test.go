package service

import (
	"testing"

	"github.com/google/uuid"

	"examportal_backend/internals/features/exams/registrations/model"
)

func TestIsEligible(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"Present", true},
		{"", true},
		{"Late", true},
		{"Absent", false},
		{"absent", false},
		{"  ABSENT  ", false},
		{"Absentee", true},
	}
	for _, tt := range tests {
		if got := IsEligible(tt.status); got != tt.want {
			t.Fatalf("IsEligible(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestAttendanceGateCheck(t *testing.T) {
	present, absent, missing := uuid.New(), uuid.New(), uuid.New()
	course := uuid.New()

	g := NewAttendanceGate([]model.ExamAttendanceModel{
		{ExamAttendanceRegistrationID: present, ExamAttendanceCourseID: course, ExamAttendanceStatus: model.AttendanceStatusPresent},
		{ExamAttendanceRegistrationID: absent, ExamAttendanceCourseID: course, ExamAttendanceStatus: " absent "},
	})

	if d := g.Check(present, course); !d.Eligible || !d.Recorded || d.Status != "Present" {
		t.Fatalf("present decision = %+v", d)
	}
	if d := g.Check(absent, course); d.Eligible || !d.Recorded || d.Status != "absent" {
		t.Fatalf("absent decision = %+v", d)
	}
	// tidak ada record → tetap boleh
	if d := g.Check(missing, course); !d.Eligible || d.Recorded || d.Status != StatusNoRecord {
		t.Fatalf("missing decision = %+v", d)
	}
	// status absent di course lain tidak berlaku di course ini
	if d := g.Check(absent, uuid.New()); !d.Eligible {
		t.Fatalf("absent in other course should not block: %+v", d)
	}
	if g.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", g.Len())
	}
}

func TestAttendanceGateNil(t *testing.T) {
	var g *AttendanceGate
	if d := g.Check(uuid.New(), uuid.New()); !d.Eligible {
		t.Fatalf("nil gate should allow: %+v", d)
	}
}
