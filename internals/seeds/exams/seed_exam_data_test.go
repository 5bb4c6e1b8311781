package exams

import (
	"testing"

	regModel "examportal_backend/internals/features/exams/registrations/model"
	"examportal_backend/internals/features/exams/testfixture"
)

func TestSeedExamDataFromJSONIsIdempotent(t *testing.T) {
	db := testfixture.OpenTestDB(t)

	st, err := SeedExamDataFromJSON(db, "testdata/exam_seed.json")
	if err != nil {
		t.Fatalf("SeedExamDataFromJSON() error = %v", err)
	}
	want := Stats{Institutions: 1, Sessions: 1, Programs: 1, Courses: 2, Offerings: 2, Students: 3}
	if st != want {
		t.Fatalf("stats = %+v, want %+v", st, want)
	}

	again, err := SeedExamDataFromJSON(db, "testdata/exam_seed.json")
	if err != nil {
		t.Fatalf("second seed error = %v", err)
	}
	if again != (Stats{Skipped: 3}) {
		t.Fatalf("second stats = %+v", again)
	}

	var attendance int64
	db.Model(&regModel.ExamAttendanceModel{}).Count(&attendance)
	if attendance != 2 {
		t.Fatalf("attendance rows = %d, want 2", attendance)
	}
}

func TestSeedExamDataRejectsUnknownReferences(t *testing.T) {
	db := testfixture.OpenTestDB(t)
	_, err := SeedExamData(db, ExamDataSeed{Institutions: []InstitutionSeed{{
		Code: "UNIV02",
		Name: "Other",
		Students: []StudentSeed{{
			OfferingSeed: OfferingSeed{Session: "X", Program: "Y", Course: "Z"},
			DummyNumber:  "DN1",
		}},
	}}})
	if err == nil {
		t.Fatalf("unknown session must fail")
	}
}
