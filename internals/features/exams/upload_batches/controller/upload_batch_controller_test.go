package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"examportal_backend/internals/features/exams/testfixture"
	"examportal_backend/internals/features/exams/upload_batches/route"
	"examportal_backend/internals/features/exams/upload_batches/service"
)

func call(t *testing.T, app *fiber.App, method, target string) (int, map[string]any) {
	t.Helper()
	res, err := app.Test(httptest.NewRequest(method, target, nil), -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer res.Body.Close()
	out := map[string]any{}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return res.StatusCode, out
}

func TestUploadBatchEndpoints(t *testing.T) {
	f := testfixture.New(t)
	cs := f.AddCourse(t, "CS101", "UG")
	tr := service.NewTracker(f.DB, "test salt")
	b, err := tr.Begin(context.Background(), service.BeginInput{
		Scope: service.Scope{
			InstitutionID: f.Institution.InstitutionID,
			SessionID:     f.Session.ExaminationSessionID,
			ProgramID:     f.Program.ProgramID,
			CourseID:      cs.CourseID,
		},
		FileHash: "h1",
		Total:    1,
	})
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	app := fiber.New()
	route.UploadBatchAdminRoutes(app, f.DB, "test salt")

	status, out := call(t, app, http.MethodGet, "/upload-batches?institution_id="+f.Institution.InstitutionID.String())
	if status != fiber.StatusOK || len(out["data"].([]any)) != 1 {
		t.Fatalf("list: status = %d body = %v", status, out)
	}

	status, _ = call(t, app, http.MethodGet, "/upload-batches")
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("list without institution: status = %d", status)
	}

	status, out = call(t, app, http.MethodGet, "/upload-batches/"+b.MarkUploadBatchID.String())
	if status != fiber.StatusOK {
		t.Fatalf("get: status = %d body = %v", status, out)
	}

	status, _ = call(t, app, http.MethodGet, "/upload-batches/"+uuid.NewString())
	if status != fiber.StatusNotFound {
		t.Fatalf("get unknown: status = %d", status)
	}
	status, _ = call(t, app, http.MethodGet, "/upload-batches/not-a-uuid")
	if status != fiber.StatusBadRequest {
		t.Fatalf("get invalid id: status = %d", status)
	}

	status, out = call(t, app, http.MethodDelete, "/upload-batches/"+b.MarkUploadBatchID.String()+"/marks")
	if status != fiber.StatusOK || out["data"].(map[string]any)["deleted"].(float64) != 0 {
		t.Fatalf("delete marks: status = %d body = %v", status, out)
	}
}
