package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"examportal_backend/internals/features/exams/packets/route"
	"examportal_backend/internals/features/exams/testfixture"
)

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req, -1)
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

func TestGenerateAndListPacketsHTTP(t *testing.T) {
	f := testfixture.New(t)
	cs := f.AddCourse(t, "CS101", "UG")
	f.AddStudents(t, cs, "DN", 1, 30, "Present")

	app := fiber.New()
	route.PacketAdminRoutes(app, f.DB, 100)

	status, out := do(t, app, http.MethodPost, "/packets/generate",
		`{"institution_code":" univ01 ","session_code":"NOV-2025","course_code":"CS101"}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d body = %v", status, out)
	}
	if out["total_packets_created"].(float64) != 2 || out["total_students_assigned"].(float64) != 30 {
		t.Fatalf("body = %v", out)
	}

	status, out = do(t, app, http.MethodGet, "/packets?institution_code=UNIV01&session_code=NOV-2025&per_page=1", "")
	if status != fiber.StatusOK {
		t.Fatalf("list status = %d body = %v", status, out)
	}
	pg := out["pagination"].(map[string]any)
	if pg["total"].(float64) != 2 || pg["has_next"] != true || len(out["data"].([]any)) != 1 {
		t.Fatalf("list body = %v", out)
	}
}

func TestGeneratePacketsHTTPErrors(t *testing.T) {
	f := testfixture.New(t)
	app := fiber.New()
	route.PacketAdminRoutes(app, f.DB, 100)

	status, _ := do(t, app, http.MethodPost, "/packets/generate", `{"session_code":"NOV-2025"}`)
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("missing institution: status = %d", status)
	}
	status, out := do(t, app, http.MethodPost, "/packets/generate", `{"institution_code":"NOPE","session_code":"NOV-2025"}`)
	if status != fiber.StatusNotFound || out["error_code"] != "NOT_FOUND" {
		t.Fatalf("unknown institution: status = %d body = %v", status, out)
	}
	status, _ = do(t, app, http.MethodPost, "/packets/generate", `{`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("bad body: status = %d", status)
	}
}
