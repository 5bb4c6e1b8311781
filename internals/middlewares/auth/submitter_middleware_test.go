package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	helper "examportal_backend/internals/helpers"
)

const testSecret = "s3cret"

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func submitterFor(t *testing.T, header string) string {
	t.Helper()
	app := fiber.New()
	app.Use(SubmitterFromJWT(testSecret))
	app.Get("/", func(c *fiber.Ctx) error {
		if s := helper.GetSubmitter(c, ""); s != nil {
			return c.SendString(*s)
		}
		return c.SendString("")
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	return string(body)
}

func TestSubmitterID(t *testing.T) {
	tests := []struct {
		claims jwt.MapClaims
		want   string
	}{
		{jwt.MapClaims{"id": "u-1", "sub": "x"}, "u-1"},
		{jwt.MapClaims{"user_id": " u-2 "}, "u-2"},
		{jwt.MapClaims{"id": nil, "sub": "u-3"}, "u-3"},
		{jwt.MapClaims{"role": "admin"}, ""},
	}
	for _, tt := range tests {
		if got := SubmitterID(tt.claims); got != tt.want {
			t.Fatalf("SubmitterID(%v) = %q, want %q", tt.claims, got, tt.want)
		}
	}
}

func TestSubmitterFromJWT(t *testing.T) {
	valid := sign(t, jwt.MapClaims{"id": "examiner-7", "exp": time.Now().Add(time.Hour).Unix()}, testSecret)
	expired := sign(t, jwt.MapClaims{"id": "examiner-7", "exp": time.Now().Add(-time.Hour).Unix()}, testSecret)
	forged := sign(t, jwt.MapClaims{"id": "examiner-7"}, "other")

	if got := submitterFor(t, "Bearer "+valid); got != "examiner-7" {
		t.Fatalf("valid token submitter = %q", got)
	}
	for name, header := range map[string]string{
		"none":    "",
		"expired": "Bearer " + expired,
		"forged":  "Bearer " + forged,
		"garbage": "Bearer abc.def",
	} {
		if got := submitterFor(t, header); got != "" {
			t.Fatalf("%s: submitter = %q, want none", name, got)
		}
	}
}
