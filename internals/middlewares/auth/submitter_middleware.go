package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-jwt/jwt/v4"

	helper "examportal_backend/internals/helpers"
)

// SubmitterFromJWT mencatat siapa pengunggah dari bearer token.
// Hanya atribusi: token tidak ada/invalid tidak menolak request.
func SubmitterFromJWT(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.TrimSpace(secret) == "" {
			return c.Next()
		}
		raw := helper.GetRawAccessToken(c)
		if raw == "" {
			return c.Next()
		}

		claims, err := parseClaims(raw, secret)
		if err != nil {
			log.Warnw("⚠️ submitter token ignored", "reqid", c.Locals("reqid"), "err", err)
			return c.Next()
		}
		if id := SubmitterID(claims); id != "" {
			helper.SetRawAccessToken(c, raw)
			c.Locals(helper.LocSubmitter, id)
		}
		return c.Next()
	}
}

func parseClaims(raw, secret string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	_, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if err := validateTokenExpiry(claims, 30*time.Second); err != nil {
		return nil, err
	}
	return claims, nil
}

// validateTokenExpiry: exp opsional; bila ada harus belum lewat (dengan toleransi skew).
func validateTokenExpiry(claims jwt.MapClaims, skew time.Duration) error {
	expVal, ok := claims["exp"]
	if !ok {
		return nil
	}
	var expUnix int64
	switch t := expVal.(type) {
	case float64:
		expUnix = int64(t)
	case int64:
		expUnix = t
	default:
		return fmt.Errorf("invalid exp format")
	}
	if time.Now().Add(-skew).Unix() > expUnix {
		return fmt.Errorf("token expired")
	}
	return nil
}

// SubmitterID: klaim "id", lalu "user_id", lalu "sub".
func SubmitterID(claims jwt.MapClaims) string {
	for _, k := range []string{"id", "user_id", "sub"} {
		if v, ok := claims[k]; ok {
			if s := strings.TrimSpace(fmt.Sprintf("%v", v)); s != "" && s != "<nil>" {
				return s
			}
		}
	}
	return ""
}
