package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	LocRawToken  = "raw_token"
	LocSubmitter = "submitter_id"
)

// GetRawAccessToken: cookie "access_token", lalu Locals, lalu header Bearer.
func GetRawAccessToken(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Cookies("access_token")); v != "" {
		return v
	}
	if v, ok := c.Locals(LocRawToken).(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	const p = "Bearer "
	auth := c.Get(fiber.HeaderAuthorization)
	if len(auth) > len(p) && strings.EqualFold(auth[:len(p)], p) {
		return strings.TrimSpace(auth[len(p):])
	}
	return ""
}

// GetSubmitter: id pengunggah dari token (diisi middleware), fallback ke nilai body.
func GetSubmitter(c *fiber.Ctx, fallback string) *string {
	if v, ok := c.Locals(LocSubmitter).(string); ok && strings.TrimSpace(v) != "" {
		s := strings.TrimSpace(v)
		return &s
	}
	if s := strings.TrimSpace(fallback); s != "" {
		return &s
	}
	return nil
}

func SetRawAccessToken(c *fiber.Ctx, raw string) {
	if s := strings.TrimSpace(raw); s != "" {
		c.Locals(LocRawToken, s)
	}
}
