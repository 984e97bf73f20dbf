package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	authCookieName     = "lunara_token"
	opsTokenHeader     = "X-Ops-Token"
	subjectIDLocalsKey = "subjectID"
)

// Tokens are minted by the external auth service; this layer only verifies
// the signature and extracts the subject.
type authClaims struct {
	SubjectID uint `json:"uid"`
	jwt.RegisteredClaims
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	rawToken := strings.TrimSpace(c.Cookies(authCookieName))
	if rawToken == "" {
		header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if strings.HasPrefix(header, "Bearer ") {
			rawToken = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
	}
	if rawToken == "" {
		return messageResponse(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	})
	if err != nil || !token.Valid {
		return messageResponse(c, fiber.StatusUnauthorized, "Invalid token")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
		return messageResponse(c, fiber.StatusUnauthorized, "Token expired")
	}
	if claims.SubjectID == 0 {
		return messageResponse(c, fiber.StatusUnauthorized, "Invalid token")
	}

	c.Locals(subjectIDLocalsKey, claims.SubjectID)
	return c.Next()
}

// OpsTokenRequired guards operational endpoints with a service token checked
// against its bcrypt hash from configuration.
func (handler *Handler) OpsTokenRequired(c *fiber.Ctx) error {
	if len(handler.opsTokenHash) == 0 {
		return messageResponse(c, fiber.StatusNotFound, "Not found")
	}

	token := strings.TrimSpace(c.Get(opsTokenHeader))
	if token == "" {
		return messageResponse(c, fiber.StatusUnauthorized, "Missing ops token")
	}
	if err := bcrypt.CompareHashAndPassword(handler.opsTokenHash, []byte(token)); err != nil {
		return messageResponse(c, fiber.StatusForbidden, "Invalid ops token")
	}
	return c.Next()
}

func (handler *Handler) subjectID(c *fiber.Ctx) uint {
	subjectID, _ := c.Locals(subjectIDLocalsKey).(uint)
	return subjectID
}
