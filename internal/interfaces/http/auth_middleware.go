package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/pkg/jwt"
)

const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// TokenVerifier valida el Bearer token (pkg/jwt.Manager).
type TokenVerifier interface {
	Verify(token string) (jwt.Claims, error)
}

func unauthorized(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// bearerToken extrae el token de "Authorization: Bearer <token>". ok=false si el
// header existe pero no tiene ese formato.
func bearerToken(header string) (token string, ok bool) {
	scheme, rest, _ := strings.Cut(strings.TrimSpace(header), " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// AuthMiddleware deja el id del usuario y su rol en c.Locals.
func AuthMiddleware(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "MISSING_TOKEN", "Authorization header requerido")
		}
		raw, ok := bearerToken(header)
		if !ok {
			return unauthorized(c, "INVALID_TOKEN", "formato: Bearer <token>")
		}
		if raw == "" {
			return unauthorized(c, "MISSING_TOKEN", "token vacío")
		}
		claims, err := tokens.Verify(raw)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return unauthorized(c, "TOKEN_EXPIRED", "la sesión expiró, inicie sesión de nuevo")
		case err != nil:
			return unauthorized(c, "INVALID_TOKEN", "token inválido")
		}
		c.Locals(LocalUserID, claims.UserID())
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// RequireRole va después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return unauthorized(c, "MISSING_ROLE", "el token no incluye rol")
		}
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "el rol '" + role + "' no tiene acceso a este recurso",
		})
	}
}

func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}
