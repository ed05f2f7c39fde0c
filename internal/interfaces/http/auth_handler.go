package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/retail-backoffice/internal/application/auth"
	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/pkg/logger"
)

type AuthHandler struct {
	uc  *auth.AuthUseCase
	log *logger.Logger
}

func NewAuthHandler(uc *auth.AuthUseCase, log *logger.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

// Login godoc
// @Summary      Iniciar sesión y obtener el token Bearer
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "credenciales"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse  "usuario inactivo"
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	h.log.WithContext(c.UserContext()).Info().
		Str("user_id", out.User.ID).
		Str("role", out.User.Role).
		Msg("inicio de sesión")
	return c.JSON(out)
}

// Register godoc
// @Summary      Crear usuario (solo admin)
// @Tags         auth
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "rol por defecto: vendedor"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "email ya registrado"
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	created, err := h.uc.RegisterUser(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.WithContext(c.UserContext()).Info().
		Str("user_id", created.ID).
		Str("created_by", GetUserID(c)).
		Msg("usuario registrado")
	return c.Status(fiber.StatusCreated).JSON(created)
}
