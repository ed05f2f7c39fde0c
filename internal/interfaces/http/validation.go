package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// parseBody decodifica el JSON del cuerpo y aplica las reglas `validate` del DTO.
// Si falla, ya escribió la respuesta 400 y devuelve ok=false.
func parseBody(c *fiber.Ctx, out any) (ok bool, err error) {
	if err := c.BodyParser(out); err != nil {
		return false, badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := validate.Struct(out); err != nil {
		return false, validationError(c, err)
	}
	return true, nil
}

func validationError(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest(c, "VALIDATION", err.Error())
	}
	details := make(map[string]any, len(verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), strings.Split(fe.Namespace(), ".")[0]+".")
		details[field] = fe.Tag()
		fields = append(fields, field)
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code:    "VALIDATION",
		Message: "datos inválidos: " + strings.Join(fields, ", "),
		Details: details,
	})
}

func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	return dto.NewPageRequest(c.QueryInt("limit", dto.DefaultPageLimit), c.QueryInt("offset", 0))
}

// dateRange lee ?from=YYYY-MM-DD&to=YYYY-MM-DD; to incluye el día completo.
func dateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if s := c.Query("from"); s != "" {
		t, perr := time.ParseInLocation("2006-01-02", s, time.Local)
		if perr != nil {
			return nil, nil, fmt.Errorf("%w: from debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, perr := time.ParseInLocation("2006-01-02", s, time.Local)
		if perr != nil {
			return nil, nil, fmt.Errorf("%w: to debe tener formato YYYY-MM-DD", domain.ErrInvalidInput)
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return from, to, nil
}
