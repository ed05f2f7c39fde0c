package dto

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest limit/offset de los listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// NewPageRequest limit fuera de [1, MaxPageLimit] se ajusta; offset negativo = 0.
func NewPageRequest(limit, offset int) PageRequest {
	switch {
	case limit <= 0:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return PageRequest{Limit: limit, Offset: max(offset, 0)}
}

// PageResponse Total se omite cuando el listado no lo calcula (libro de movimientos).
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de todos los errores HTTP. Retryable solo es true para
// conflictos de concurrencia; Details lleva datos como producto, disponible y solicitado.
type ErrorResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}
