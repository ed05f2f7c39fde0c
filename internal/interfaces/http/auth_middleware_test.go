package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/retail-backoffice/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/retail-backoffice/pkg/jwt"
)

const testUserID = "00000000-0000-0000-0000-000000000001"

const testSecret = "clave-de-pruebas-http"

var testTokens = newTokens()

func newTokens() *pkgjwt.Manager {
	m, err := pkgjwt.NewManager(testSecret, "backoffice-test", time.Hour)
	if err != nil {
		panic(err)
	}
	return m
}

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, _, err := testTokens.Issue(testUserID, role)
	require.NoError(t, err)
	return "Bearer " + tok
}

// guardedApp expone GET /protected detrás de AuthMiddleware + RequireRole.
func guardedApp(tokens *pkgjwt.Manager, roles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(tokens),
		apphttp.RequireRole(roles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
		},
	)
	return app
}

func get(t *testing.T, app *fiber.App, authorization string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		role    string
		status  int
	}{
		{"admin en ruta admin", []string{"admin"}, "admin", http.StatusOK},
		{"bodeguero en ruta admin|bodeguero", []string{"admin", "bodeguero"}, "bodeguero", http.StatusOK},
		{"vendedor en ruta admin", []string{"admin"}, "vendedor", http.StatusForbidden},
		{"bodeguero en ruta vendedor", []string{"vendedor"}, "bodeguero", http.StatusForbidden},
		{"token sin rol", []string{"admin"}, "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, guardedApp(testTokens, tc.allowed...), tokenForRole(t, tc.role))
			assert.Equal(t, tc.status, status)
			switch tc.status {
			case http.StatusForbidden:
				assert.Contains(t, body, "FORBIDDEN")
			case http.StatusUnauthorized:
				assert.Contains(t, body, "MISSING_ROLE")
			}
		})
	}
}

func TestAuthMiddleware_DejaClaimsEnLocals(t *testing.T) {
	status, body := get(t, guardedApp(testTokens, "admin"), tokenForRole(t, "admin"))
	require.Equal(t, http.StatusOK, status)

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, testUserID, out["user_id"])
	assert.Equal(t, "admin", out["role"])
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	app := guardedApp(testTokens, "admin")

	expiredMgr := newTokens().WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, _, err := expiredMgr.Issue(testUserID, "admin")
	require.NoError(t, err)

	other, err := pkgjwt.NewManager("otra-clave", "backoffice-test", time.Hour)
	require.NoError(t, err)
	foreign, _, err := other.Issue(testUserID, "admin")
	require.NoError(t, err)

	cases := []struct {
		name, header, code string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema distinto", "Basic abc", "INVALID_TOKEN"},
		{"bearer vacío", "Bearer ", "MISSING_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"otra firma", "Bearer " + foreign, "INVALID_TOKEN"},
		{"vencido", "Bearer " + expired, "TOKEN_EXPIRED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, app, tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Contains(t, body, tc.code)
		})
	}
}
