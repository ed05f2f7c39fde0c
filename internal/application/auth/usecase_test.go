package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-backoffice/internal/application/auth"
	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/application/usecase"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/infrastructure/memory"
	"github.com/jhoicas/retail-backoffice/pkg/jwt"
)

var tokens *jwt.Manager

func init() {
	var err error
	tokens, err = jwt.NewManager("test-secret-con-longitud-suficiente", "test", 15*time.Minute)
	if err != nil {
		panic(err)
	}
}

func newAuth() (*auth.AuthUseCase, *usecase.UserUseCase) {
	store := memory.NewStore()
	return auth.NewAuthUseCase(store.Users(), tokens), usecase.NewUserUseCase(store.Users())
}

func TestRegisterYLogin(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: " Caja1@Tienda.co ", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, "caja1@tienda.co", u.Email)
	assert.Equal(t, entity.RoleVendedor, u.Role, "el rol por defecto es vendedor")

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "caja1@tienda.co", Password: "otra-clave-1"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "CAJA1@tienda.co", Password: "clave-segura"})
	require.NoError(t, err)
	assert.True(t, out.ExpiresAt.After(time.Now()))
	claims, err := tokens.Verify(out.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID())
	assert.Equal(t, entity.RoleVendedor, claims.Role)
}

func TestLogin_CredencialesInvalidasRespondenIgual(t *testing.T) {
	uc, _ := newAuth()
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@tienda.co", Password: "clave-segura"})
	require.NoError(t, err)

	_, errWrong := uc.Login(ctx, dto.LoginRequest{Email: "a@tienda.co", Password: "equivocada"})
	_, errMissing := uc.Login(ctx, dto.LoginRequest{Email: "nadie@tienda.co", Password: "clave-segura"})
	assert.ErrorIs(t, errWrong, domain.ErrUnauthorized)
	assert.ErrorIs(t, errMissing, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc, users := newAuth()
	ctx := context.Background()
	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "b@tienda.co", Password: "clave-segura", Role: entity.RoleBodeguero})
	require.NoError(t, err)

	inactive := entity.UserInactive
	_, err = users.Update(ctx, u.ID, dto.UpdateUserRequest{Status: &inactive})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "b@tienda.co", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEnsureAdmin_Idempotente(t *testing.T) {
	uc, users := newAuth()
	ctx := context.Background()

	require.NoError(t, uc.EnsureAdmin(ctx, "admin@tienda.co", "clave-admin-1"))
	require.NoError(t, uc.EnsureAdmin(ctx, "admin@tienda.co", "otra-clave-2"))

	list, err := users.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.RoleAdmin, list[0].Role)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "admin@tienda.co", Password: "clave-admin-1"})
	assert.NoError(t, err, "la segunda llamada no cambia la clave")

	assert.NoError(t, uc.EnsureAdmin(ctx, "", ""))
}

func TestUserUpdate_RolInvalido(t *testing.T) {
	uc, users := newAuth()
	ctx := context.Background()
	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "c@tienda.co", Password: "clave-segura"})
	require.NoError(t, err)

	role := "gerente"
	_, err = users.Update(ctx, u.ID, dto.UpdateUserRequest{Role: &role})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = users.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
