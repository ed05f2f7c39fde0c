package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/retail-backoffice/internal/application/dto"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// TokenIssuer firma el token de sesión (pkg/jwt.Manager).
type TokenIssuer interface {
	Issue(userID, role string) (string, time.Time, error)
}

// AuthUseCase registro de usuarios, login y alta del administrador inicial.
type AuthUseCase struct {
	users  repository.UserRepository
	tokens TokenIssuer
}

func NewAuthUseCase(users repository.UserRepository, tokens TokenIssuer) *AuthUseCase {
	return &AuthUseCase{users: users, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser el email se guarda en minúsculas; rol vacío = vendedor.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := normalizeEmail(in.Email)
	if email == "" || len(in.Password) < minPasswordLength {
		return nil, domain.ErrInvalidInput
	}
	if taken, err := uc.users.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if taken != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	role := in.Role
	if role == "" {
		role = entity.RoleVendedor
	}
	if !entity.ValidRole(role) {
		return nil, domain.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash: %w", err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	now := time.Now().UTC()
	u := &entity.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Status:       entity.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return ToUserResponse(u), nil
}

// EnsureAdmin crea el administrador inicial. Si el email ya existe no toca nada.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if found, err := uc.users.GetByEmail(ctx, normalizeEmail(email)); err != nil || found != nil {
		return err
	}
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     "Administrador",
		Role:     entity.RoleAdmin,
	})
	return err
}

// Login email inexistente y password incorrecto devuelven el mismo ErrUnauthorized.
// Un usuario inactivo con credenciales correctas recibe ErrForbidden.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	u, err := uc.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, domain.ErrUnauthorized
	}
	if u.Status != entity.UserActive {
		return nil, domain.ErrForbidden
	}
	token, exp, err := uc.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, ExpiresAt: exp, User: *ToUserResponse(u)}, nil
}

// ToUserResponse nunca expone el hash.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
