package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/retail-backoffice/internal/domain"
	"github.com/jhoicas/retail-backoffice/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	q Querier
}

func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const selectUser = `SELECT id, email, password_hash, name, role, status, created_at, updated_at FROM users`

func scanUser(row pgx.CollectableRow) (*entity.User, error) {
	u := new(entity.User)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create el índice único sobre email se traduce a ErrEmailAlreadyExists.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.Status, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrEmailAlreadyExists
	}
	return wrapErr("insert user", err)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.one(ctx, selectUser+` WHERE id = $1`, id)
}

// GetByEmail el email ya llega normalizado a minúsculas.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.one(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *UserRepo) one(ctx context.Context, query string, args ...any) (*entity.User, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("get user", err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get user", err)
	}
	return u, nil
}

func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE users
		SET name = $2, role = $3, status = $4, password_hash = $5, updated_at = $6
		WHERE id = $1`,
		u.ID, u.Name, u.Role, u.Status, u.PasswordHash, u.UpdatedAt)
	if err != nil {
		return wrapErr("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	var b filterBuilder
	rows, err := r.q.Query(ctx, selectUser+` ORDER BY email`+b.page(limit, offset), b.args...)
	if err != nil {
		return nil, wrapErr("list users", err)
	}
	users, err := pgx.CollectRows(rows, scanUser)
	return users, wrapErr("list users", err)
}
