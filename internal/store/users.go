package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/giftcert/internal/apperr"
	"github.com/starford/giftcert/internal/models"
)

var userMapping = mapping[models.User]{
	entity:  "user",
	table:   "users",
	columns: []string{"name", "email"},
	scan: func(s rowScanner) (models.User, error) {
		var u models.User
		err := s.Scan(&u.ID, &u.Name, &u.Email)
		return u, err
	},
	values: func(u *models.User) []any { return []any{u.Name, u.Email} },
	getID:  func(u *models.User) int64 { return u.ID },
	setID:  func(u *models.User, id int64) { u.ID = id },
}

// UserRepo stores users.
type UserRepo struct {
	*Repo[models.User]
}

// NewUserRepo creates a user repository.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{Repo: newRepo(db, userMapping)}
}

// FindByEmail returns the user registered with email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (models.User, error) {
	row := r.db.conn.QueryRowContext(ctx, `SELECT `+r.m.selectList()+` FROM users WHERE email = ?`, email)
	u, err := r.m.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("%w: user with email %q", apperr.ErrNotFound, email)
	}
	if err != nil {
		return models.User{}, classify("find user by email", err)
	}
	return u, nil
}
