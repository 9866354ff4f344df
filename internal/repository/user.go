package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/foldervault/foldervault/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

type UserRepository interface {
	Create(user *model.User) error
	ByID(id string) (*model.User, error)
	ByEmail(email string) (*model.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO users (id, email, name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err = tx.Exec(query, user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt)
	if err != nil {
		// Check for unique constraint violation (works for both SQLite and PostgreSQL)
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateEmail
		}
		return err
	}

	for _, role := range user.Roles {
		_, err = tx.Exec(`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, user.ID, role)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *userRepository) ByID(id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.Get(user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, loadRoles(r.db, user)
}

func (r *userRepository) ByEmail(email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.Get(user, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, loadRoles(r.db, user)
}

// loadRoles hydrates user.Roles from the user_roles table. Works against
// both the pool and an open transaction.
func loadRoles(q sqlx.Queryer, user *model.User) error {
	user.Roles = []string{}
	return sqlx.Select(q, &user.Roles, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, user.ID)
}

// userByID is the transaction-scoped variant of ByID used while
// materializing a folder graph.
func userByID(q sqlx.Queryer, id string) (*model.User, error) {
	user := &model.User{}
	err := sqlx.Get(q, user, `SELECT * FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, loadRoles(q, user)
}
