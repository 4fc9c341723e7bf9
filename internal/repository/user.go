package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cradoe/kycflow/internal/models"
)

type UserRepository interface {
	Insert(user *models.User) (string, error)
	GetOne(id string) (*models.User, bool, error)
	GetByUsername(username string) (*models.User, bool, error)
	CheckIfUsernameExist(username string) (bool, error)
	CheckIfEmailExist(email string) (bool, error)
	Lock(id string) error
}

const (
	// UserAccountActiveStatus indicates that the account is active and can
	// authenticate and run verification operations.
	UserAccountActiveStatus = "active"

	// UserAccountLockedStatus indicates that the account has been locked,
	// e.g. after repeated failed login attempts. A locked account cannot
	// authenticate until unlocked by an operator.
	UserAccountLockedStatus = "locked"
)

type UserRepositoryImpl struct {
	db *DB
}

func NewUserRepository(db *DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (repo *UserRepositoryImpl) Insert(user *models.User) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO users (username, email, role, hashed_password)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		user.Username,
		user.Email,
		user.Role,
		user.HashedPassword,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *UserRepositoryImpl) GetOne(id string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE id = $1`

	err := repo.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (repo *UserRepositoryImpl) GetByUsername(username string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE username = $1`

	err := repo.db.GetContext(ctx, &user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (repo *UserRepositoryImpl) CheckIfUsernameExist(username string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

	err := repo.db.GetContext(ctx, &exists, query, username)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (repo *UserRepositoryImpl) CheckIfEmailExist(email string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	err := repo.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (repo *UserRepositoryImpl) Lock(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET status = $1 WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, UserAccountLockedStatus, id)
	return err
}
