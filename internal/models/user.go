package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID             string       `db:"id"`
	Username       string       `db:"username"`
	Email          string       `db:"email"`
	Role           string       `db:"role"`
	Status         string       `db:"status"`
	HashedPassword string       `db:"hashed_password"`
	CreatedAt      time.Time    `db:"created_at"`
	DeletedAt      sql.NullTime `db:"deleted_at"`
}
