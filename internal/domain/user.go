package domain

import "time"

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	ProfileImage *string   `db:"profile_image" json:"profile_image,omitempty"`
	Credits      int64     `db:"credits" json:"credits"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
