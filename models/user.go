package models

import "time"

type UserRole string

const (
	RoleManager UserRole = "manager"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID           int       `json:"id"`
	Nickname     string    `json:"nickname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	ClubID       *int      `json:"clube_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
