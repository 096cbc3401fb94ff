package model

import "time"

// Roles form a closed set. The registration handler validates incoming
// role strings against these values before anything is persisted.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleMember
}

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column. Username and email carry
// unique indexes; the password is stored only as a bcrypt hash.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name, the subject embedded in access tokens.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name ("admin" or "member").
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
