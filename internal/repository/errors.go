// Package repository defines sentinel errors shared across repositories.
// Handlers compare against these values to pick HTTP statuses instead of
// inspecting driver errors themselves.
package repository

import "errors"

// ErrUsernameExists is returned when registration hits the unique index
// on users.username. Handlers translate this into HTTP 400.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when registration hits the unique index on
// users.email. Handlers translate this into HTTP 400.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user matches the given username,
// email or id.
var ErrUserNotFound = errors.New("user not found")

// ErrBookNotFound is returned when no book matches the given id.
// Handlers translate this into HTTP 404.
var ErrBookNotFound = errors.New("book not found")

// ErrBookUnavailable is returned when a borrow is attempted on a book
// with no copies left. Handlers translate this into HTTP 409.
var ErrBookUnavailable = errors.New("book not available")
