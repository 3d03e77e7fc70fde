// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements Lexica accounts and browser sessions.

Accounts own corpora and control lists. A successful login issues an RS256
session token carried in an HttpOnly cookie; the middleware verifies that
token on every request, so no session state is kept server side.
*/
package auth

import (
	"time"

	"github.com/taibuivan/lexica/internal/platform/sec"
)

// # Domain Entities

// Account represents a registered Lexica user.
type Account struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	DisplayName  string       `json:"display_name"`
	Role         sec.UserRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldDisplayName = "display_name"
	FieldLogin       = "login"
	FieldRole        = "role"
	FieldNext        = "next"
)
