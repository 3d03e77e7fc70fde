// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// # Account Data Access

// AccountRepository defines the data access contract for user accounts.
type AccountRepository interface {

	/*
		Create persists a brand-new account.

		Returns:
		  - error: a [*dberr.UniqueViolation] naming account_username_key or
		    account_email_key when the identity is already taken
	*/
	Create(ctx context.Context, account *Account) error

	/*
		FindByLogin returns the account whose username or email equals login.

		Returns:
		  - error: [dberr.ErrNotFound] when no account matches
	*/
	FindByLogin(ctx context.Context, login string) (*Account, error)

	// TouchLogin records a successful login.
	TouchLogin(ctx context.Context, id string) error
}
