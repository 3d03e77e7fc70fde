// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package corpus

import "context"

// Repository defines the persistence contract for corpora.
type Repository interface {
	// Register writes the corpus, its control list linkage, tokens, allowed
	// values and owner link atomically, returning the new corpus id.
	// A duplicate name yields [ErrNameTaken].
	Register(ctx context.Context, registration *Registration) (int64, error)

	FindByID(ctx context.Context, id int64) (*Corpus, error)
	HasAccess(ctx context.Context, corpusID int64, userID string) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]Summary, error)
	CountTokens(ctx context.Context, corpusID int64) (int, error)
	ListTokens(ctx context.Context, corpusID int64) ([]WordToken, error)
	Owners(ctx context.Context, corpusID int64) ([]string, error)

	// ControlListAccessible reports whether the list exists and is public,
	// linked to userID, or admin is set.
	ControlListAccessible(ctx context.Context, controlListID int64, userID string, admin bool) (bool, error)
	ListControlLists(ctx context.Context, userID string, admin bool) ([]ControlList, error)

	CountAllowedValues(ctx context.Context, scope Scope, allowedType AllowedType) (int, error)
	ListAllowedValues(ctx context.Context, scope Scope, allowedType AllowedType) ([]AllowedValue, error)
	SearchAllowedValues(ctx context.Context, scope Scope, allowedType AllowedType, prefix string, limit int) ([]AllowedValue, error)

	// SearchTokenValues returns distinct non-empty values of the category
	// among the corpus's own tokens.
	SearchTokenValues(ctx context.Context, corpusID int64, allowedType AllowedType, prefix string, limit int) ([]string, error)
}
